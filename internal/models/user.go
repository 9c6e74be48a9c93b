package models

// User represents a registered listener account.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Never exposed in JSON responses.
	CreatedAt    int64  `json:"createdAt"`
}
