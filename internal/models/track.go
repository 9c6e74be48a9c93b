package models

// Track is one entry in the shared upload library. Rooms reference
// tracks by index into the ordered library listing, so Name ordering
// must be stable across clients.
type Track struct {
	Name       string `json:"name"`
	SizeBytes  int64  `json:"sizeBytes"`
	UploadedAt int64  `json:"uploadedAt"`
}
