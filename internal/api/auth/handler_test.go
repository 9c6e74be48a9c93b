package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avikd/tunesync-backend/internal/storage/memory"
	"github.com/gorilla/mux"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler := &AuthHandler{
		Store:     memory.NewUserStore(),
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
	}
	r := mux.NewRouter()
	RegisterAuthRoutes(r, handler)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := srv.Client().Post(srv.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSignupLoginMeRoundtrip(t *testing.T) {
	srv := newTestServer(t)
	creds := map[string]string{"username": "asha", "password": "correct horse"}

	resp := postJSON(t, srv, "/api/v1/auth/signup", creds)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", resp.StatusCode)
	}

	resp = postJSON(t, srv, "/api/v1/auth/login", creds)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	var login struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if login.Token == "" || login.User.Username != "asha" {
		t.Fatalf("login response = %+v, want token and user", login)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	meResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET me: %v", err)
	}
	defer meResp.Body.Close()
	if meResp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, want 200", meResp.StatusCode)
	}
}

func TestSignupValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing username", map[string]string{"password": "long enough pw"}, http.StatusBadRequest},
		{"short password", map[string]string{"username": "asha", "password": "short"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := postJSON(t, srv, "/api/v1/auth/signup", tt.body); resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestDuplicateSignupConflicts(t *testing.T) {
	srv := newTestServer(t)
	creds := map[string]string{"username": "asha", "password": "correct horse"}

	postJSON(t, srv, "/api/v1/auth/signup", creds)
	if resp := postJSON(t, srv, "/api/v1/auth/signup", creds); resp.StatusCode != http.StatusConflict {
		t.Errorf("second signup status = %d, want 409", resp.StatusCode)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv, "/api/v1/auth/signup", map[string]string{"username": "asha", "password": "correct horse"})

	resp := postJSON(t, srv, "/api/v1/auth/login", map[string]string{"username": "asha", "password": "wrong horse"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("login status = %d, want 401", resp.StatusCode)
	}
}

func TestMeRejectsMissingAndBogusTokens(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/v1/auth/me")
	if err != nil {
		t.Fatalf("GET me: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me without token status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	bogus, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET me: %v", err)
	}
	defer bogus.Body.Close()
	if bogus.StatusCode != http.StatusUnauthorized {
		t.Errorf("me with bogus token status = %d, want 401", bogus.StatusCode)
	}
}
