package auth

import (
	"log"
	"net/http"

	"github.com/avikd/tunesync-backend/internal/middleware"
	"github.com/gorilla/mux"
)

// RegisterAuthRoutes registers the account HTTP routes.
func RegisterAuthRoutes(r *mux.Router, handler *AuthHandler) {
	r.HandleFunc("/api/v1/auth/signup", func(w http.ResponseWriter, req *http.Request) {
		log.Printf("[Auth] %s %s", req.Method, req.URL.Path)
		handler.Signup(w, req)
	}).Methods(http.MethodPost)

	r.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, req *http.Request) {
		log.Printf("[Auth] %s %s", req.Method, req.URL.Path)
		handler.Login(w, req)
	}).Methods(http.MethodPost)

	r.HandleFunc("/api/v1/auth/me", middleware.RequireAuth(handler.JWTSecret, func(w http.ResponseWriter, req *http.Request) {
		log.Printf("[Auth] %s %s", req.Method, req.URL.Path)
		handler.Me(w, req)
	})).Methods(http.MethodGet)
}
