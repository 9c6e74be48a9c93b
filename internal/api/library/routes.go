package library

import (
	"log"
	"net/http"

	"github.com/avikd/tunesync-backend/internal/middleware"
	"github.com/gorilla/mux"
)

// RegisterLibraryRoutes registers the track library HTTP routes.
// Upload and delete require a signed-in user, matching the protection
// on the mutation endpoints; listing and streaming are open to room
// members.
func RegisterLibraryRoutes(r *mux.Router, handler *LibraryHandler, jwtSecret string) {
	r.HandleFunc("/api/v1/library/upload", middleware.RequireAuth(jwtSecret, func(w http.ResponseWriter, req *http.Request) {
		log.Printf("[Library] %s %s", req.Method, req.URL.Path)
		handler.Upload(w, req)
	})).Methods(http.MethodPost)

	r.HandleFunc("/api/v1/library/tracks", func(w http.ResponseWriter, req *http.Request) {
		log.Printf("[Library] %s %s", req.Method, req.URL.Path)
		handler.ListTracks(w, req)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/v1/library/delete", middleware.RequireAuth(jwtSecret, func(w http.ResponseWriter, req *http.Request) {
		log.Printf("[Library] %s %s", req.Method, req.URL.Path)
		handler.DeleteTrack(w, req)
	})).Methods(http.MethodDelete)

	// Audio files are served straight off the upload directory.
	fs := http.FileServer(http.Dir(handler.Store.Dir()))
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", fs)).Methods(http.MethodGet)
}
