package library

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/avikd/tunesync-backend/internal/storage/disk"
)

// Room trackIndex values point into the listing this handler serves, so
// everything here must present the library in the store's canonical
// order.

const maxUploadBytes = 50 << 20 // 50 MiB per track

// LibraryHandler holds the dependencies for the track library endpoints.
type LibraryHandler struct {
	Store *disk.TrackStore
}

// Upload accepts a multipart audio file under the "song" field.
func (h *LibraryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		log.Printf("Error parsing multipart form for Upload: %v", err)
		return
	}

	file, header, err := r.FormFile("song")
	if err != nil {
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	stored, err := h.Store.Save(header.Filename, time.Now().UnixMilli(), file)
	if err != nil {
		http.Error(w, "Failed to store track", http.StatusBadRequest)
		log.Printf("Error storing track %s: %v", header.Filename, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"filename": stored})
}

// ListTracks returns the library in its canonical order.
func (h *LibraryHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.Store.ListTracks()
	if err != nil {
		http.Error(w, "Failed to list tracks", http.StatusInternalServerError)
		log.Printf("Error listing tracks: %v", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tracks)
}

// DeleteTrack removes the track named by the "song" query parameter.
func (h *LibraryHandler) DeleteTrack(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("song")
	if name == "" {
		http.Error(w, "Song not specified", http.StatusBadRequest)
		return
	}

	if err := h.Store.Delete(name); err != nil {
		if errors.Is(err, disk.ErrTrackNotFound) {
			http.Error(w, "Track not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete track", http.StatusInternalServerError)
		log.Printf("Error deleting track %s: %v", name, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
