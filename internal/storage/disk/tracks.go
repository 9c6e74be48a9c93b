package disk

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avikd/tunesync-backend/internal/models"
)

var ErrTrackNotFound = errors.New("track not found")

var audioExtensions = map[string]bool{
	".mp3":  true,
	".ogg":  true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
}

// TrackStore keeps uploaded audio files in a directory on disk. The
// listing order is the filename sort order, which is what room
// trackIndex values refer to, so it must be identical for every caller.
type TrackStore struct {
	dir string
}

// NewTrackStore creates the upload directory if needed.
func NewTrackStore(dir string) (*TrackStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &TrackStore{dir: dir}, nil
}

// Dir returns the directory tracks are stored in, for static serving.
func (s *TrackStore) Dir() string {
	return s.dir
}

// Save stores an uploaded file under a unique name derived from the
// upload time and the original filename, and returns the stored name.
func (s *TrackStore) Save(name string, epochMs int64, r io.Reader) (string, error) {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	if !audioExtensions[strings.ToLower(filepath.Ext(base))] {
		return "", fmt.Errorf("unsupported file type: %s", base)
	}

	stored := fmt.Sprintf("%d_%s", epochMs, base)
	f, err := os.Create(filepath.Join(s.dir, stored))
	if err != nil {
		return "", fmt.Errorf("failed to create track file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write track file: %w", err)
	}
	log.Printf("[Library] Stored track %s", stored)
	return stored, nil
}

// ListTracks returns the library in its canonical (sorted) order.
func (s *TrackStore) ListTracks() ([]models.Track, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}

	tracks := []models.Track{}
	for _, e := range entries {
		if e.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		tracks = append(tracks, models.Track{
			Name:       e.Name(),
			SizeBytes:  info.Size(),
			UploadedAt: info.ModTime().UnixMilli(),
		})
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Name < tracks[j].Name })
	return tracks, nil
}

// Delete removes a track by its stored name. The name is reduced to its
// base so a crafted path cannot escape the upload directory.
func (s *TrackStore) Delete(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if os.IsNotExist(err) {
		return ErrTrackNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete track %s: %w", name, err)
	}
	log.Printf("[Library] Deleted track %s", name)
	return nil
}
