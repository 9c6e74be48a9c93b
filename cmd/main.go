package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avikd/tunesync-backend/internal/api/auth"
	"github.com/avikd/tunesync-backend/internal/api/library"
	"github.com/avikd/tunesync-backend/internal/api/rooms"
	"github.com/avikd/tunesync-backend/internal/config"
	"github.com/avikd/tunesync-backend/internal/middleware"
	"github.com/avikd/tunesync-backend/internal/playback"
	"github.com/avikd/tunesync-backend/internal/storage"
	"github.com/avikd/tunesync-backend/internal/storage/disk"
	"github.com/avikd/tunesync-backend/internal/storage/memory"
	"github.com/avikd/tunesync-backend/internal/storage/valkey"
	"github.com/avikd/tunesync-backend/internal/ws"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg := config.Load()

	var userStore storage.UserStore
	if cfg.ValkeyAddr != "" {
		store, err := valkey.NewUserStore(cfg.ValkeyAddr)
		if err != nil {
			log.Fatalf("Failed to connect to Valkey: %v", err)
		}
		defer store.Close()
		userStore = store
	} else {
		log.Println("VALKEY_ADDR not set, using in-memory user storage")
		userStore = memory.NewUserStore()
	}

	trackStore, err := disk.NewTrackStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	registry := playback.NewRegistry(clockwork.NewRealClock())
	hub := ws.NewHub()
	if cfg.RoomEvictOnEmpty {
		hub.OnRoomEmpty = registry.Evict
	}
	go hub.Run()

	authHandler := &auth.AuthHandler{
		Store:     userStore,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  time.Duration(cfg.TokenTTLHours) * time.Hour,
	}
	libraryHandler := &library.LibraryHandler{Store: trackStore}
	roomHandler := &rooms.RoomHandler{Rooms: registry, Hub: hub}

	r := mux.NewRouter()
	auth.RegisterAuthRoutes(r, authHandler)
	library.RegisterLibraryRoutes(r, libraryHandler, cfg.JWTSecret)
	rooms.RegisterRoomRoutes(r, roomHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middleware.CORS(cfg.CORSOrigin, r),
	}

	go func() {
		log.Printf("Server started at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
