package rooms

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoomRoutes registers the room sync HTTP and WebSocket routes.
func RegisterRoomRoutes(r *mux.Router, handler *RoomHandler) {
	r.HandleFunc("/api/v1/rooms/state", func(w http.ResponseWriter, req *http.Request) {
		log.Printf("[Room] %s %s", req.Method, req.URL.Path)
		handler.GetRoomState(w, req)
	}).Methods(http.MethodGet)

	r.HandleFunc("/ws/rooms", func(w http.ResponseWriter, req *http.Request) {
		log.Printf("[Room] WebSocket %s", req.URL.String())
		handler.ServeWS(w, req)
	})
}
