package rooms

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/avikd/tunesync-backend/internal/models"
	"github.com/avikd/tunesync-backend/internal/playback"
	"github.com/avikd/tunesync-backend/internal/ws"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// RoomHandler holds the dependencies for the room sync endpoints.
type RoomHandler struct {
	Rooms *playback.Registry
	Hub   *ws.Hub
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and joins the caller to a room. The
// joining client immediately receives the room's current state so it
// can reconcile without disturbing other members; after that, every
// control event it sends is applied to the authoritative state and the
// result is rebroadcast to the whole room, sender included.
func (h *RoomHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		http.Error(w, "Room ID is required for WebSocket connection", http.StatusBadRequest)
		log.Println("Validation error: Room ID missing for room WS")
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket for room %s: %v", roomID, err)
		return
	}

	client := &ws.Client{
		UserID: userID,
		RoomID: roomID,
		Send:   make(chan []byte, 256),
		Conn:   conn,
	}
	h.Hub.Register <- client

	state, err := h.Rooms.Join(roomID)
	if err != nil {
		// Only possible for an empty room id, which was rejected above.
		conn.Close()
		return
	}
	if data, err := json.Marshal(models.NewSyncMessage(state)); err == nil {
		h.Hub.SendTo(client, data)
	}
	log.Printf("[Room] User %s joined room %s (%d members)", userID, roomID, h.Hub.MemberCount(roomID))

	go client.WritePump()
	go client.ReadPump(h.Hub, func(message []byte) {
		h.handleControl(client, message)
	})
}

// handleControl applies one raw control message from a member. Anything
// malformed or failing the transition preconditions is dropped without
// mutating state or broadcasting; a bad message is never fatal.
func (h *RoomHandler) handleControl(client *ws.Client, message []byte) {
	var ev models.ControlEvent
	if err := json.Unmarshal(message, &ev); err != nil {
		log.Printf("[Room] Dropping malformed control from user %s: %v", client.UserID, err)
		return
	}
	if ev.RoomID == "" {
		ev.RoomID = client.RoomID
	}

	state, ok := h.Rooms.Apply(ev)
	if !ok {
		return
	}

	data, err := json.Marshal(models.NewSyncMessage(state))
	if err != nil {
		log.Printf("[Room] Failed to marshal sync state for room %s: %v", ev.RoomID, err)
		return
	}
	h.Hub.Broadcast <- ws.BroadcastMessage{RoomID: ev.RoomID, Data: data}
}

// GetRoomState returns a room's current authoritative state over plain
// HTTP, for clients probing a room before joining it.
func (h *RoomHandler) GetRoomState(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		http.Error(w, "Room ID is required as a query parameter", http.StatusBadRequest)
		log.Println("Validation error: Room ID is empty for GetRoomState")
		return
	}

	state, ok := h.Rooms.Snapshot(roomID)
	if !ok {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(state)
}
