package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/avikd/tunesync-backend/internal/models"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

// Session is a connected room membership: it dials the sync endpoint,
// feeds every broadcast to the reconciler, and sends control events
// upstream. Local actions apply an optimistic update to the player
// first; the server's rebroadcast (which includes the sender) then
// disciplines whatever the optimistic step got wrong.
type Session struct {
	RoomID string
	UserID string

	conn    *websocket.Conn
	player  Player
	rec     *Reconciler
	writeMu sync.Mutex
	done    chan struct{}
}

// Dial connects to the room sync websocket at base (e.g.
// "ws://host:8080"), joins roomID and starts reconciling broadcasts.
func Dial(ctx context.Context, base, roomID, userID string, player Player, clock clockwork.Clock) (*Session, error) {
	if roomID == "" {
		return nil, fmt.Errorf("room id cannot be empty")
	}

	u, err := url.Parse(base + "/ws/rooms")
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("room_id", roomID)
	q.Set("user_id", userID)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial room %s: %w", roomID, err)
	}

	s := &Session{
		RoomID: roomID,
		UserID: userID,
		conn:   conn,
		player: player,
		rec:    NewReconciler(player, clock),
		done:   make(chan struct{}),
	}
	s.rec.SendControl = s.sendControl
	s.rec.Joined(roomID)

	go s.readLoop()
	return s, nil
}

// Reconciler exposes the session's mirror, for wiring player callbacks
// (scrub gestures, seek notifications) from the embedding application.
func (s *Session) Reconciler() *Reconciler { return s.rec }

// Done is closed when the connection has ended.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) readLoop() {
	defer func() {
		s.rec.Disconnected()
		close(s.done)
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg models.SyncMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[Sync] Dropping malformed server message: %v", err)
			continue
		}
		if msg.Type != models.SyncMessageType {
			continue
		}
		s.rec.Apply(msg.State)
	}
}

func (s *Session) sendControl(ev models.ControlEvent) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(ev); err != nil {
		log.Printf("[Sync] Failed to send %q control for room %s: %v", ev.Action, s.RoomID, err)
	}
}

// Play starts playback locally and announces it at the current local
// position.
func (s *Session) Play() {
	pos := s.player.Position()
	if err := s.player.Play(); err != nil {
		log.Printf("[Sync] Playback start blocked: %v", err)
	}
	s.sendControl(models.ControlEvent{RoomID: s.RoomID, Action: models.ActionPlay, CurrentTime: &pos})
}

// Pause pauses playback locally and announces it at the current local
// position.
func (s *Session) Pause() {
	pos := s.player.Position()
	s.player.Pause()
	s.sendControl(models.ControlEvent{RoomID: s.RoomID, Action: models.ActionPause, CurrentTime: &pos})
}

// Seek announces a programmatic seek to the given position.
func (s *Session) Seek(position float64) {
	s.player.Seek(position)
	s.sendControl(models.ControlEvent{RoomID: s.RoomID, Action: models.ActionSeek, CurrentTime: &position})
}

// ChangeTrack switches the room to the track at index.
func (s *Session) ChangeTrack(index int) {
	s.control(models.ActionChangeSong, index)
}

// Next advances the room to the track at index.
func (s *Session) Next(index int) {
	s.control(models.ActionNext, index)
}

// Prev moves the room back to the track at index.
func (s *Session) Prev(index int) {
	s.control(models.ActionPrev, index)
}

func (s *Session) control(action models.Action, index int) {
	s.player.Load(index)
	s.sendControl(models.ControlEvent{RoomID: s.RoomID, Action: action, Index: &index})
}

// Close tears down the connection; the mirror reverts to Idle.
func (s *Session) Close() error {
	return s.conn.Close()
}
