package playback

import (
	"errors"
	"log"
	"sync"

	"github.com/avikd/tunesync-backend/internal/models"
	"github.com/jonboulle/clockwork"
)

// ErrEmptyRoomID is returned when a join names no room.
var ErrEmptyRoomID = errors.New("room id cannot be empty")

// Registry holds the authoritative PlaybackState for every room in the
// process. Rooms are created lazily on first join and are fully
// independent of each other: each room carries its own mutex so control
// events for different rooms never serialize against one another, while
// events for the same room apply strictly one at a time.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
	clock clockwork.Clock
}

type room struct {
	mu    sync.Mutex
	state models.PlaybackState
}

// NewRegistry creates an empty registry. The clock stamps
// lastUpdateEpochMs on every transition.
func NewRegistry(clock clockwork.Clock) *Registry {
	return &Registry{
		rooms: make(map[string]*room),
		clock: clock,
	}
}

func (r *Registry) nowMs() int64 {
	return r.clock.Now().UnixMilli()
}

// Join returns the room's current state, creating the room with the
// default state (track 0, paused, position 0, anchored at now) if this
// is the first join for that id. The returned state is meant for the
// joining client only; joining never broadcasts.
func (r *Registry) Join(roomID string) (models.PlaybackState, error) {
	if roomID == "" {
		return models.PlaybackState{}, ErrEmptyRoomID
	}

	r.mu.Lock()
	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{state: models.PlaybackState{LastUpdateEpochMs: r.nowMs()}}
		r.rooms[roomID] = rm
		log.Printf("[Room] Created room %s", roomID)
	}
	r.mu.Unlock()

	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.state, nil
}

// Apply runs one control event against its room's state and returns the
// new state to broadcast. It returns ok=false, with no state mutation,
// when the event names an unknown room (rooms exist only via a prior
// Join), omits a required field, or carries an unknown action. Every
// accepted transition re-anchors lastUpdateEpochMs to now.
func (r *Registry) Apply(ev models.ControlEvent) (models.PlaybackState, bool) {
	r.mu.RLock()
	rm, ok := r.rooms[ev.RoomID]
	r.mu.RUnlock()
	if !ok {
		log.Printf("[Room] Dropping %q control for unknown room %q", ev.Action, ev.RoomID)
		return models.PlaybackState{}, false
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	next := rm.state
	switch ev.Action {
	case models.ActionPlay:
		if ev.CurrentTime == nil {
			return models.PlaybackState{}, false
		}
		next.IsPlaying = true
		next.PositionSeconds = *ev.CurrentTime
	case models.ActionPause:
		if ev.CurrentTime == nil {
			return models.PlaybackState{}, false
		}
		next.IsPlaying = false
		next.PositionSeconds = *ev.CurrentTime
	case models.ActionChangeSong, models.ActionNext, models.ActionPrev:
		if ev.Index == nil {
			return models.PlaybackState{}, false
		}
		next.TrackIndex = *ev.Index
		next.PositionSeconds = 0
		next.IsPlaying = true
	case models.ActionSeek:
		if ev.CurrentTime == nil {
			return models.PlaybackState{}, false
		}
		next.PositionSeconds = *ev.CurrentTime
	default:
		log.Printf("[Room] Dropping unknown action %q for room %s", ev.Action, ev.RoomID)
		return models.PlaybackState{}, false
	}

	next.LastUpdateEpochMs = r.nowMs()
	rm.state = next
	return next, true
}

// Snapshot returns the current state of a room without mutating it.
func (r *Registry) Snapshot(roomID string) (models.PlaybackState, bool) {
	r.mu.RLock()
	rm, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return models.PlaybackState{}, false
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.state, true
}

// Evict drops a room's state. Wired (behind config) to the hub's
// room-empty notification; by default rooms persist for the process
// lifetime.
func (r *Registry) Evict(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[roomID]; ok {
		delete(r.rooms, roomID)
		log.Printf("[Room] Evicted room %s", roomID)
	}
}

// Len reports how many rooms currently exist.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
