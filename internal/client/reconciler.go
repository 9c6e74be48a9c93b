package client

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/avikd/tunesync-backend/internal/models"
	"github.com/jonboulle/clockwork"
)

// SeekThreshold is the largest drift, in seconds, tolerated before the
// reconciler force-seeks the local player. Below it no correction
// happens; constant micro-seeking on network jitter is audible.
const SeekThreshold = 0.75

// seekDebounce is how long after the user's last scrub gesture the
// reconciler waits before resuming forced corrections and pushing the
// chosen position upstream.
const seekDebounce = 300 * time.Millisecond

// Phase is the mirror's connection lifecycle state.
type Phase int

const (
	PhaseIdle   Phase = iota // not joined; broadcasts ignored
	PhaseJoined              // joined, no broadcast seen yet
	PhaseSynced              // reconciled at least once
)

// Reconciler converges a local Player onto the authoritative room
// state. On every broadcast it loads the right track, computes where
// playback should be now given the elapsed time since the server
// anchored the state, corrects the local position if it drifted past
// SeekThreshold, and aligns the play/pause flag.
type Reconciler struct {
	player Player
	clock  clockwork.Clock

	// SendControl, when set, carries locally originated control events
	// upstream (the post-scrub seek, the end-of-track advance). Nil is
	// fine for a receive-only mirror.
	SendControl func(models.ControlEvent)

	// TrackCount, when set, reports the library size so the
	// end-of-track advance wraps back to the first track after the
	// last one finishes.
	TrackCount func() int

	mu           sync.Mutex
	roomID       string
	phase        Phase
	trackIndex   int // library index the local player has loaded
	lastState    models.PlaybackState
	userSeeking  bool
	suppressEcho int // pending forced-seek player notifications
	debounce     clockwork.Timer
}

// NewReconciler wraps a player whose loaded track is the library's
// first entry, mirroring a freshly joined client.
func NewReconciler(player Player, clock clockwork.Clock) *Reconciler {
	return &Reconciler{
		player: player,
		clock:  clock,
	}
}

// Joined moves the mirror out of Idle so broadcasts are applied.
func (r *Reconciler) Joined(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roomID = roomID
	r.phase = PhaseJoined
	r.lastState = models.PlaybackState{}
	r.suppressEcho = 0
}

// Disconnected reverts the mirror to Idle; the client must re-join
// before broadcasts are honored again.
func (r *Reconciler) Disconnected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = PhaseIdle
	if r.debounce != nil {
		r.debounce.Stop()
	}
	r.userSeeking = false
}

// Phase returns the mirror's current lifecycle phase.
func (r *Reconciler) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Apply reconciles the local player against one authoritative state
// broadcast. Applying the same state twice is harmless: once local
// playback is within SeekThreshold of the expected position, no
// further correction fires.
func (r *Reconciler) Apply(state models.PlaybackState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == PhaseIdle {
		return
	}
	// A broadcast can arrive behind the join snapshot or get reordered
	// in delivery; a state anchored earlier than one already applied
	// must never roll the mirror back.
	if r.phase == PhaseSynced && state.LastUpdateEpochMs < r.lastState.LastUpdateEpochMs {
		return
	}
	r.lastState = state
	r.phase = PhaseSynced

	// Track switch first; correcting time on the wrong track is
	// meaningless.
	if state.TrackIndex != r.trackIndex {
		r.player.Load(state.TrackIndex)
		r.trackIndex = state.TrackIndex
	}

	expected := state.ExpectedPosition(r.clock.Now().UnixMilli())

	// While the user is scrubbing, a forced seek would fight the
	// gesture; corrections resume after the debounce.
	if !r.userSeeking {
		drift := math.Abs(r.player.Position() - expected)
		if drift > SeekThreshold && r.player.Buffered() {
			r.suppressEcho++
			r.player.Seek(expected)
			log.Printf("[Sync] Corrected position to %.2fs (drift %.2fs)", expected, drift)
		}
	}

	if state.IsPlaying && !r.player.Playing() {
		if err := r.player.Play(); err != nil {
			// Autoplay policy rejection: local state stays "should be
			// playing" and the next user gesture retries implicitly.
			log.Printf("[Sync] Playback start blocked: %v", err)
		}
	} else if !state.IsPlaying && r.player.Playing() {
		r.player.Pause()
	}
}

// BeginUserSeek marks the start of a scrub gesture; forced corrections
// are suspended until the gesture has been over for seekDebounce.
func (r *Reconciler) BeginUserSeek() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userSeeking = true
	if r.debounce != nil {
		r.debounce.Stop()
	}
}

// EndUserSeek marks the end of a scrub gesture. After the debounce
// interval the locally chosen position is sent upstream as a seek
// control event and normal reconciliation resumes.
func (r *Reconciler) EndUserSeek() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.debounce != nil {
		r.debounce.Stop()
	}
	r.debounce = r.clock.AfterFunc(seekDebounce, r.finishUserSeek)
}

func (r *Reconciler) finishUserSeek() {
	r.mu.Lock()
	if !r.userSeeking {
		r.mu.Unlock()
		return
	}
	r.userSeeking = false
	pos := r.player.Position()
	roomID := r.roomID
	send := r.SendControl
	r.mu.Unlock()

	if send != nil {
		send(models.ControlEvent{
			RoomID:      roomID,
			Action:      models.ActionSeek,
			CurrentTime: &pos,
		})
	}
}

// PlayerSeeked is the player's low-level "position changed" callback.
// A position change caused by the reconciler's own forced seek is
// swallowed here so it is never echoed upstream as a user seek.
func (r *Reconciler) PlayerSeeked() {
	r.mu.Lock()
	if r.suppressEcho > 0 {
		r.suppressEcho--
		r.mu.Unlock()
		return
	}
	if r.userSeeking || r.phase == PhaseIdle || r.SendControl == nil {
		// A mid-gesture notification is reported by the EndUserSeek
		// debounce instead.
		r.mu.Unlock()
		return
	}
	pos := r.player.Position()
	roomID := r.roomID
	send := r.SendControl
	r.mu.Unlock()

	send(models.ControlEvent{
		RoomID:      roomID,
		Action:      models.ActionSeek,
		CurrentTime: &pos,
	})
}

// PlayerEnded is the player's "track finished" callback. It advances
// the room to the following track, wrapping to the first when
// TrackCount reports the library size, exactly as if this member had
// pressed next.
func (r *Reconciler) PlayerEnded() {
	r.mu.Lock()
	if r.phase == PhaseIdle || r.SendControl == nil {
		r.mu.Unlock()
		return
	}
	next := r.trackIndex + 1
	if r.TrackCount != nil {
		if n := r.TrackCount(); n > 0 {
			next %= n
		}
	}
	r.player.Load(next)
	r.trackIndex = next
	roomID := r.roomID
	send := r.SendControl
	r.mu.Unlock()

	send(models.ControlEvent{
		RoomID: roomID,
		Action: models.ActionNext,
		Index:  &next,
	})
}

// LastState returns the most recently applied authoritative state.
func (r *Reconciler) LastState() models.PlaybackState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastState
}
