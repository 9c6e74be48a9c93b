package models

// PlaybackState is the authoritative playback timeline for one room.
// PositionSeconds is only meaningful as of LastUpdateEpochMs: when
// IsPlaying, readers must add the wall-clock time elapsed since that
// anchor to obtain the current true position; when paused, the position
// is frozen exactly at PositionSeconds.
type PlaybackState struct {
	TrackIndex        int     `json:"trackIndex"`
	IsPlaying         bool    `json:"isPlaying"`
	PositionSeconds   float64 `json:"positionSeconds"`
	LastUpdateEpochMs int64   `json:"lastUpdateEpochMs"`
}

// ExpectedPosition returns the position implied by the state at nowMs.
func (s PlaybackState) ExpectedPosition(nowMs int64) float64 {
	if !s.IsPlaying {
		return s.PositionSeconds
	}
	return s.PositionSeconds + float64(nowMs-s.LastUpdateEpochMs)/1000.0
}

// Action is a playback control verb sent by a room member.
type Action string

const (
	ActionPlay       Action = "play"
	ActionPause      Action = "pause"
	ActionNext       Action = "next"
	ActionPrev       Action = "prev"
	ActionChangeSong Action = "change-song"
	ActionSeek       Action = "seek"
)

// ControlEvent is the client->server message mutating room playback.
// Index and CurrentTime are pointers so an absent field is
// distinguishable from an explicit zero.
type ControlEvent struct {
	RoomID      string   `json:"roomId"`
	Action      Action   `json:"action"`
	Index       *int     `json:"index,omitempty"`
	CurrentTime *float64 `json:"currentTime,omitempty"`
}

// SyncMessage is the only server-emitted room message: the full
// authoritative state, sent to a joining client and rebroadcast to
// every room member (sender included) after each accepted control.
type SyncMessage struct {
	Type  string        `json:"type"`
	State PlaybackState `json:"state"`
}

// SyncMessageType is the Type value carried by every SyncMessage.
const SyncMessageType = "sync-state"

func NewSyncMessage(state PlaybackState) SyncMessage {
	return SyncMessage{Type: SyncMessageType, State: state}
}
