package ws

import (
	"testing"
	"time"
)

func newTestClient(roomID, userID string, buffer int) *Client {
	return &Client{
		UserID: userID,
		RoomID: roomID,
		Send:   make(chan []byte, buffer),
	}
}

func register(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	h.Register <- c
	waitFor(t, func() bool { return h.MemberCount(c.RoomID) > 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestBroadcastReachesAllMembersIncludingSender(t *testing.T) {
	h := NewHub()
	go h.Run()

	sender := newTestClient("r1", "u1", 4)
	peer := newTestClient("r1", "u2", 4)
	other := newTestClient("r2", "u3", 4)
	register(t, h, sender)
	h.Register <- peer
	h.Register <- other
	waitFor(t, func() bool { return h.MemberCount("r1") == 2 && h.MemberCount("r2") == 1 })

	h.Broadcast <- BroadcastMessage{RoomID: "r1", Data: []byte("state")}

	for _, c := range []*Client{sender, peer} {
		select {
		case got := <-c.Send:
			if string(got) != "state" {
				t.Errorf("user %s received %q, want %q", c.UserID, got, "state")
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("user %s never received the broadcast", c.UserID)
		}
	}

	select {
	case got := <-other.Send:
		t.Errorf("user in another room received %q", got)
	default:
	}
}

func TestSlowMemberDoesNotBlockRoom(t *testing.T) {
	h := NewHub()
	go h.Run()

	slow := newTestClient("r1", "slow", 1)
	healthy := newTestClient("r1", "ok", 4)
	register(t, h, slow)
	h.Register <- healthy
	waitFor(t, func() bool { return h.MemberCount("r1") == 2 })

	// Fill the slow member's buffer; the next broadcast drops it.
	h.Broadcast <- BroadcastMessage{RoomID: "r1", Data: []byte("a")}
	h.Broadcast <- BroadcastMessage{RoomID: "r1", Data: []byte("b")}
	waitFor(t, func() bool { return h.MemberCount("r1") == 1 })

	for _, want := range []string{"a", "b"} {
		select {
		case got := <-healthy.Send:
			if string(got) != want {
				t.Errorf("healthy member received %q, want %q", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("healthy member never received %q", want)
		}
	}
}

func TestOnRoomEmptyFiresAfterLastUnregister(t *testing.T) {
	h := NewHub()
	emptied := make(chan string, 2)
	h.OnRoomEmpty = func(roomID string) { emptied <- roomID }
	go h.Run()

	first := newTestClient("r1", "u1", 4)
	second := newTestClient("r1", "u2", 4)
	register(t, h, first)
	h.Register <- second
	waitFor(t, func() bool { return h.MemberCount("r1") == 2 })

	h.Unregister <- first
	waitFor(t, func() bool { return h.MemberCount("r1") == 1 })
	select {
	case roomID := <-emptied:
		t.Fatalf("OnRoomEmpty(%s) fired with a member still present", roomID)
	default:
	}

	h.Unregister <- second
	select {
	case roomID := <-emptied:
		if roomID != "r1" {
			t.Errorf("OnRoomEmpty fired for %q, want %q", roomID, "r1")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnRoomEmpty never fired")
	}
}
