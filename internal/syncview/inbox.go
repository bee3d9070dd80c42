package syncview

import (
	"sort"
	"sync"

	"venueBookerAPI/internal/types/message"
)

// Inbox collapses a stream of message events into one entry per counterpart,
// keeping whichever message has the latest creation timestamp. Messages the
// viewer authored themselves are excluded: the projection answers "who
// messaged me most recently", not "all my conversations".
type Inbox struct {
	viewerID string

	mu     sync.RWMutex
	latest map[string]message.Message
}

func NewInbox(viewerID string) *Inbox {
	return &Inbox{
		viewerID: viewerID,
		latest:   make(map[string]message.Message),
	}
}

// Observe merges one message event. Re-delivering the same message is a no-op.
func (ib *Inbox) Observe(m message.Message) {
	if m.SenderID == ib.viewerID {
		return
	}

	ib.mu.Lock()
	defer ib.mu.Unlock()

	current, ok := ib.latest[m.SenderID]
	if ok && !m.CreatedAt.After(current.CreatedAt) {
		return
	}
	ib.latest[m.SenderID] = m
}

// Entries returns the latest message per counterpart, newest first.
func (ib *Inbox) Entries() []message.Message {
	ib.mu.RLock()
	defer ib.mu.RUnlock()

	out := make([]message.Message, 0, len(ib.latest))
	for _, m := range ib.latest {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
