package syncview

import (
	"testing"
	"time"

	"venueBookerAPI/internal/types/message"
)

func msg(id, sender, receiver string, at time.Time) message.Message {
	return message.Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		VenueID:    "v1",
		Text:       "hi",
		CreatedAt:  at,
	}
}

func TestInboxKeepsLatestPerCounterpart(t *testing.T) {
	now := time.Now()
	ib := NewInbox("me")

	ib.Observe(msg("m1", "alice", "me", now))
	ib.Observe(msg("m2", "alice", "me", now.Add(time.Minute)))
	ib.Observe(msg("m3", "bob", "me", now.Add(30*time.Second)))

	entries := ib.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected one entry per counterpart, got %d", len(entries))
	}
	if entries[0].ID != "m2" {
		t.Errorf("Expected alice's latest message first, got %s", entries[0].ID)
	}
	if entries[1].ID != "m3" {
		t.Errorf("Expected bob's message second, got %s", entries[1].ID)
	}
}

func TestInboxIgnoresOwnMessages(t *testing.T) {
	ib := NewInbox("me")
	ib.Observe(msg("m1", "me", "alice", time.Now()))

	if len(ib.Entries()) != 0 {
		t.Error("Viewer-authored messages must be excluded from the inbox projection")
	}
}

func TestInboxStaleDeliveryDoesNotOverwrite(t *testing.T) {
	now := time.Now()
	ib := NewInbox("me")

	ib.Observe(msg("m2", "alice", "me", now.Add(time.Minute)))
	// Late (or duplicated) delivery of an older message.
	ib.Observe(msg("m1", "alice", "me", now))
	ib.Observe(msg("m2", "alice", "me", now.Add(time.Minute)))

	entries := ib.Entries()
	if len(entries) != 1 || entries[0].ID != "m2" {
		t.Errorf("Expected m2 to survive stale redelivery, got %+v", entries)
	}
}
