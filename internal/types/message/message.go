package message

import "time"

// Message is immutable once created. Conversation order is creation-timestamp
// order within the (sender, receiver, venue) triple.
type Message struct {
	ID         string    `db:"id"          json:"id"`
	SenderID   string    `db:"sender_id"   json:"sender_id"`
	ReceiverID string    `db:"receiver_id" json:"receiver_id"`
	VenueID    string    `db:"venue_id"    json:"venue_id"`
	Text       string    `db:"text"        json:"text"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}

func (m *Message) ItemID() string { return m.ID }

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	VenueID    string `json:"venue_id" validate:"required"`
	Text       string `json:"text" validate:"required,max=2000"`
}
