package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"venueBookerAPI/internal/types/event"
	"venueBookerAPI/internal/types/message"
)

type MessageService struct {
	db          *pgxpool.Pool
	broadcaster Broadcaster
	dispatcher  *PushDispatcher
}

func NewMessageService(db *pgxpool.Pool, broadcaster Broadcaster, dispatcher *PushDispatcher) *MessageService {
	return &MessageService{db: db, broadcaster: broadcaster, dispatcher: dispatcher}
}

// Send stores the message (immutable from here on) and broadcasts it to both
// parties' message scopes. A receiver with no live connection gets a push
// notification instead, queued on the dispatcher.
func (s *MessageService) Send(ctx context.Context, senderID string, req message.SendMessageRequest) (*message.Message, error) {
	m := &message.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		VenueID:    req.VenueID,
		Text:       req.Text,
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, venue_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`, m.ID, m.SenderID, m.ReceiverID, m.VenueID, m.Text).Scan(&m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	receiverScope := event.MessageScope(m.ReceiverID)
	s.broadcaster.Publish(event.MessageSent, receiverScope, m)
	s.broadcaster.Publish(event.MessageSent, event.MessageScope(m.SenderID), m)

	if s.dispatcher != nil && !s.broadcaster.HasSubscriber(receiverScope) {
		tokens, err := s.deviceTokens(ctx, m.ReceiverID)
		if err != nil {
			// Push is best effort; the message itself is already stored.
			return m, nil
		}
		s.dispatcher.Dispatch(&PushJob{
			Tokens: tokens,
			Title:  "New message",
			Body:   m.Text,
			Data:   map[string]any{"message_id": m.ID, "sender_id": m.SenderID, "venue_id": m.VenueID},
		})
	}

	return m, nil
}

// LatestPerCounterpart is the inbox projection: for each user who messaged
// viewerID, the single most recent message. The viewer's own outgoing messages
// are excluded.
func (s *MessageService) LatestPerCounterpart(ctx context.Context, viewerID string) ([]message.Message, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT ON (sender_id)
			id, sender_id, receiver_id, venue_id, text, created_at
		FROM messages
		WHERE receiver_id = $1
		ORDER BY sender_id, created_at DESC
	`, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest messages: %w", err)
	}
	defer rows.Close()

	messages := make([]message.Message, 0)
	for rows.Next() {
		var m message.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.VenueID, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return messages, nil
}

// Thread returns the full conversation for a (viewer, counterpart, venue)
// triple in creation order.
func (s *MessageService) Thread(ctx context.Context, viewerID, counterpartID, venueID string) ([]message.Message, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, sender_id, receiver_id, venue_id, text, created_at
		FROM messages
		WHERE venue_id = $3
		  AND ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		ORDER BY created_at
	`, viewerID, counterpartID, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query thread: %w", err)
	}
	defer rows.Close()

	messages := make([]message.Message, 0)
	for rows.Next() {
		var m message.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.VenueID, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return messages, nil
}

// RegisterDevice stores a push token for the user.
func (s *MessageService) RegisterDevice(ctx context.Context, userID, token, platform string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO device_tokens (user_id, token, platform, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, token) DO NOTHING
	`, userID, token, platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *MessageService) deviceTokens(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT token FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
