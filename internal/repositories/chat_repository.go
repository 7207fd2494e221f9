package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"carpool/internal/domain/models"
)

type ChatRepository struct {
	DB *sql.DB
}

func (r ChatRepository) db() *sql.DB {
	return connOr(r.DB)
}

func (r ChatRepository) Insert(ctx context.Context, m models.ChatMessage) error {
	_, err := r.db().ExecContext(ctx,
		`INSERT INTO chat_messages (id, booking_id, sender_email, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.BookingID, m.SenderEmail, m.Body, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// ListByBooking returns a booking's messages oldest first.
func (r ChatRepository) ListByBooking(ctx context.Context, bookingID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	rows, err := r.db().QueryContext(ctx, `
		SELECT id, booking_id, sender_email, body, created_at FROM (
			SELECT id, booking_id, sender_email, body, created_at
			FROM chat_messages WHERE booking_id = ?
			ORDER BY created_at DESC LIMIT ?
		) recent ORDER BY created_at ASC`, bookingID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	out := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.BookingID, &m.SenderEmail, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
