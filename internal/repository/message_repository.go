package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	*base.Repository
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{Repository: base.NewRepository(pool)}
}

// Create сохраняет сообщение
func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	query := `
		INSERT INTO messages (id, from_id, from_name, from_email, to_id, to_name, subject, body)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		m.ID,
		m.FromID,
		m.FromName,
		m.FromEmail,
		m.ToID,
		m.ToName,
		m.Subject,
		m.Body,
	).Scan(&m.CreatedAt)

	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

// ListTo получает входящие сообщения пользователя, новые первыми
func (r *MessageRepository) ListTo(ctx context.Context, toID uuid.UUID) ([]*model.Message, error) {
	return r.list(ctx, `WHERE to_id = $1`, toID)
}

// ListFrom получает отправленные сообщения пользователя, новые первыми
func (r *MessageRepository) ListFrom(ctx context.Context, fromID uuid.UUID) ([]*model.Message, error) {
	return r.list(ctx, `WHERE from_id = $1`, fromID)
}

// CountTo считает входящие сообщения
func (r *MessageRepository) CountTo(ctx context.Context, toID uuid.UUID) (int, error) {
	n, err := r.Count(ctx, `SELECT count(*) FROM messages WHERE to_id = $1`, toID)
	if err != nil {
		return 0, fmt.Errorf("count received messages: %w", err)
	}
	return n, nil
}

// CountFrom считает отправленные сообщения
func (r *MessageRepository) CountFrom(ctx context.Context, fromID uuid.UUID) (int, error) {
	n, err := r.Count(ctx, `SELECT count(*) FROM messages WHERE from_id = $1`, fromID)
	if err != nil {
		return 0, fmt.Errorf("count sent messages: %w", err)
	}
	return n, nil
}

func (r *MessageRepository) list(ctx context.Context, where string, id uuid.UUID) ([]*model.Message, error) {
	query := `
		SELECT id, from_id, from_name, from_email, to_id, to_name, subject, body, created_at
		FROM messages
		` + where + `
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		var m model.Message
		err := rows.Scan(
			&m.ID,
			&m.FromID,
			&m.FromName,
			&m.FromEmail,
			&m.ToID,
			&m.ToName,
			&m.Subject,
			&m.Body,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
