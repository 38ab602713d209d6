package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LogRepository struct {
	*base.Repository
}

func NewLogRepository(pool *pgxpool.Pool) *LogRepository {
	return &LogRepository{Repository: base.NewRepository(pool)}
}

// Create добавляет запись журнала
func (r *LogRepository) Create(ctx context.Context, e *model.LogEntry) error {
	query := `
		INSERT INTO logs (id, timestamp, level, module, message, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.ExecAffected(ctx, query, e.ID, e.Timestamp, e.Level, e.Module, e.Message, e.UserID)
	if err != nil {
		return fmt.Errorf("create log entry: %w", err)
	}

	return nil
}

// ListRecent получает последние записи журнала
func (r *LogRepository) ListRecent(ctx context.Context, limit int) ([]*model.LogEntry, error) {
	query := `
		SELECT id, timestamp, level, module, message, user_id
		FROM logs
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := r.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list log entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Level, &e.Module, &e.Message, &e.UserID); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}

	return entries, nil
}

// DeleteOlderThan удаляет записи старше before и возвращает их количество
func (r *LogRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	n, err := r.ExecAffected(ctx, `DELETE FROM logs WHERE timestamp < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete old log entries: %w", err)
	}
	return n, nil
}
