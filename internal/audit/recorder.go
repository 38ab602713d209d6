// Package audit ведёт журнал действий пользователей: каждая запись уходит
// в zap и сохраняется в таблицу logs.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultListLimit сколько записей показывать администратору по умолчанию
const DefaultListLimit = 50

type Store interface {
	Create(ctx context.Context, e *model.LogEntry) error
	ListRecent(ctx context.Context, limit int) ([]*model.LogEntry, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type Recorder struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (r *Recorder) Info(ctx context.Context, module, message string, userID uuid.UUID) {
	r.record(ctx, model.LogLevelInfo, module, message, userID)
}

func (r *Recorder) Warn(ctx context.Context, module, message string, userID uuid.UUID) {
	r.record(ctx, model.LogLevelWarn, module, message, userID)
}

func (r *Recorder) Error(ctx context.Context, module, message string, userID uuid.UUID) {
	r.record(ctx, model.LogLevelError, module, message, userID)
}

func (r *Recorder) Debug(ctx context.Context, module, message string, userID uuid.UUID) {
	r.record(ctx, model.LogLevelDebug, module, message, userID)
}

// Action фиксирует действие пользователя
func (r *Recorder) Action(ctx context.Context, module, message string, userID uuid.UUID) {
	r.record(ctx, model.LogLevelAction, module, message, userID)
}

// Recent возвращает последние записи журнала
func (r *Recorder) Recent(ctx context.Context, limit int) ([]*model.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	entries, err := r.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	return entries, nil
}

// Prune удаляет записи старше retention
func (r *Recorder) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := r.store.DeleteOlderThan(ctx, r.now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("prune audit log: %w", err)
	}
	return n, nil
}

func (r *Recorder) record(ctx context.Context, level model.LogLevel, module, message string, userID uuid.UUID) {
	entry := &model.LogEntry{
		ID:        uuid.New(),
		Timestamp: r.now().UTC(),
		Level:     level,
		Module:    module,
		Message:   message,
	}
	if userID != uuid.Nil {
		entry.UserID = &userID
	}

	fields := []zap.Field{
		zap.String("module", module),
		zap.String("level", string(level)),
	}
	if entry.UserID != nil {
		fields = append(fields, zap.String("user_id", userID.String()))
	}

	switch level {
	case model.LogLevelError:
		r.logger.Error(message, fields...)
	case model.LogLevelWarn:
		r.logger.Warn(message, fields...)
	case model.LogLevelDebug:
		r.logger.Debug(message, fields...)
	default:
		r.logger.Info(message, fields...)
	}

	// журнал не должен ронять операцию, которую он описывает
	if err := r.store.Create(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Error("Failed to write audit log entry", zap.Error(err))
	}
}
