// Package session хранит контекст аутентифицированного пользователя:
// создаётся при входе, уничтожается при выходе и явно передаётся в сервисы.
package session

import (
	"context"
	"time"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/google/uuid"
)

type Session struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Role      model.Role `json:"role"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// HasRole проверяет роль владельца сессии
func (s *Session) HasRole(role model.Role) bool {
	return s != nil && s.Role == role
}

type ctxKey struct{}

// WithSession кладёт сессию в контекст запроса
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext достаёт сессию из контекста запроса
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
