package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "appointment-desk"

var (
	ErrNoSession    = errors.New("no active session")
	ErrTokenInvalid = errors.New("session token is invalid")
)

// Store хранилище сессий; Get возвращает nil, если сессии нет
type Store interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, s *Session) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Create открывает сессию для пользователя и возвращает подписанный токен
func (m *Manager) Create(ctx context.Context, user *model.User) (*Session, string, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		Role:      user.Role,
		Name:      user.Name,
		Email:     user.Email,
		ExpiresAt: now.Add(m.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID.String(),
			Subject:   user.ID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}

	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}

	return s, signed, nil
}

// Resolve проверяет токен и возвращает живую сессию
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrNoSession
		}
		return nil, ErrTokenInvalid
	}

	id, err := uuid.Parse(c.ID)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if s == nil || s.UserID.String() != c.Subject {
		return nil, ErrNoSession
	}

	return s, nil
}

// Destroy закрывает сессию
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	if s == nil {
		return ErrNoSession
	}

	if err := m.store.Delete(ctx, s); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// DestroyAllForUser закрывает все сессии пользователя, например после
// удаления его записи администратором
func (m *Manager) DestroyAllForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := m.store.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return n, nil
}
