// Package identity хранит учётные данные и проверяет пароли.
// Провайдер не знает о сессиях: создание аккаунта никогда не влияет
// на сессию того, кто его создаёт.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength минимальная длина пароля
const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// CredentialStore хранилище учётных данных
type CredentialStore interface {
	Create(ctx context.Context, c *model.Credential) error
	GetByEmail(ctx context.Context, email string) (*model.Credential, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Provider struct {
	store  CredentialStore
	cost   int
	logger *zap.Logger
}

func NewProvider(store CredentialStore, logger *zap.Logger) *Provider {
	return &Provider{
		store:  store,
		cost:   bcrypt.DefaultCost,
		logger: logger,
	}
}

// CreateAccount создаёт учётную запись и возвращает её идентификатор
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (uuid.UUID, error) {
	email = strings.TrimSpace(email)
	if len(password) < MinPasswordLength {
		return uuid.Nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	cred := &model.Credential{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
	}

	if err := p.store.Create(ctx, cred); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return uuid.Nil, ErrEmailTaken
		}
		return uuid.Nil, fmt.Errorf("create account: %w", err)
	}

	p.logger.Info("Account created", zap.String("account_id", cred.ID.String()))

	return cred.ID, nil
}

// SignIn проверяет пароль и возвращает идентификатор учётной записи
func (p *Provider) SignIn(ctx context.Context, email, password string) (uuid.UUID, error) {
	cred, err := p.store.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return uuid.Nil, fmt.Errorf("get account: %w", err)
	}

	if cred == nil {
		return uuid.Nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return uuid.Nil, ErrInvalidCredentials
	}

	return cred.ID, nil
}

// DeleteAccount удаляет учётную запись
func (p *Provider) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := p.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	p.logger.Info("Account deleted", zap.String("account_id", id.String()))

	return nil
}
