package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CredentialRepository struct {
	*base.Repository
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{Repository: base.NewRepository(pool)}
}

// Create сохраняет учётные данные
func (r *CredentialRepository) Create(ctx context.Context, c *model.Credential) error {
	query := `
		INSERT INTO credentials (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query, c.ID, c.Email, c.PasswordHash).Scan(&c.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create credential: %w", err)
	}

	return nil
}

// GetByEmail получает учётные данные по email без учёта регистра
func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM credentials
		WHERE lower(email) = lower($1)
	`

	var c model.Credential
	err := r.QueryRow(ctx, query, email).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credential by email: %w", err)
	}

	return &c, nil
}

// Delete удаляет учётные данные
func (r *CredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
