package model

import (
	"time"

	"github.com/google/uuid"
)

// Credential учётная запись провайдера идентификации
type Credential struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
