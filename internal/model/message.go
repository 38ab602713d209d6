package model

import (
	"time"

	"github.com/google/uuid"
)

// Message represents a note sent from a student to a teacher
type Message struct {
	ID        uuid.UUID `json:"id"`
	FromID    uuid.UUID `json:"from_id"`
	FromName  string    `json:"from_name"`
	FromEmail string    `json:"from_email"`
	ToID      uuid.UUID `json:"to_id"`
	ToName    string    `json:"to_name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
