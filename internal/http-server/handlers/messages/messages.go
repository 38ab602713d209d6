package messages

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/appointment_desk/internal/http-server/handlers"
	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/service"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, actor *session.Session, in service.SendMessageInput) (*model.Message, error)
}

type Mailbox interface {
	Inbox(ctx context.Context, actor *session.Session) ([]*model.Message, error)
	Sent(ctx context.Context, actor *session.Session) ([]*model.Message, error)
}

type TeacherSearcher interface {
	ListApprovedTeachers(ctx context.Context, query string) ([]*model.User, error)
}

type SendRequest struct {
	ToID    uuid.UUID `json:"to_id"`
	Subject string    `json:"subject" validate:"required,max=200"`
	Body    string    `json:"message" validate:"required,max=5000"`
}

func Send(log *zap.Logger, sender Sender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.Send"
		log := handlers.Logger(log, r, op)

		var req SendRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		msg, err := sender.Send(r.Context(), handlers.Actor(r), service.SendMessageInput{
			ToID:    req.ToID,
			Subject: req.Subject,
			Body:    req.Body,
		})
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.JSON(w, r, http.StatusCreated, msg)
	}
}

// Inbox GET /teacher/messages
func Inbox(log *zap.Logger, box Mailbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.Inbox"
		log := handlers.Logger(log, r, op)

		msgs, err := box.Inbox(r.Context(), handlers.Actor(r))
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.List(w, r, msgs)
	}
}

// Sent GET /student/messages
func Sent(log *zap.Logger, box Mailbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.Sent"
		log := handlers.Logger(log, r, op)

		msgs, err := box.Sent(r.Context(), handlers.Actor(r))
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.List(w, r, msgs)
	}
}

// Teachers GET /student/teachers?q=
func Teachers(log *zap.Logger, searcher TeacherSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.Teachers"
		log := handlers.Logger(log, r, op)

		teachers, err := searcher.ListApprovedTeachers(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.List(w, r, teachers)
	}
}
