package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SendMessageInput сообщение студента учителю
type SendMessageInput struct {
	ToID    uuid.UUID
	Subject string
	Body    string
}

type MessageService struct {
	userRepo    UserRepository
	messageRepo MessageRepository
	audit       Auditor
	logger      *zap.Logger
}

func NewMessageService(userRepo UserRepository, messageRepo MessageRepository, audit Auditor, logger *zap.Logger) *MessageService {
	return &MessageService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		audit:       audit,
		logger:      logger,
	}
}

// Send отправляет сообщение одобренному учителю
func (s *MessageService) Send(ctx context.Context, actor *session.Session, in SendMessageInput) (*model.Message, error) {
	if err := requireRole(actor, model.RoleStudent); err != nil {
		return nil, err
	}

	if in.ToID == uuid.Nil {
		return nil, ErrMissingRecipient
	}

	in.Subject = strings.TrimSpace(in.Subject)
	in.Body = strings.TrimSpace(in.Body)
	if in.Subject == "" || in.Body == "" {
		return nil, fmt.Errorf("%w: subject and message are required", ErrValidation)
	}

	teacher, err := s.userRepo.GetByID(ctx, in.ToID)
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	if teacher == nil || !teacher.IsApprovedTeacher() {
		return nil, fmt.Errorf("teacher: %w", ErrNotFound)
	}

	msg := &model.Message{
		ID:        uuid.New(),
		FromID:    actor.UserID,
		FromName:  actor.Name,
		FromEmail: actor.Email,
		ToID:      teacher.ID,
		ToName:    teacher.Name,
		Subject:   in.Subject,
		Body:      in.Body,
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		s.audit.Error(ctx, moduleStudent, fmt.Sprintf("Failed to send message: %v", err), actor.UserID)
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.audit.Action(ctx, moduleStudent, fmt.Sprintf("Message sent to %s", teacher.Name), actor.UserID)

	s.logger.Info("Message sent",
		zap.String("message_id", msg.ID.String()),
		zap.String("from_id", actor.UserID.String()),
		zap.String("to_id", teacher.ID.String()),
	)

	return msg, nil
}

// Inbox сообщения учителю, новые первыми
func (s *MessageService) Inbox(ctx context.Context, actor *session.Session) ([]*model.Message, error) {
	if err := requireRole(actor, model.RoleTeacher); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListTo(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return messages, nil
}

// Sent сообщения студента, новые первыми
func (s *MessageService) Sent(ctx context.Context, actor *session.Session) ([]*model.Message, error) {
	if err := requireRole(actor, model.RoleStudent); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListFrom(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list sent messages: %w", err)
	}
	return messages, nil
}

// ListApprovedTeachers ищет одобренных учителей по имени, кафедре или предмету
func (s *MessageService) ListApprovedTeachers(ctx context.Context, query string) ([]*model.User, error) {
	teachers, err := s.userRepo.SearchTeachers(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("search teachers: %w", err)
	}
	return teachers, nil
}
