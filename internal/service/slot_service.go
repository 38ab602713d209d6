package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/repository"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const moduleTeacher = "Teacher"

// CreateSlotInput данные формы нового слота
type CreateSlotInput struct {
	Day       string // подпись дня, по умолчанию день недели даты
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	EndTime   string // HH:MM
}

type SlotService struct {
	slotRepo        SlotRepository
	appointmentRepo AppointmentRepository
	tx              Transactor
	audit           Auditor
	logger          *zap.Logger
}

func NewSlotService(
	slotRepo SlotRepository,
	appointmentRepo AppointmentRepository,
	tx Transactor,
	audit Auditor,
	logger *zap.Logger,
) *SlotService {
	return &SlotService{
		slotRepo:        slotRepo,
		appointmentRepo: appointmentRepo,
		tx:              tx,
		audit:           audit,
		logger:          logger,
	}
}

// CreateSlot создаёт свободный слот учителя
func (s *SlotService) CreateSlot(ctx context.Context, actor *session.Session, in CreateSlotInput) (*model.Slot, error) {
	if err := requireRole(actor, model.RoleTeacher); err != nil {
		return nil, err
	}

	date, err := time.Parse(model.DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return nil, fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrValidation)
	}

	start, err := model.ParseClockTime(strings.TrimSpace(in.StartTime))
	if err != nil {
		return nil, fmt.Errorf("%w: start time: %v", ErrValidation, err)
	}

	end, err := model.ParseClockTime(strings.TrimSpace(in.EndTime))
	if err != nil {
		return nil, fmt.Errorf("%w: end time: %v", ErrValidation, err)
	}

	if !start.Before(end) {
		return nil, ErrInvalidTimeRange
	}

	day := strings.TrimSpace(in.Day)
	if day == "" {
		day = date.Weekday().String()
	}

	slot := &model.Slot{
		ID:          uuid.New(),
		TeacherID:   actor.UserID,
		TeacherName: actor.Name,
		Day:         day,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		IsBooked:    false,
	}

	if err := s.slotRepo.Create(ctx, slot); err != nil {
		s.audit.Error(ctx, moduleTeacher, fmt.Sprintf("Failed to create slot: %v", err), actor.UserID)
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.audit.Action(ctx, moduleTeacher,
		fmt.Sprintf("Slot created: %s %s %s", slot.Day, slot.Date.Format(model.DateLayout), slot.TimeRange()),
		actor.UserID)

	s.logger.Info("Slot created",
		zap.String("slot_id", slot.ID.String()),
		zap.String("teacher_id", actor.UserID.String()),
	)

	return slot, nil
}

// ListAvailableSlots возвращает свободные слоты учителя по возрастанию даты
func (s *SlotService) ListAvailableSlots(ctx context.Context, teacherID uuid.UUID) ([]*model.Slot, error) {
	slots, err := s.slotRepo.ListByTeacher(ctx, teacherID, true)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	return slots, nil
}

// ListTeacherSlots возвращает все слоты текущего учителя
func (s *SlotService) ListTeacherSlots(ctx context.Context, actor *session.Session) ([]*model.Slot, error) {
	if err := requireRole(actor, model.RoleTeacher); err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.ListByTeacher(ctx, actor.UserID, false)
	if err != nil {
		return nil, fmt.Errorf("list teacher slots: %w", err)
	}
	return slots, nil
}

// DeleteSlot удаляет слот учителя, если на него нет активной записи
func (s *SlotService) DeleteSlot(ctx context.Context, actor *session.Session, slotID uuid.UUID) error {
	if err := requireRole(actor, model.RoleTeacher); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		slot, err := s.slotRepo.GetByIDForUpdate(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if slot == nil {
			return fmt.Errorf("slot: %w", ErrNotFound)
		}
		if slot.TeacherID != actor.UserID {
			return fmt.Errorf("%w: slot belongs to another teacher", ErrForbidden)
		}

		active, err := s.appointmentRepo.HasActiveForSlot(ctx, slotID)
		if err != nil {
			return err
		}
		if active || slot.IsBooked {
			return ErrSlotInUse
		}

		if err := s.slotRepo.Delete(ctx, slotID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("slot: %w", ErrNotFound)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			s.audit.Error(ctx, moduleTeacher, fmt.Sprintf("Failed to delete slot: %v", err), actor.UserID)
		}
		return err
	}

	s.audit.Action(ctx, moduleTeacher, fmt.Sprintf("Slot deleted: %s", slotID), actor.UserID)

	return nil
}
