package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/notify"
	"github.com/Freeeeeet/appointment_desk/internal/repository"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const moduleStudent = "Student"

// BookInput выбор студента при записи
type BookInput struct {
	TeacherID uuid.UUID
	SlotID    uuid.UUID
	Purpose   string
}

type BookingService struct {
	userRepo        UserRepository
	slotRepo        SlotRepository
	appointmentRepo AppointmentRepository
	tx              Transactor
	audit           Auditor
	notifier        notify.Notifier
	logger          *zap.Logger
}

func NewBookingService(
	userRepo UserRepository,
	slotRepo SlotRepository,
	appointmentRepo AppointmentRepository,
	tx Transactor,
	audit Auditor,
	notifier notify.Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		userRepo:        userRepo,
		slotRepo:        slotRepo,
		appointmentRepo: appointmentRepo,
		tx:              tx,
		audit:           audit,
		notifier:        notifier,
		logger:          logger,
	}
}

// Book записывает студента на свободный слот одобренного учителя.
// Слот помечается занятым и запись создаётся в одной транзакции;
// второй студент на тот же слот получает ErrSlotNotAvailable.
func (s *BookingService) Book(ctx context.Context, actor *session.Session, in BookInput) (*model.Appointment, error) {
	if err := requireRole(actor, model.RoleStudent); err != nil {
		return nil, err
	}

	if in.TeacherID == uuid.Nil || in.SlotID == uuid.Nil {
		return nil, ErrMissingSelection
	}

	teacher, err := s.userRepo.GetByID(ctx, in.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	if teacher == nil || !teacher.IsApprovedTeacher() {
		return nil, fmt.Errorf("teacher: %w", ErrNotFound)
	}

	var appointment *model.Appointment
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		slot, err := s.slotRepo.Book(ctx, in.SlotID, in.TeacherID)
		if err != nil {
			return err
		}

		if slot == nil {
			existing, err := s.slotRepo.GetByID(ctx, in.SlotID)
			if err != nil {
				return err
			}
			if existing == nil || existing.TeacherID != in.TeacherID {
				return fmt.Errorf("slot: %w", ErrNotFound)
			}
			return ErrSlotNotAvailable
		}

		slotID := slot.ID
		appointment = &model.Appointment{
			ID:           uuid.New(),
			StudentID:    actor.UserID,
			StudentName:  actor.Name,
			StudentEmail: actor.Email,
			TeacherID:    teacher.ID,
			TeacherName:  teacher.Name,
			SlotID:       &slotID,
			Date:         slot.Date,
			TimeRange:    slot.TimeRange(),
			Purpose:      strings.TrimSpace(in.Purpose),
			Status:       model.AppointmentStatusPending,
		}

		if err := s.appointmentRepo.Create(ctx, appointment); err != nil {
			if errors.Is(err, repository.ErrSlotTaken) {
				return ErrSlotNotAvailable
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			s.audit.Error(ctx, moduleStudent, fmt.Sprintf("Failed to book appointment: %v", err), actor.UserID)
			return nil, fmt.Errorf("book appointment: %w", err)
		}
		return nil, err
	}

	s.audit.Action(ctx, moduleStudent,
		fmt.Sprintf("Appointment booked with %s on %s %s",
			teacher.Name, appointment.Date.Format(model.DateLayout), appointment.TimeRange),
		actor.UserID)

	if err := s.notifier.AppointmentBooked(ctx, appointment); err != nil {
		s.logger.Warn("Failed to notify about booking",
			zap.String("appointment_id", appointment.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Slot booked",
		zap.String("appointment_id", appointment.ID.String()),
		zap.String("student_id", actor.UserID.String()),
		zap.String("slot_id", in.SlotID.String()),
	)

	return appointment, nil
}

// Approve одобряет ожидающую запись учителя. Слот не меняется.
func (s *BookingService) Approve(ctx context.Context, actor *session.Session, appointmentID uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, actor, appointmentID, model.AppointmentStatusApproved)
}

// Cancel отменяет запись учителя и освобождает её слот
func (s *BookingService) Cancel(ctx context.Context, actor *session.Session, appointmentID uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, actor, appointmentID, model.AppointmentStatusCancelled)
}

func (s *BookingService) transition(
	ctx context.Context,
	actor *session.Session,
	appointmentID uuid.UUID,
	to model.AppointmentStatus,
) (*model.Appointment, error) {
	if err := requireRole(actor, model.RoleTeacher); err != nil {
		return nil, err
	}

	var appointment *model.Appointment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.appointmentRepo.GetByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("appointment: %w", ErrNotFound)
		}
		if a.TeacherID != actor.UserID {
			return fmt.Errorf("%w: appointment belongs to another teacher", ErrForbidden)
		}
		if !a.Status.CanTransitionTo(to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
		}

		if err := s.appointmentRepo.UpdateStatus(ctx, a.ID, to); err != nil {
			return err
		}

		if to == model.AppointmentStatusCancelled && a.SlotID != nil {
			if err := s.slotRepo.Release(ctx, *a.SlotID); err != nil {
				return err
			}
		}

		a.Status = to
		appointment = a
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			s.audit.Error(ctx, moduleTeacher, fmt.Sprintf("Failed to set appointment %s to %s: %v", appointmentID, to, err), actor.UserID)
			return nil, fmt.Errorf("update appointment: %w", err)
		}
		return nil, err
	}

	s.audit.Action(ctx, moduleTeacher,
		fmt.Sprintf("Appointment %s with %s", to, appointment.StudentName),
		actor.UserID)

	if err := s.notifier.AppointmentStatusChanged(ctx, appointment); err != nil {
		s.logger.Warn("Failed to notify about status change",
			zap.String("appointment_id", appointment.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Appointment status changed",
		zap.String("appointment_id", appointment.ID.String()),
		zap.String("status", string(to)),
		zap.String("teacher_id", actor.UserID.String()),
	)

	return appointment, nil
}

// ListStudentAppointments возвращает записи студента, новые первыми
func (s *BookingService) ListStudentAppointments(ctx context.Context, actor *session.Session) ([]*model.Appointment, error) {
	if err := requireRole(actor, model.RoleStudent); err != nil {
		return nil, err
	}

	filter := model.AppointmentFilter{StudentID: &actor.UserID}
	appointments, err := s.appointmentRepo.List(ctx, filter, repository.OrderByCreatedDesc, 0)
	if err != nil {
		return nil, fmt.Errorf("list student appointments: %w", err)
	}
	return appointments, nil
}

// ListTeacherAppointments возвращает записи учителя, при status != nil
// только в указанном статусе
func (s *BookingService) ListTeacherAppointments(ctx context.Context, actor *session.Session, status *model.AppointmentStatus) ([]*model.Appointment, error) {
	if err := requireRole(actor, model.RoleTeacher); err != nil {
		return nil, err
	}

	filter := model.AppointmentFilter{TeacherID: &actor.UserID}
	if status != nil {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *status)
		}
		filter.Statuses = []model.AppointmentStatus{*status}
	}

	appointments, err := s.appointmentRepo.List(ctx, filter, repository.OrderByCreatedDesc, 0)
	if err != nil {
		return nil, fmt.Errorf("list teacher appointments: %w", err)
	}
	return appointments, nil
}

// ListPendingForTeacher возвращает ожидающие одобрения записи учителя
func (s *BookingService) ListPendingForTeacher(ctx context.Context, actor *session.Session) ([]*model.Appointment, error) {
	return s.ListTeacherAppointments(ctx, actor, ptr(model.AppointmentStatusPending))
}
