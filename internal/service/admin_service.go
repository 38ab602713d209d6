package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/appointment_desk/internal/audit"
	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/notify"
	"github.com/Freeeeeet/appointment_desk/internal/repository"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const moduleAdmin = "Admin"

// CreateTeacherInput данные для создания учителя администратором
type CreateTeacherInput struct {
	Email    string
	Password string
	Name     string
	Profile  model.TeacherProfile
}

// UpdateTeacherInput изменяемые поля учителя
type UpdateTeacherInput struct {
	Name    string
	Profile model.TeacherProfile
}

type AdminService struct {
	userRepo        UserRepository
	slotRepo        SlotRepository
	appointmentRepo AppointmentRepository
	tx              Transactor
	identity        IdentityProvider
	sessions        SessionRevoker
	audit           Auditor
	logs            LogReader
	notifier        notify.Notifier
	logger          *zap.Logger
}

func NewAdminService(
	userRepo UserRepository,
	slotRepo SlotRepository,
	appointmentRepo AppointmentRepository,
	tx Transactor,
	identity IdentityProvider,
	sessions SessionRevoker,
	audit Auditor,
	logs LogReader,
	notifier notify.Notifier,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		userRepo:        userRepo,
		slotRepo:        slotRepo,
		appointmentRepo: appointmentRepo,
		tx:              tx,
		identity:        identity,
		sessions:        sessions,
		audit:           audit,
		logs:            logs,
		notifier:        notifier,
		logger:          logger,
	}
}

// ApproveUser одобряет студента или учителя
func (s *AdminService) ApproveUser(ctx context.Context, actor *session.Session, userID uuid.UUID) (*model.User, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}

	if err := s.userRepo.SetApproved(ctx, userID, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		s.audit.Error(ctx, moduleAdmin, fmt.Sprintf("Failed to approve user %s: %v", user.Email, err), actor.UserID)
		return nil, fmt.Errorf("approve user: %w", err)
	}
	user.Approved = true

	s.audit.Action(ctx, moduleAdmin, fmt.Sprintf("Approved %s: %s", user.Role, user.Email), actor.UserID)

	if err := s.notifier.UserApproved(ctx, user); err != nil {
		s.logger.Warn("Failed to notify about approval", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("User approved",
		zap.String("user_id", user.ID.String()),
		zap.String("admin_id", actor.UserID.String()),
	)

	return user, nil
}

// RejectUser удаляет запись пользователя. Учётная запись остаётся,
// поэтому повторный вход закончится ErrUserRecordNotFound.
func (s *AdminService) RejectUser(ctx context.Context, actor *session.Session, userID uuid.UUID) error {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	if user.IsAdmin() {
		return fmt.Errorf("%w: admins cannot be rejected", ErrForbidden)
	}

	if err := s.removeUser(ctx, actor, user); err != nil {
		return err
	}

	s.audit.Action(ctx, moduleAdmin, fmt.Sprintf("Rejected %s: %s", user.Role, user.Email), actor.UserID)

	return nil
}

// removeUser удаляет запись пользователя и закрывает его сессии. Учителя
// с pending/approved записями удалить нельзя: слоты блокируются на время
// проверки, чтобы параллельное бронирование не проскочило.
func (s *AdminService) removeUser(ctx context.Context, actor *session.Session, user *model.User) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if user.IsTeacher() {
			if err := s.slotRepo.LockByTeacher(ctx, user.ID); err != nil {
				return err
			}

			active, err := s.appointmentRepo.Count(ctx, model.AppointmentFilter{
				TeacherID: &user.ID,
				Statuses:  []model.AppointmentStatus{model.AppointmentStatusPending, model.AppointmentStatusApproved},
			})
			if err != nil {
				return fmt.Errorf("count active appointments: %w", err)
			}
			if active > 0 {
				return fmt.Errorf("%w: teacher has %d active appointments", ErrSlotInUse, active)
			}
		}

		return s.userRepo.Delete(ctx, user.ID)
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("user: %w", ErrNotFound)
		case errors.Is(err, ErrSlotInUse):
			return err
		}
		s.audit.Error(ctx, moduleAdmin, fmt.Sprintf("Failed to remove user %s: %v", user.Email, err), actor.UserID)
		return fmt.Errorf("remove user: %w", err)
	}

	// запись уже удалена; Authenticate всё равно не пустит оставшиеся сессии
	closed, err := s.sessions.DestroyAllForUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to close sessions of removed user",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		s.audit.Error(ctx, moduleAdmin, fmt.Sprintf("Failed to close sessions of %s: %v", user.Email, err), actor.UserID)
	}

	s.logger.Info("User removed",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.Int("sessions_closed", closed),
		zap.String("admin_id", actor.UserID.String()),
	)

	return nil
}

// ListPendingApprovals возвращает неодобренных пользователей по фильтру
func (s *AdminService) ListPendingApprovals(ctx context.Context, actor *session.Session, filter model.ApprovalFilter) ([]*model.User, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	role, ok := filter.Role()
	if !ok {
		return nil, fmt.Errorf("%w: unknown filter %q", ErrValidation, filter)
	}

	users, err := s.userRepo.List(ctx, role, ptr(false))
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}

	// админы одобрены всегда, но фильтр "all" их не должен показывать
	pending := users[:0]
	for _, u := range users {
		if !u.IsAdmin() {
			pending = append(pending, u)
		}
	}

	return pending, nil
}

// ListTeachers возвращает всех учителей
func (s *AdminService) ListTeachers(ctx context.Context, actor *session.Session) ([]*model.User, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	teachers, err := s.userRepo.List(ctx, ptr(model.RoleTeacher), nil)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}

	return teachers, nil
}

// CreateTeacher создаёт одобренного учителя. Учётная запись создаётся
// через провайдер идентификации и не затрагивает сессию администратора.
func (s *AdminService) CreateTeacher(ctx context.Context, actor *session.Session, in CreateTeacherInput) (*model.User, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: email and name are required", ErrValidation)
	}

	id, err := s.identity.CreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		s.audit.Error(ctx, moduleAdmin, fmt.Sprintf("Failed to create teacher %s: %v", in.Email, err), actor.UserID)
		return nil, err
	}

	profile := in.Profile
	teacher := &model.User{
		ID:       id,
		Email:    in.Email,
		Name:     in.Name,
		Role:     model.RoleTeacher,
		Approved: true,
		Teacher:  &profile,
	}

	if err := s.userRepo.Create(ctx, teacher); err != nil {
		if delErr := s.identity.DeleteAccount(ctx, id); delErr != nil {
			s.logger.Error("Failed to roll back account",
				zap.String("account_id", id.String()),
				zap.Error(delErr),
			)
		}
		s.audit.Error(ctx, moduleAdmin, fmt.Sprintf("Failed to create teacher %s: %v", in.Email, err), actor.UserID)
		return nil, fmt.Errorf("create teacher: %w", err)
	}

	s.audit.Action(ctx, moduleAdmin, fmt.Sprintf("Teacher created: %s", teacher.Email), actor.UserID)

	s.logger.Info("Teacher created",
		zap.String("teacher_id", teacher.ID.String()),
		zap.String("admin_id", actor.UserID.String()),
	)

	return teacher, nil
}

// UpdateTeacher обновляет имя и профиль учителя
func (s *AdminService) UpdateTeacher(ctx context.Context, actor *session.Session, teacherID uuid.UUID, in UpdateTeacherInput) (*model.User, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	if err := s.userRepo.UpdateTeacherProfile(ctx, teacherID, in.Name, in.Profile); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("teacher: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("update teacher: %w", err)
	}

	teacher, err := s.userRepo.GetByID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	if teacher == nil {
		return nil, fmt.Errorf("teacher: %w", ErrNotFound)
	}

	s.audit.Action(ctx, moduleAdmin, fmt.Sprintf("Teacher updated: %s", teacher.Email), actor.UserID)

	return teacher, nil
}

// DeleteTeacher удаляет учителя вместе со свободными слотами. Пока у
// учителя есть активные записи, возвращает ErrSlotInUse.
func (s *AdminService) DeleteTeacher(ctx context.Context, actor *session.Session, teacherID uuid.UUID) error {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return err
	}

	teacher, err := s.userRepo.GetByID(ctx, teacherID)
	if err != nil {
		return fmt.Errorf("get teacher: %w", err)
	}
	if teacher == nil || !teacher.IsTeacher() {
		return fmt.Errorf("teacher: %w", ErrNotFound)
	}

	if err := s.removeUser(ctx, actor, teacher); err != nil {
		return err
	}

	s.audit.Action(ctx, moduleAdmin, fmt.Sprintf("Teacher deleted: %s", teacher.Email), actor.UserID)

	return nil
}

// ListAllAppointments возвращает все записи, новые первыми
func (s *AdminService) ListAllAppointments(ctx context.Context, actor *session.Session) ([]*model.Appointment, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	appointments, err := s.appointmentRepo.List(ctx, model.AppointmentFilter{}, repository.OrderByCreatedDesc, 0)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return appointments, nil
}

// ListLogs возвращает последние записи журнала
func (s *AdminService) ListLogs(ctx context.Context, actor *session.Session, limit int) ([]*model.LogEntry, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = audit.DefaultListLimit
	}

	entries, err := s.logs.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	return entries, nil
}
