package service

import (
	"context"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/repository"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/google/uuid"
)

// recentLimit сколько записей показывать в блоках "последние"/"ближайшие"
const recentLimit = 5

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, role *model.Role, approved *bool) ([]*model.User, error)
	SearchTeachers(ctx context.Context, q string) ([]*model.User, error)
	Count(ctx context.Context, role *model.Role, approved *bool) (int, error)
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	UpdateTeacherProfile(ctx context.Context, id uuid.UUID, name string, profile model.TeacherProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SlotRepository interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID, onlyFree bool) ([]*model.Slot, error)
	CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int, error)
	LockByTeacher(ctx context.Context, teacherID uuid.UUID) error
	Book(ctx context.Context, slotID, teacherID uuid.UUID) (*model.Slot, error)
	Release(ctx context.Context, slotID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	HasActiveForSlot(ctx context.Context, slotID uuid.UUID) (bool, error)
	List(ctx context.Context, filter model.AppointmentFilter, order repository.AppointmentOrder, limit int) ([]*model.Appointment, error)
	Count(ctx context.Context, filter model.AppointmentFilter) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	ListTo(ctx context.Context, toID uuid.UUID) ([]*model.Message, error)
	ListFrom(ctx context.Context, fromID uuid.UUID) ([]*model.Message, error)
	CountTo(ctx context.Context, toID uuid.UUID) (int, error)
	CountFrom(ctx context.Context, fromID uuid.UUID) (int, error)
}

// Transactor выполняет функцию в одной транзакции хранилища
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (uuid.UUID, error)
	SignIn(ctx context.Context, email, password string) (uuid.UUID, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type SessionManager interface {
	Create(ctx context.Context, user *model.User) (*session.Session, string, error)
	Resolve(ctx context.Context, token string) (*session.Session, error)
	Destroy(ctx context.Context, s *session.Session) error
}

// SessionRevoker закрывает все сессии пользователя
type SessionRevoker interface {
	DestroyAllForUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// Auditor журнал действий пользователей
type Auditor interface {
	Info(ctx context.Context, module, message string, userID uuid.UUID)
	Warn(ctx context.Context, module, message string, userID uuid.UUID)
	Error(ctx context.Context, module, message string, userID uuid.UUID)
	Action(ctx context.Context, module, message string, userID uuid.UUID)
}

type LogReader interface {
	Recent(ctx context.Context, limit int) ([]*model.LogEntry, error)
}

// requireRole проверяет что сессия есть и принадлежит нужной роли
func requireRole(actor *session.Session, role model.Role) error {
	if actor == nil || !actor.HasRole(role) {
		return ErrForbidden
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
