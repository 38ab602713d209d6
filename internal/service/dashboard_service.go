package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/repository"
	"github.com/Freeeeeet/appointment_desk/internal/session"
)

type AdminDashboard struct {
	Teachers           int                  `json:"teachers"`
	Students           int                  `json:"students"`
	PendingApprovals   int                  `json:"pending_approvals"`
	Appointments       int                  `json:"appointments"`
	RecentAppointments []*model.Appointment `json:"recent_appointments"`
}

type TeacherDashboard struct {
	Slots                int                  `json:"slots"`
	Pending              int                  `json:"pending"`
	Approved             int                  `json:"approved"`
	Messages             int                  `json:"messages"`
	UpcomingAppointments []*model.Appointment `json:"upcoming_appointments"`
}

type StudentDashboard struct {
	Appointments       int                  `json:"appointments"`
	Pending            int                  `json:"pending"`
	Approved           int                  `json:"approved"`
	MessagesSent       int                  `json:"messages_sent"`
	RecentAppointments []*model.Appointment `json:"recent_appointments"`
}

// DashboardService только читает данные
type DashboardService struct {
	userRepo        UserRepository
	slotRepo        SlotRepository
	appointmentRepo AppointmentRepository
	messageRepo     MessageRepository
}

func NewDashboardService(
	userRepo UserRepository,
	slotRepo SlotRepository,
	appointmentRepo AppointmentRepository,
	messageRepo MessageRepository,
) *DashboardService {
	return &DashboardService{
		userRepo:        userRepo,
		slotRepo:        slotRepo,
		appointmentRepo: appointmentRepo,
		messageRepo:     messageRepo,
	}
}

func (s *DashboardService) AdminStats(ctx context.Context, actor *session.Session) (*AdminDashboard, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}

	var d AdminDashboard
	var err error

	if d.Teachers, err = s.userRepo.Count(ctx, ptr(model.RoleTeacher), nil); err != nil {
		return nil, fmt.Errorf("count teachers: %w", err)
	}
	if d.Students, err = s.userRepo.Count(ctx, ptr(model.RoleStudent), nil); err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	if d.PendingApprovals, err = s.userRepo.Count(ctx, nil, ptr(false)); err != nil {
		return nil, fmt.Errorf("count pending approvals: %w", err)
	}
	if d.Appointments, err = s.appointmentRepo.Count(ctx, model.AppointmentFilter{}); err != nil {
		return nil, fmt.Errorf("count appointments: %w", err)
	}

	d.RecentAppointments, err = s.appointmentRepo.List(ctx, model.AppointmentFilter{}, repository.OrderByCreatedDesc, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent appointments: %w", err)
	}

	return &d, nil
}

func (s *DashboardService) TeacherStats(ctx context.Context, actor *session.Session) (*TeacherDashboard, error) {
	if err := requireRole(actor, model.RoleTeacher); err != nil {
		return nil, err
	}

	teacherID := &actor.UserID
	var d TeacherDashboard
	var err error

	if d.Slots, err = s.slotRepo.CountByTeacher(ctx, actor.UserID); err != nil {
		return nil, fmt.Errorf("count slots: %w", err)
	}
	d.Pending, err = s.appointmentRepo.Count(ctx, model.AppointmentFilter{
		TeacherID: teacherID,
		Statuses:  []model.AppointmentStatus{model.AppointmentStatusPending},
	})
	if err != nil {
		return nil, fmt.Errorf("count pending: %w", err)
	}
	d.Approved, err = s.appointmentRepo.Count(ctx, model.AppointmentFilter{
		TeacherID: teacherID,
		Statuses:  []model.AppointmentStatus{model.AppointmentStatusApproved},
	})
	if err != nil {
		return nil, fmt.Errorf("count approved: %w", err)
	}
	if d.Messages, err = s.messageRepo.CountTo(ctx, actor.UserID); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	d.UpcomingAppointments, err = s.appointmentRepo.List(ctx, model.AppointmentFilter{
		TeacherID: teacherID,
		Statuses:  []model.AppointmentStatus{model.AppointmentStatusPending, model.AppointmentStatusApproved},
	}, repository.OrderByDateAsc, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}

	return &d, nil
}

func (s *DashboardService) StudentStats(ctx context.Context, actor *session.Session) (*StudentDashboard, error) {
	if err := requireRole(actor, model.RoleStudent); err != nil {
		return nil, err
	}

	studentID := &actor.UserID
	var d StudentDashboard
	var err error

	if d.Appointments, err = s.appointmentRepo.Count(ctx, model.AppointmentFilter{StudentID: studentID}); err != nil {
		return nil, fmt.Errorf("count appointments: %w", err)
	}
	d.Pending, err = s.appointmentRepo.Count(ctx, model.AppointmentFilter{
		StudentID: studentID,
		Statuses:  []model.AppointmentStatus{model.AppointmentStatusPending},
	})
	if err != nil {
		return nil, fmt.Errorf("count pending: %w", err)
	}
	d.Approved, err = s.appointmentRepo.Count(ctx, model.AppointmentFilter{
		StudentID: studentID,
		Statuses:  []model.AppointmentStatus{model.AppointmentStatusApproved},
	})
	if err != nil {
		return nil, fmt.Errorf("count approved: %w", err)
	}
	if d.MessagesSent, err = s.messageRepo.CountFrom(ctx, actor.UserID); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	d.RecentAppointments, err = s.appointmentRepo.List(ctx, model.AppointmentFilter{StudentID: studentID}, repository.OrderByCreatedDesc, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent appointments: %w", err)
	}

	return &d, nil
}
