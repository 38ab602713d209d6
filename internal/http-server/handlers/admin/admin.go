package admin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/appointment_desk/internal/http-server/handlers"
	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/service"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/Freeeeeet/appointment_desk/pkg/response"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Approvals interface {
	ListPendingApprovals(ctx context.Context, actor *session.Session, filter model.ApprovalFilter) ([]*model.User, error)
	ApproveUser(ctx context.Context, actor *session.Session, userID uuid.UUID) (*model.User, error)
	RejectUser(ctx context.Context, actor *session.Session, userID uuid.UUID) error
}

type Teachers interface {
	ListTeachers(ctx context.Context, actor *session.Session) ([]*model.User, error)
	CreateTeacher(ctx context.Context, actor *session.Session, in service.CreateTeacherInput) (*model.User, error)
	UpdateTeacher(ctx context.Context, actor *session.Session, teacherID uuid.UUID, in service.UpdateTeacherInput) (*model.User, error)
	DeleteTeacher(ctx context.Context, actor *session.Session, teacherID uuid.UUID) error
}

type AppointmentLister interface {
	ListAllAppointments(ctx context.Context, actor *session.Session) ([]*model.Appointment, error)
}

type LogLister interface {
	ListLogs(ctx context.Context, actor *session.Session, limit int) ([]*model.LogEntry, error)
}

type TeacherProfile struct {
	Department    string `json:"department" validate:"max=200"`
	Subject       string `json:"subject" validate:"max=200"`
	Qualification string `json:"qualification" validate:"max=200"`
	Experience    string `json:"experience" validate:"max=200"`
}

func (p TeacherProfile) toModel() model.TeacherProfile {
	return model.TeacherProfile{
		Department:    p.Department,
		Subject:       p.Subject,
		Qualification: p.Qualification,
		Experience:    p.Experience,
	}
}

type CreateTeacherRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,max=200"`
	TeacherProfile
}

type UpdateTeacherRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	TeacherProfile
}

// ListApprovals GET /admin/approvals?role=all|student|teacher
func ListApprovals(log *zap.Logger, svc Approvals) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.ListApprovals"
		log := handlers.Logger(log, r, op)

		filter := model.ApprovalFilter(r.URL.Query().Get("role"))

		users, err := svc.ListPendingApprovals(r.Context(), handlers.Actor(r), filter)
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.List(w, r, users)
	}
}

func Approve(log *zap.Logger, svc Approvals) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.Approve"
		log := handlers.Logger(log, r, op)

		id, ok := handlers.IDParam(w, r, log, "id")
		if !ok {
			return
		}

		user, err := svc.ApproveUser(r.Context(), handlers.Actor(r), id)
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.JSON(w, r, http.StatusOK, user)
	}
}

func Reject(log *zap.Logger, svc Approvals) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.Reject"
		log := handlers.Logger(log, r, op)

		id, ok := handlers.IDParam(w, r, log, "id")
		if !ok {
			return
		}

		if err := svc.RejectUser(r.Context(), handlers.Actor(r), id); err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ListTeachers(log *zap.Logger, svc Teachers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.ListTeachers"
		log := handlers.Logger(log, r, op)

		teachers, err := svc.ListTeachers(r.Context(), handlers.Actor(r))
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.List(w, r, teachers)
	}
}

func CreateTeacher(log *zap.Logger, svc Teachers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.CreateTeacher"
		log := handlers.Logger(log, r, op)

		var req CreateTeacherRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		teacher, err := svc.CreateTeacher(r.Context(), handlers.Actor(r), service.CreateTeacherInput{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Profile:  req.toModel(),
		})
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.JSON(w, r, http.StatusCreated, teacher)
	}
}

func UpdateTeacher(log *zap.Logger, svc Teachers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.UpdateTeacher"
		log := handlers.Logger(log, r, op)

		id, ok := handlers.IDParam(w, r, log, "id")
		if !ok {
			return
		}

		var req UpdateTeacherRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		teacher, err := svc.UpdateTeacher(r.Context(), handlers.Actor(r), id, service.UpdateTeacherInput{
			Name:    req.Name,
			Profile: req.toModel(),
		})
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.JSON(w, r, http.StatusOK, teacher)
	}
}

func DeleteTeacher(log *zap.Logger, svc Teachers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.DeleteTeacher"
		log := handlers.Logger(log, r, op)

		id, ok := handlers.IDParam(w, r, log, "id")
		if !ok {
			return
		}

		if err := svc.DeleteTeacher(r.Context(), handlers.Actor(r), id); err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ListAppointments(log *zap.Logger, svc AppointmentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.ListAppointments"
		log := handlers.Logger(log, r, op)

		appointments, err := svc.ListAllAppointments(r.Context(), handlers.Actor(r))
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.List(w, r, appointments)
	}
}

// ListLogs GET /admin/logs?limit=N
func ListLogs(log *zap.Logger, svc LogLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.ListLogs"
		log := handlers.Logger(log, r, op)

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				handlers.JSON(w, r, http.StatusBadRequest, response.Error(response.BadRequest, "limit must be a non-negative integer"))
				return
			}
			limit = n
		}

		entries, err := svc.ListLogs(r.Context(), handlers.Actor(r), limit)
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.List(w, r, entries)
	}
}
