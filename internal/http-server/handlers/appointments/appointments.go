package appointments

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

type Booker interface {
	Book(ctx context.Context, actor *session.Session, in service.BookInput) (*model.Appointment, error)
}

type StudentLister interface {
	ListStudentAppointments(ctx context.Context, actor *session.Session) ([]*model.Appointment, error)
}

type TeacherLister interface {
	ListTeacherAppointments(ctx context.Context, actor *session.Session, status *model.AppointmentStatus) ([]*model.Appointment, error)
}

// Transitioner меняет статус записи учителем
type Transitioner interface {
	Approve(ctx context.Context, actor *session.Session, appointmentID uuid.UUID) (*model.Appointment, error)
	Cancel(ctx context.Context, actor *session.Session, appointmentID uuid.UUID) (*model.Appointment, error)
}

type BookRequest struct {
	TeacherID uuid.UUID `json:"teacher_id"`
	SlotID    uuid.UUID `json:"slot_id"`
	Purpose   string    `json:"purpose" validate:"max=1000"`
}

func Book(log *zap.Logger, booker Booker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.Book"
		log := handlers.Logger(log, r, op)

		var req BookRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		appointment, err := booker.Book(r.Context(), handlers.Actor(r), service.BookInput{
			TeacherID: req.TeacherID,
			SlotID:    req.SlotID,
			Purpose:   req.Purpose,
		})
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		log.Info("Appointment booked", zap.String("appointment_id", appointment.ID.String()))

		handlers.JSON(w, r, http.StatusCreated, appointment)
	}
}

// ListForStudent GET /student/appointments
func ListForStudent(log *zap.Logger, lister StudentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.ListForStudent"
		log := handlers.Logger(log, r, op)

		appointments, err := lister.ListStudentAppointments(r.Context(), handlers.Actor(r))
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.List(w, r, appointments)
	}
}

// ListForTeacher GET /teacher/appointments?status=pending
func ListForTeacher(log *zap.Logger, lister TeacherLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.ListForTeacher"
		log := handlers.Logger(log, r, op)

		var status *model.AppointmentStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			s := model.AppointmentStatus(raw)
			status = &s
		}

		appointments, err := lister.ListTeacherAppointments(r.Context(), handlers.Actor(r), status)
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.List(w, r, appointments)
	}
}

func Approve(log *zap.Logger, svc Transitioner) http.HandlerFunc {
	return transition(log, "handlers.appointments.Approve", svc.Approve)
}

func Cancel(log *zap.Logger, svc Transitioner) http.HandlerFunc {
	return transition(log, "handlers.appointments.Cancel", svc.Cancel)
}

func transition(
	log *zap.Logger,
	op string,
	apply func(ctx context.Context, actor *session.Session, id uuid.UUID) (*model.Appointment, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := handlers.Logger(log, r, op)

		id, ok := handlers.IDParam(w, r, log, "id")
		if !ok {
			return
		}

		appointment, err := apply(r.Context(), handlers.Actor(r), id)
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.JSON(w, r, http.StatusOK, appointment)
	}
}
