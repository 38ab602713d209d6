package slots

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

type Creator interface {
	CreateSlot(ctx context.Context, actor *session.Session, in service.CreateSlotInput) (*model.Slot, error)
}

type TeacherLister interface {
	ListTeacherSlots(ctx context.Context, actor *session.Session) ([]*model.Slot, error)
}

type AvailableLister interface {
	ListAvailableSlots(ctx context.Context, teacherID uuid.UUID) ([]*model.Slot, error)
}

type Deleter interface {
	DeleteSlot(ctx context.Context, actor *session.Session, slotID uuid.UUID) error
}

type CreateRequest struct {
	Day       string `json:"day" validate:"max=20"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

func Create(log *zap.Logger, creator Creator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.Create"
		log := handlers.Logger(log, r, op)

		var req CreateRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		slot, err := creator.CreateSlot(r.Context(), handlers.Actor(r), service.CreateSlotInput{
			Day:       req.Day,
			Date:      req.Date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		})
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		log.Info("Slot created", zap.String("slot_id", slot.ID.String()))

		handlers.JSON(w, r, http.StatusCreated, slot)
	}
}

// ListOwn GET /teacher/slots
func ListOwn(log *zap.Logger, lister TeacherLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.ListOwn"
		log := handlers.Logger(log, r, op)

		slots, err := lister.ListTeacherSlots(r.Context(), handlers.Actor(r))
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.List(w, r, slots)
	}
}

// ListAvailable GET /student/teachers/{id}/slots
func ListAvailable(log *zap.Logger, lister AvailableLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.ListAvailable"
		log := handlers.Logger(log, r, op)

		teacherID, ok := handlers.IDParam(w, r, log, "id")
		if !ok {
			return
		}

		slots, err := lister.ListAvailableSlots(r.Context(), teacherID)
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.List(w, r, slots)
	}
}

func Delete(log *zap.Logger, deleter Deleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.Delete"
		log := handlers.Logger(log, r, op)

		id, ok := handlers.IDParam(w, r, log, "id")
		if !ok {
			return
		}

		if err := deleter.DeleteSlot(r.Context(), handlers.Actor(r), id); err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
