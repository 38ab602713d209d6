package dashboard

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/appointment_desk/internal/http-server/handlers"
	"github.com/Freeeeeet/appointment_desk/internal/service"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"go.uber.org/zap"
)

type Stats interface {
	AdminStats(ctx context.Context, actor *session.Session) (*service.AdminDashboard, error)
	TeacherStats(ctx context.Context, actor *session.Session) (*service.TeacherDashboard, error)
	StudentStats(ctx context.Context, actor *session.Session) (*service.StudentDashboard, error)
}

func Admin(log *zap.Logger, svc Stats) http.HandlerFunc {
	return stats(log, "handlers.dashboard.Admin", func(ctx context.Context, actor *session.Session) (any, error) {
		return svc.AdminStats(ctx, actor)
	})
}

func Teacher(log *zap.Logger, svc Stats) http.HandlerFunc {
	return stats(log, "handlers.dashboard.Teacher", func(ctx context.Context, actor *session.Session) (any, error) {
		return svc.TeacherStats(ctx, actor)
	})
}

func Student(log *zap.Logger, svc Stats) http.HandlerFunc {
	return stats(log, "handlers.dashboard.Student", func(ctx context.Context, actor *session.Session) (any, error) {
		return svc.StudentStats(ctx, actor)
	})
}

func stats(log *zap.Logger, op string, load func(ctx context.Context, actor *session.Session) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := handlers.Logger(log, r, op)

		d, err := load(r.Context(), handlers.Actor(r))
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.JSON(w, r, http.StatusOK, d)
	}
}
