package router

import (
	"net/http"

	adminHandlers "github.com/Freeeeeet/appointment_desk/internal/http-server/handlers/admin"
	"github.com/Freeeeeet/appointment_desk/internal/http-server/handlers/appointments"
	authHandlers "github.com/Freeeeeet/appointment_desk/internal/http-server/handlers/auth"
	"github.com/Freeeeeet/appointment_desk/internal/http-server/handlers/dashboard"
	"github.com/Freeeeeet/appointment_desk/internal/http-server/handlers/messages"
	"github.com/Freeeeeet/appointment_desk/internal/http-server/handlers/slots"
	mwAuth "github.com/Freeeeeet/appointment_desk/internal/http-server/middleware/auth"
	mwLogger "github.com/Freeeeeet/appointment_desk/internal/http-server/middleware/logger"
	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// Services набор сервисов, которые обслуживает API
type Services struct {
	Auth      *service.AuthService
	Admin     *service.AdminService
	Slots     *service.SlotService
	Booking   *service.BookingService
	Messages  *service.MessageService
	Dashboard *service.DashboardService
}

func New(log *zap.Logger, s Services) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.Register(log, s.Auth))
		r.Post("/login", authHandlers.Login(log, s.Auth))

		r.Group(func(r chi.Router) {
			r.Use(mwAuth.New(log, s.Auth))
			r.Post("/logout", authHandlers.Logout(log, s.Auth))
			r.Get("/me", authHandlers.Me(log, s.Auth))
		})
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(mwAuth.New(log, s.Auth))
		r.Use(mwAuth.RequireRole(model.RoleAdmin))

		r.Get("/stats", dashboard.Admin(log, s.Dashboard))

		r.Get("/approvals", adminHandlers.ListApprovals(log, s.Admin))
		r.Post("/approvals/{id}/approve", adminHandlers.Approve(log, s.Admin))
		r.Post("/approvals/{id}/reject", adminHandlers.Reject(log, s.Admin))

		r.Get("/teachers", adminHandlers.ListTeachers(log, s.Admin))
		r.Post("/teachers", adminHandlers.CreateTeacher(log, s.Admin))
		r.Put("/teachers/{id}", adminHandlers.UpdateTeacher(log, s.Admin))
		r.Delete("/teachers/{id}", adminHandlers.DeleteTeacher(log, s.Admin))

		r.Get("/appointments", adminHandlers.ListAppointments(log, s.Admin))
		r.Get("/logs", adminHandlers.ListLogs(log, s.Admin))
	})

	router.Route("/teacher", func(r chi.Router) {
		r.Use(mwAuth.New(log, s.Auth))
		r.Use(mwAuth.RequireRole(model.RoleTeacher))

		r.Get("/stats", dashboard.Teacher(log, s.Dashboard))

		r.Get("/slots", slots.ListOwn(log, s.Slots))
		r.Post("/slots", slots.Create(log, s.Slots))
		r.Delete("/slots/{id}", slots.Delete(log, s.Slots))

		r.Get("/appointments", appointments.ListForTeacher(log, s.Booking))
		r.Post("/appointments/{id}/approve", appointments.Approve(log, s.Booking))
		r.Post("/appointments/{id}/cancel", appointments.Cancel(log, s.Booking))

		r.Get("/messages", messages.Inbox(log, s.Messages))
	})

	router.Route("/student", func(r chi.Router) {
		r.Use(mwAuth.New(log, s.Auth))
		r.Use(mwAuth.RequireRole(model.RoleStudent))

		r.Get("/stats", dashboard.Student(log, s.Dashboard))

		r.Get("/teachers", messages.Teachers(log, s.Messages))
		r.Get("/teachers/{id}/slots", slots.ListAvailable(log, s.Slots))

		r.Get("/appointments", appointments.ListForStudent(log, s.Booking))
		r.Post("/appointments", appointments.Book(log, s.Booking))

		r.Get("/messages", messages.Sent(log, s.Messages))
		r.Post("/messages", messages.Send(log, s.Messages))
	})

	return router
}
