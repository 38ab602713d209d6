package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/Freeeeeet/appointment_desk/internal/http-server/handlers"
	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/service"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"go.uber.org/zap"
)

type Registrar interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
}

type LoginService interface {
	Login(ctx context.Context, email, password string) (*session.Session, string, error)
}

type Logouter interface {
	Logout(ctx context.Context, actor *session.Session) error
}

type CurrentUserGetter interface {
	CurrentUser(ctx context.Context, actor *session.Session) (*model.User, error)
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,max=200"`
	Role     string `json:"role" validate:"required,oneof=admin teacher student"`

	StudentID string `json:"student_id,omitempty"`
	Course    string `json:"course,omitempty"`
	Semester  string `json:"semester,omitempty"`

	Department    string `json:"department,omitempty"`
	Subject       string `json:"subject,omitempty"`
	Qualification string `json:"qualification,omitempty"`
	Experience    string `json:"experience,omitempty"`
}

type RegisterResponse struct {
	User    *model.User `json:"user"`
	Message string      `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Session   *session.Session `json:"session"`
}

func Register(log *zap.Logger, registrar Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.Register"
		log := handlers.Logger(log, r, op)

		var req RegisterRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		in := service.RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Role:     model.Role(req.Role),
		}
		switch in.Role {
		case model.RoleStudent:
			in.Student = &model.StudentProfile{
				StudentNumber: req.StudentID,
				Course:        req.Course,
				Semester:      req.Semester,
			}
		case model.RoleTeacher:
			in.Teacher = &model.TeacherProfile{
				Department:    req.Department,
				Subject:       req.Subject,
				Qualification: req.Qualification,
				Experience:    req.Experience,
			}
		}

		user, err := registrar.Register(r.Context(), in)
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		msg := "Registration successful. Please wait for admin approval."
		if user.Approved {
			msg = "Registration successful. You can now log in."
		}

		handlers.JSON(w, r, http.StatusCreated, RegisterResponse{User: user, Message: msg})
	}
}

func Login(log *zap.Logger, svc LoginService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.Login"
		log := handlers.Logger(log, r, op)

		var req LoginRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		sess, token, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		log.Info("User logged in", zap.String("user_id", sess.UserID.String()))

		handlers.JSON(w, r, http.StatusOK, LoginResponse{
			Token:     token,
			ExpiresAt: sess.ExpiresAt,
			Session:   sess,
		})
	}
}

func Logout(log *zap.Logger, svc Logouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.Logout"
		log := handlers.Logger(log, r, op)

		if err := svc.Logout(r.Context(), handlers.Actor(r)); err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func Me(log *zap.Logger, svc CurrentUserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.Me"
		log := handlers.Logger(log, r, op)

		user, err := svc.CurrentUser(r.Context(), handlers.Actor(r))
		if err != nil {
			handlers.Error(w, r, log, err)
			return
		}

		handlers.JSON(w, r, http.StatusOK, user)
	}
}
