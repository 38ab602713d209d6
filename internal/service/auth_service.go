package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/appointment_desk/internal/identity"
	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const moduleAuth = "Auth"

// RegisterInput данные формы регистрации
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     model.Role
	Student  *model.StudentProfile
	Teacher  *model.TeacherProfile
}

type AuthService struct {
	userRepo         UserRepository
	identity         IdentityProvider
	sessions         SessionManager
	audit            Auditor
	allowAdminSignup bool
	logger           *zap.Logger
}

func NewAuthService(
	userRepo UserRepository,
	identity IdentityProvider,
	sessions SessionManager,
	audit Auditor,
	allowAdminSignup bool,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		identity:         identity,
		sessions:         sessions,
		audit:            audit,
		allowAdminSignup: allowAdminSignup,
		logger:           logger,
	}
}

// Register создаёт учётную запись и профиль пользователя. Сессия не
// открывается: студенту и учителю нужно дождаться одобрения.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	if in.Email == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: email and name are required", ErrValidation)
	}
	if in.Role == model.RoleAdmin && !s.allowAdminSignup {
		return nil, fmt.Errorf("%w: admin self-registration is disabled", ErrForbidden)
	}

	id, err := s.identity.CreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		s.audit.Error(ctx, moduleAuth, fmt.Sprintf("Registration failed for %s: %v", in.Email, err), uuid.Nil)
		return nil, err
	}

	user := &model.User{
		ID:       id,
		Email:    in.Email,
		Name:     in.Name,
		Role:     in.Role,
		Approved: in.Role == model.RoleAdmin,
	}

	switch in.Role {
	case model.RoleStudent:
		user.Student = &model.StudentProfile{}
		if in.Student != nil {
			user.Student = in.Student
		}
	case model.RoleTeacher:
		user.Teacher = &model.TeacherProfile{}
		if in.Teacher != nil {
			user.Teacher = in.Teacher
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// без записи пользователя учётная запись бесполезна
		if delErr := s.identity.DeleteAccount(ctx, id); delErr != nil {
			s.logger.Error("Failed to roll back account",
				zap.String("account_id", id.String()),
				zap.Error(delErr),
			)
		}
		s.audit.Error(ctx, moduleAuth, fmt.Sprintf("Registration failed for %s: %v", in.Email, err), id)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.audit.Action(ctx, moduleAuth, fmt.Sprintf("User registered successfully: %s (%s)", user.Email, user.Role), user.ID)

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.Bool("approved", user.Approved),
	)

	return user, nil
}

// Login проверяет пароль, наличие записи пользователя и одобрение,
// после чего открывает сессию
func (s *AuthService) Login(ctx context.Context, email, password string) (*session.Session, string, error) {
	id, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			s.audit.Warn(ctx, moduleAuth, fmt.Sprintf("Failed login attempt for %s", email), uuid.Nil)
		} else {
			s.audit.Error(ctx, moduleAuth, fmt.Sprintf("Login failed for %s: %v", email, err), uuid.Nil)
		}
		return nil, "", err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if user == nil {
		s.audit.Warn(ctx, moduleAuth, fmt.Sprintf("Login without user record: %s", email), id)
		return nil, "", ErrUserRecordNotFound
	}

	if !user.Approved {
		s.audit.Warn(ctx, moduleAuth, fmt.Sprintf("Login before approval: %s", email), id)
		return nil, "", ErrNotApproved
	}

	sess, token, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	s.audit.Action(ctx, moduleAuth, fmt.Sprintf("User logged in: %s", user.Email), user.ID)

	return sess, token, nil
}

// Logout закрывает сессию
func (s *AuthService) Logout(ctx context.Context, actor *session.Session) error {
	if actor == nil {
		return nil
	}

	if err := s.sessions.Destroy(ctx, actor); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}

	s.audit.Action(ctx, moduleAuth, fmt.Sprintf("User logged out: %s", actor.Email), actor.UserID)

	return nil
}

// Authenticate восстанавливает сессию по токену. Сессия пользователя,
// чья запись удалена или снова не одобрена, считается закрытой.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	sess, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("get session user: %w", err)
	}
	if user == nil || !user.Approved {
		s.logger.Warn("Session of a removed user rejected",
			zap.String("user_id", sess.UserID.String()),
			zap.String("session_id", sess.ID.String()),
		)
		return nil, session.ErrNoSession
	}

	return sess, nil
}

// CurrentUser возвращает запись пользователя текущей сессии
func (s *AuthService) CurrentUser(ctx context.Context, actor *session.Session) (*model.User, error) {
	if actor == nil {
		return nil, session.ErrNoSession
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user == nil {
		return nil, ErrUserRecordNotFound
	}

	return user, nil
}
