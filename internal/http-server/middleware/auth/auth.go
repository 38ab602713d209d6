package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/Freeeeeet/appointment_desk/pkg/response"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Session, error)
}

// New восстанавливает сессию из заголовка Authorization: Bearer <token>
// и кладёт её в контекст запроса
func New(log *zap.Logger, authenticator Authenticator) func(next http.Handler) http.Handler {
	log = log.With(zap.String("component", "middleware/auth"))

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, r, "missing or malformed authorization header")
				return
			}

			sess, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) || errors.Is(err, session.ErrTokenInvalid) {
					unauthorized(w, r, "session is missing or expired")
					return
				}

				log.Error("Failed to resolve session",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Error(err),
				)
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error(response.FailedRequest, "failed to resolve session"))
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		}

		return http.HandlerFunc(fn)
	}
}

// RequireRole пропускает только сессии с одной из указанных ролей
func RequireRole(roles ...model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromContext(r.Context())
			if !ok {
				unauthorized(w, r, "session is missing or expired")
				return
			}

			for _, role := range roles {
				if sess.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error(response.Forbidden, "access denied for role "+string(sess.Role)))
		}

		return http.HandlerFunc(fn)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(response.Unauthorized, msg))
}
