// Package handlers содержит общие части HTTP-обработчиков: разбор тела
// запроса, параметры пути и отображение ошибок сервисов в ответы API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/appointment_desk/internal/identity"
	"github.com/Freeeeeet/appointment_desk/internal/service"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/Freeeeeet/appointment_desk/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Logger возвращает логгер обработчика с op и request_id
func Logger(log *zap.Logger, r *http.Request, op string) *zap.Logger {
	return log.With(
		zap.String("op", op),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Decode читает JSON тело и проверяет теги validate. При ошибке ответ уже
// записан и возвращается false.
func Decode(w http.ResponseWriter, r *http.Request, log *zap.Logger, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		JSON(w, r, http.StatusBadRequest, response.Error(response.BadRequest, "failed to decode request"))
		return false
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Warn("Invalid request", zap.Error(err))
			JSON(w, r, http.StatusBadRequest, response.ValidationError(verrs))
			return false
		}
		log.Error("Failed to validate request", zap.Error(err))
		JSON(w, r, http.StatusBadRequest, response.Error(response.BadRequest, "invalid request"))
		return false
	}

	return true
}

// IDParam разбирает UUID из параметра пути
func IDParam(w http.ResponseWriter, r *http.Request, log *zap.Logger, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)

	id, err := uuid.Parse(raw)
	if err != nil {
		log.Warn("Invalid id in path", zap.String("param", name), zap.String("value", raw))
		JSON(w, r, http.StatusBadRequest, response.Error(response.BadRequest, "invalid "+name))
		return uuid.Nil, false
	}

	return id, true
}

// Actor сессия текущего запроса; nil, если маршрут публичный
func Actor(r *http.Request) *session.Session {
	s, _ := session.FromContext(r.Context())
	return s
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// List отдаёт пустой массив вместо null
func List[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	JSON(w, r, http.StatusOK, items)
}

// Error отображает ошибку сервиса в статус и код ответа
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, resp := mapError(err)

	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Warn("Request rejected", zap.Int("status", status), zap.Error(err))
	}

	JSON(w, r, status, resp)
}

func mapError(err error) (int, response.Response) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, identity.ErrWeakPassword):
		return http.StatusBadRequest, response.Error(response.ValidationFailed, err.Error())

	case errors.Is(err, session.ErrNoSession),
		errors.Is(err, session.ErrTokenInvalid):
		return http.StatusUnauthorized, response.Error(response.Unauthorized, err.Error())
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized, response.Error(response.InvalidCredentials, err.Error())

	case errors.Is(err, service.ErrNotApproved):
		return http.StatusForbidden, response.Error(response.NotApproved, service.ErrNotApproved.Error())
	case errors.Is(err, service.ErrUserRecordNotFound):
		return http.StatusForbidden, response.Error(response.UserRecordNotFound, service.ErrUserRecordNotFound.Error())
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, response.Error(response.Forbidden, err.Error())

	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, response.Error(response.NotFound, err.Error())

	case errors.Is(err, service.ErrSlotNotAvailable):
		return http.StatusConflict, response.Error(response.SlotNotAvailable, err.Error())
	case errors.Is(err, service.ErrSlotInUse):
		return http.StatusConflict, response.Error(response.SlotInUse, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, response.Error(response.InvalidTransition, err.Error())
	case errors.Is(err, identity.ErrEmailTaken):
		return http.StatusConflict, response.Error(response.EmailTaken, err.Error())
	}

	return http.StatusInternalServerError, response.Error(response.FailedRequest, "failed to process request")
}
