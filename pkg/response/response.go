package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error Codes
type ErrCode string

const (
	FailedRequest      ErrCode = "REQUEST_FAILED"
	BadRequest         ErrCode = "BAD_REQUEST"
	ValidationFailed   ErrCode = "VALIDATION_FAILED"
	Unauthorized       ErrCode = "UNAUTHORIZED"
	InvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	Forbidden          ErrCode = "FORBIDDEN"
	NotApproved        ErrCode = "NOT_APPROVED"
	UserRecordNotFound ErrCode = "USER_RECORD_NOT_FOUND"
	NotFound           ErrCode = "NOT_FOUND"
	Conflict           ErrCode = "CONFLICT"
	SlotNotAvailable   ErrCode = "SLOT_NOT_AVAILABLE"
	SlotInUse          ErrCode = "SLOT_IN_USE"
	InvalidTransition  ErrCode = "INVALID_TRANSITION"
	EmailTaken         ErrCode = "EMAIL_TAKEN"
)

func Error(code ErrCode, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    string(code),
			Message: msg,
		},
	}
}

// ValidationError собирает сообщения по всем полям, не прошедшим проверку
func ValidationError(errs validator.ValidationErrors) Response {
	var errMsg []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is required", err.Field()))
		case "min":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at least %s characters long", err.Field(), err.Param()))
		case "max":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at most %s characters long", err.Field(), err.Param()))
		case "email":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be a valid email", err.Field()))
		case "oneof":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be one of: %s", err.Field(), err.Param()))
		case "uuid", "uuid4":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be a valid id", err.Field()))
		default:
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is invalid", err.Field()))
		}
	}

	return Error(ValidationFailed, strings.Join(errMsg, ", "))
}
