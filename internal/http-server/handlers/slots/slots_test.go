package slots

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/service"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/Freeeeeet/appointment_desk/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSlots struct {
	deleted   uuid.UUID
	lastInput service.CreateSlotInput
	err       error
}

func (s *stubSlots) CreateSlot(_ context.Context, actor *session.Session, in service.CreateSlotInput) (*model.Slot, error) {
	s.lastInput = in
	if s.err != nil {
		return nil, s.err
	}
	return &model.Slot{ID: uuid.New(), TeacherID: actor.UserID, Day: in.Day}, nil
}

func (s *stubSlots) DeleteSlot(_ context.Context, _ *session.Session, slotID uuid.UUID) error {
	s.deleted = slotID
	return s.err
}

func withTeacher(r *http.Request) *http.Request {
	actor := &session.Session{ID: uuid.New(), UserID: uuid.New(), Role: model.RoleTeacher, Name: "Tim"}
	return r.WithContext(session.WithSession(r.Context(), actor))
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		err    error
		status int
		code   response.ErrCode
	}{
		{"deleted", uuid.NewString(), nil, http.StatusNoContent, ""},
		{"bad id", "not-a-uuid", nil, http.StatusBadRequest, response.BadRequest},
		{"in use", uuid.NewString(), service.ErrSlotInUse, http.StatusConflict, response.SlotInUse},
		{"foreign slot", uuid.NewString(), service.ErrForbidden, http.StatusForbidden, response.Forbidden},
		{"missing", uuid.NewString(), service.ErrNotFound, http.StatusNotFound, response.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubSlots{err: tt.err}

			router := chi.NewRouter()
			router.Delete("/teacher/slots/{id}", Delete(zap.NewNop(), stub))

			r := withTeacher(httptest.NewRequest(http.MethodDelete, "/teacher/slots/"+tt.id, nil))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, r)

			require.Equal(t, tt.status, w.Code)
			if tt.code == "" {
				assert.Equal(t, tt.id, stub.deleted.String())
				return
			}

			var resp response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.code), resp.Code)
		})
	}
}

func TestDelete_BadIDSkipsService(t *testing.T) {
	stub := &stubSlots{}

	router := chi.NewRouter()
	router.Delete("/teacher/slots/{id}", Delete(zap.NewNop(), stub))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withTeacher(httptest.NewRequest(http.MethodDelete, "/teacher/slots/42", nil)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, uuid.Nil, stub.deleted)
}

func TestCreate_InvalidTimeRange(t *testing.T) {
	stub := &stubSlots{err: service.ErrInvalidTimeRange}

	body := []byte(`{"day":"Mon","date":"2024-05-06","start_time":"11:00","end_time":"10:00"}`)
	r := withTeacher(httptest.NewRequest(http.MethodPost, "/teacher/slots", bytes.NewReader(body)))
	w := httptest.NewRecorder()

	Create(zap.NewNop(), stub).ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "11:00", stub.lastInput.StartTime)
}
