package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testEnv struct {
	users        *mockUserRepo
	slots        *mockSlotRepo
	appointments *mockAppointmentRepo
	messages     *mockMessageRepo
	tx           *mockTransactor
	identity     *mockIdentity
	sessions     *mockSessions
	audit        *mockAudit
	notifier     *mockNotifier

	auth      *AuthService
	admin     *AdminService
	slotSvc   *SlotService
	booking   *BookingService
	message   *MessageService
	dashboard *DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zaptest.NewLogger(t)
	e := &testEnv{
		users:        newMockUserRepo(),
		slots:        newMockSlotRepo(),
		appointments: newMockAppointmentRepo(),
		messages:     &mockMessageRepo{},
		identity:     newMockIdentity(),
		sessions:     newMockSessions(),
		audit:        &mockAudit{},
		notifier:     &mockNotifier{},
	}

	e.tx = &mockTransactor{repos: []snapshotter{e.users, e.slots, e.appointments}}
	e.users.onDelete = e.slots.deleteByTeacher

	e.auth = NewAuthService(e.users, e.identity, e.sessions, e.audit, false, logger)
	e.admin = NewAdminService(e.users, e.slots, e.appointments, e.tx, e.identity, e.sessions, e.audit, e.audit, e.notifier, logger)
	e.slotSvc = NewSlotService(e.slots, e.appointments, e.tx, e.audit, logger)
	e.booking = NewBookingService(e.users, e.slots, e.appointments, e.tx, e.audit, e.notifier, logger)
	e.message = NewMessageService(e.users, e.messages, e.audit, logger)
	e.dashboard = NewDashboardService(e.users, e.slots, e.appointments, e.messages)

	return e
}

// seedUser кладёт пользователя прямо в репозиторий и возвращает его сессию
func (e *testEnv) seedUser(t *testing.T, role model.Role, name string, approved bool) (*model.User, *session.Session) {
	t.Helper()

	user := &model.User{
		ID:       uuid.New(),
		Email:    name + "@example.com",
		Name:     name,
		Role:     role,
		Approved: approved,
	}
	switch role {
	case model.RoleStudent:
		user.Student = &model.StudentProfile{StudentNumber: "S-1", Course: "CS", Semester: "3"}
	case model.RoleTeacher:
		user.Teacher = &model.TeacherProfile{Department: "Math", Subject: "Algebra"}
	}
	require.NoError(t, e.users.Create(context.Background(), user))

	return user, &session.Session{
		ID:     uuid.New(),
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		Email:  user.Email,
	}
}

func (e *testEnv) createSlot(t *testing.T, teacher *session.Session, date, start, end string) *model.Slot {
	t.Helper()

	slot, err := e.slotSvc.CreateSlot(context.Background(), teacher, CreateSlotInput{
		Day:       "Mon",
		Date:      date,
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)
	return slot
}

func (e *testEnv) slot(t *testing.T, id uuid.UUID) *model.Slot {
	t.Helper()

	slot, err := e.slots.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, slot)
	return slot
}
