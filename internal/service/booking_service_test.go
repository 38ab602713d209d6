package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingService_Scenario(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	teacher, teacherSess := e.seedUser(t, model.RoleTeacher, "tim", true)
	student, studentSess := e.seedUser(t, model.RoleStudent, "sam", true)

	slot, err := e.slotSvc.CreateSlot(ctx, teacherSess, CreateSlotInput{
		Day: "Mon", Date: "2024-05-06", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	available, err := e.slotSvc.ListAvailableSlots(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, slot.ID, available[0].ID)

	// студент записывается
	appointment, err := e.booking.Book(ctx, studentSess, BookInput{
		TeacherID: teacher.ID, SlotID: slot.ID, Purpose: "advising",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, appointment.Status)
	require.NotNil(t, appointment.SlotID)
	assert.Equal(t, slot.ID, *appointment.SlotID)
	assert.Equal(t, student.ID, appointment.StudentID)
	assert.Equal(t, "10:00-11:00", appointment.TimeRange)
	assert.Equal(t, "advising", appointment.Purpose)

	available, err = e.slotSvc.ListAvailableSlots(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Empty(t, available)
	assert.True(t, e.slot(t, slot.ID).IsBooked)

	mine, err := e.booking.ListStudentAppointments(ctx, studentSess)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, model.AppointmentStatusPending, mine[0].Status)

	// учитель одобряет: слот остаётся занятым
	approved, err := e.booking.Approve(ctx, teacherSess, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusApproved, approved.Status)
	assert.True(t, e.slot(t, slot.ID).IsBooked)

	// учитель отменяет: слот снова свободен
	cancelled, err := e.booking.Cancel(ctx, teacherSess, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	assert.False(t, e.slot(t, slot.ID).IsBooked)

	available, err = e.slotSvc.ListAvailableSlots(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, slot.ID, available[0].ID)

	assert.Len(t, e.notifier.booked, 1)
	assert.Len(t, e.notifier.changed, 2)
}

func TestBookingService_CancelPendingReleasesSlot(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	teacher, teacherSess := e.seedUser(t, model.RoleTeacher, "tim", true)
	_, studentSess := e.seedUser(t, model.RoleStudent, "sam", true)
	slot := e.createSlot(t, teacherSess, "2024-05-06", "10:00", "11:00")

	appointment, err := e.booking.Book(ctx, studentSess, BookInput{TeacherID: teacher.ID, SlotID: slot.ID})
	require.NoError(t, err)

	_, err = e.booking.Cancel(ctx, teacherSess, appointment.ID)
	require.NoError(t, err)
	assert.False(t, e.slot(t, slot.ID).IsBooked)
}

func TestBookingService_SecondBookerRejected(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	teacher, teacherSess := e.seedUser(t, model.RoleTeacher, "tim", true)
	_, first := e.seedUser(t, model.RoleStudent, "sam", true)
	_, second := e.seedUser(t, model.RoleStudent, "sue", true)
	slot := e.createSlot(t, teacherSess, "2024-05-06", "10:00", "11:00")

	_, err := e.booking.Book(ctx, first, BookInput{TeacherID: teacher.ID, SlotID: slot.ID})
	require.NoError(t, err)

	_, err = e.booking.Book(ctx, second, BookInput{TeacherID: teacher.ID, SlotID: slot.ID})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	count, err := e.appointments.Count(ctx, model.AppointmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBookingService_ConcurrentBooking(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	teacher, teacherSess := e.seedUser(t, model.RoleTeacher, "tim", true)
	slot := e.createSlot(t, teacherSess, "2024-05-06", "10:00", "11:00")

	const students = 10
	var wg sync.WaitGroup
	results := make(chan error, students)

	for i := 0; i < students; i++ {
		_, sess := e.seedUser(t, model.RoleStudent, "student"+uuid.NewString()[:8], true)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.booking.Book(ctx, sess, BookInput{TeacherID: teacher.ID, SlotID: slot.ID})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	}
	assert.Equal(t, 1, succeeded)
}

func TestBookingService_BookValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	teacher, teacherSess := e.seedUser(t, model.RoleTeacher, "tim", true)
	pendingTeacher, pendingSess := e.seedUser(t, model.RoleTeacher, "new", false)
	other, otherSess := e.seedUser(t, model.RoleTeacher, "tom", true)
	_, studentSess := e.seedUser(t, model.RoleStudent, "sam", true)

	slot := e.createSlot(t, teacherSess, "2024-05-06", "10:00", "11:00")
	pendingSlot := e.createSlot(t, pendingSess, "2024-05-06", "10:00", "11:00")
	e.createSlot(t, otherSess, "2024-05-06", "10:00", "11:00")

	tests := []struct {
		name string
		in   BookInput
		want error
	}{
		{"missing teacher", BookInput{SlotID: slot.ID}, ErrMissingSelection},
		{"missing slot", BookInput{TeacherID: teacher.ID}, ErrMissingSelection},
		{"unknown teacher", BookInput{TeacherID: uuid.New(), SlotID: slot.ID}, ErrNotFound},
		{"unapproved teacher", BookInput{TeacherID: pendingTeacher.ID, SlotID: pendingSlot.ID}, ErrNotFound},
		{"unknown slot", BookInput{TeacherID: teacher.ID, SlotID: uuid.New()}, ErrNotFound},
		{"slot of another teacher", BookInput{TeacherID: other.ID, SlotID: slot.ID}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.booking.Book(ctx, studentSess, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.False(t, e.slot(t, slot.ID).IsBooked)

	_, err := e.booking.Book(ctx, teacherSess, BookInput{TeacherID: teacher.ID, SlotID: slot.ID})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookingService_TransitionRules(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	teacher, teacherSess := e.seedUser(t, model.RoleTeacher, "tim", true)
	_, otherSess := e.seedUser(t, model.RoleTeacher, "tom", true)
	_, studentSess := e.seedUser(t, model.RoleStudent, "sam", true)
	slot := e.createSlot(t, teacherSess, "2024-05-06", "10:00", "11:00")

	appointment, err := e.booking.Book(ctx, studentSess, BookInput{TeacherID: teacher.ID, SlotID: slot.ID})
	require.NoError(t, err)

	_, err = e.booking.Approve(ctx, otherSess, appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.booking.Cancel(ctx, otherSess, appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.booking.Approve(ctx, studentSess, appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.booking.Approve(ctx, teacherSess, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.booking.Cancel(ctx, teacherSess, appointment.ID)
	require.NoError(t, err)

	_, err = e.booking.Approve(ctx, teacherSess, appointment.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = e.booking.Cancel(ctx, teacherSess, appointment.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBookingService_ApproveTwiceFails(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	teacher, teacherSess := e.seedUser(t, model.RoleTeacher, "tim", true)
	_, studentSess := e.seedUser(t, model.RoleStudent, "sam", true)
	slot := e.createSlot(t, teacherSess, "2024-05-06", "10:00", "11:00")

	appointment, err := e.booking.Book(ctx, studentSess, BookInput{TeacherID: teacher.ID, SlotID: slot.ID})
	require.NoError(t, err)

	_, err = e.booking.Approve(ctx, teacherSess, appointment.ID)
	require.NoError(t, err)

	_, err = e.booking.Approve(ctx, teacherSess, appointment.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBookingService_CancelWithoutSlot(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	teacher, teacherSess := e.seedUser(t, model.RoleTeacher, "tim", true)
	student, _ := e.seedUser(t, model.RoleStudent, "sam", true)

	// запись, чей слот уже удалён
	orphan := &model.Appointment{
		ID:        uuid.New(),
		StudentID: student.ID,
		TeacherID: teacher.ID,
		Status:    model.AppointmentStatusApproved,
	}
	require.NoError(t, e.appointments.Create(ctx, orphan))

	cancelled, err := e.booking.Cancel(ctx, teacherSess, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
}

func TestBookingService_StoreFailureIsAudited(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	teacher, teacherSess := e.seedUser(t, model.RoleTeacher, "tim", true)
	_, studentSess := e.seedUser(t, model.RoleStudent, "sam", true)
	slot := e.createSlot(t, teacherSess, "2024-05-06", "10:00", "11:00")

	appointment, err := e.booking.Book(ctx, studentSess, BookInput{TeacherID: teacher.ID, SlotID: slot.ID})
	require.NoError(t, err)

	e.appointments.updateErr = errStoreDown
	_, err = e.booking.Approve(ctx, teacherSess, appointment.ID)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 1, e.audit.count(model.LogLevelError))
}

func TestBookingService_CancelRollsBackWhenReleaseFails(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	teacher, teacherSess := e.seedUser(t, model.RoleTeacher, "tim", true)
	_, studentSess := e.seedUser(t, model.RoleStudent, "sam", true)
	slot := e.createSlot(t, teacherSess, "2024-05-06", "10:00", "11:00")

	appointment, err := e.booking.Book(ctx, studentSess, BookInput{TeacherID: teacher.ID, SlotID: slot.ID})
	require.NoError(t, err)

	e.slots.releaseErr = errStoreDown
	_, err = e.booking.Cancel(ctx, teacherSess, appointment.ID)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 1, e.audit.count(model.LogLevelError))

	// статус, обновлённый до сбоя, откатан вместе с транзакцией
	got, err := e.appointments.GetByID(ctx, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, got.Status)
	assert.True(t, e.slot(t, slot.ID).IsBooked)
	assert.Empty(t, e.notifier.changed)
}

func TestBookingService_ListTeacherAppointments(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	teacher, teacherSess := e.seedUser(t, model.RoleTeacher, "tim", true)
	_, studentSess := e.seedUser(t, model.RoleStudent, "sam", true)

	first := e.createSlot(t, teacherSess, "2024-05-06", "10:00", "11:00")
	second := e.createSlot(t, teacherSess, "2024-05-07", "10:00", "11:00")

	a1, err := e.booking.Book(ctx, studentSess, BookInput{TeacherID: teacher.ID, SlotID: first.ID})
	require.NoError(t, err)
	_, err = e.booking.Book(ctx, studentSess, BookInput{TeacherID: teacher.ID, SlotID: second.ID})
	require.NoError(t, err)

	_, err = e.booking.Approve(ctx, teacherSess, a1.ID)
	require.NoError(t, err)

	all, err := e.booking.ListTeacherAppointments(ctx, teacherSess, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := e.booking.ListPendingForTeacher(ctx, teacherSess)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, *pending[0].SlotID)

	bogus := model.AppointmentStatus("done")
	_, err = e.booking.ListTeacherAppointments(ctx, teacherSess, &bogus)
	assert.ErrorIs(t, err, ErrValidation)
}
