package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"   // Ожидает решения учителя
	AppointmentStatusApproved  AppointmentStatus = "approved"  // Одобрено учителем
	AppointmentStatusCancelled AppointmentStatus = "cancelled" // Отменено учителем, слот освобождён
	AppointmentStatusRejected  AppointmentStatus = "rejected"  // Известный статус без входящих переходов
)

// appointmentTransitions допустимые переходы статусов
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:  {AppointmentStatusApproved, AppointmentStatusCancelled},
	AppointmentStatusApproved: {AppointmentStatusCancelled},
}

// Valid checks that the status is known
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusApproved, AppointmentStatusCancelled, AppointmentStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo проверяет допустим ли переход в статус next
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive активная запись удерживает слот
func (s AppointmentStatus) IsActive() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusApproved
}

type Appointment struct {
	ID           uuid.UUID         `json:"id"`
	StudentID    uuid.UUID         `json:"student_id"`
	StudentName  string            `json:"student_name"`
	StudentEmail string            `json:"student_email"`
	TeacherID    uuid.UUID         `json:"teacher_id"`
	TeacherName  string            `json:"teacher_name"`
	SlotID       *uuid.UUID        `json:"slot_id"` // nil после удаления слота
	Date         time.Time         `json:"date"`
	TimeRange    string            `json:"time"`
	Purpose      string            `json:"purpose"`
	Status       AppointmentStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// IsPending checks if appointment waits for the teacher
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// AppointmentFilter условия выборки записей
type AppointmentFilter struct {
	StudentID *uuid.UUID
	TeacherID *uuid.UUID
	Statuses  []AppointmentStatus
}
