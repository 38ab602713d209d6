// Package notify публикует события записи во внешний канал
package notify

import (
	"context"

	"github.com/Freeeeeet/appointment_desk/internal/model"
)

type Notifier interface {
	AppointmentBooked(ctx context.Context, a *model.Appointment) error
	AppointmentStatusChanged(ctx context.Context, a *model.Appointment) error
	UserApproved(ctx context.Context, u *model.User) error
}

// Nop ничего не отправляет; используется, когда канал не настроен
type Nop struct{}

func (Nop) AppointmentBooked(context.Context, *model.Appointment) error { return nil }
func (Nop) AppointmentStatusChanged(context.Context, *model.Appointment) error { return nil }
func (Nop) UserApproved(context.Context, *model.User) error { return nil }
