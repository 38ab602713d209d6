package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/appointment_desk/internal/model"
)

// StatusDisplay отображение статуса записи
type StatusDisplay struct {
	Emoji string
	Text  string
}

// GetStatusDisplay возвращает emoji и текст для статуса записи
func GetStatusDisplay(status model.AppointmentStatus) StatusDisplay {
	displays := map[model.AppointmentStatus]StatusDisplay{
		model.AppointmentStatusPending:   {"⏳", "Pending approval"},
		model.AppointmentStatusApproved:  {"✅", "Approved"},
		model.AppointmentStatusCancelled: {"❌", "Cancelled"},
		model.AppointmentStatusRejected:  {"🚫", "Rejected"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return StatusDisplay{"❓", "Unknown"}
}

func formatBooked(a *model.Appointment) string {
	var sb strings.Builder
	sb.WriteString("📅 <b>New appointment request</b>\n\n")
	writeAppointment(&sb, a)
	return sb.String()
}

func formatStatusChanged(a *model.Appointment) string {
	d := GetStatusDisplay(a.Status)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>Appointment %s</b>\n\n", d.Emoji, strings.ToLower(d.Text))
	writeAppointment(&sb, a)
	return sb.String()
}

func formatUserApproved(u *model.User) string {
	return fmt.Sprintf("👤 <b>Account approved</b>\n\n%s (%s), role: %s",
		html.EscapeString(u.Name), html.EscapeString(u.Email), u.Role)
}

func writeAppointment(sb *strings.Builder, a *model.Appointment) {
	fmt.Fprintf(sb, "Student: %s\n", html.EscapeString(a.StudentName))
	fmt.Fprintf(sb, "Teacher: %s\n", html.EscapeString(a.TeacherName))
	fmt.Fprintf(sb, "When: %s %s\n", a.Date.Format(model.DateLayout), a.TimeRange)
	if a.Purpose != "" {
		fmt.Fprintf(sb, "Purpose: %s\n", html.EscapeString(a.Purpose))
	}
}
