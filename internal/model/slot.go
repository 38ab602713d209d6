package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ClockTime время суток в формате HH:MM
type ClockTime string

const clockLayout = "15:04"

// DateLayout формат календарной даты слота
const DateLayout = "2006-01-02"

var ErrInvalidClockTime = errors.New("time must be in HH:MM format")

// ParseClockTime разбирает и нормализует время HH:MM
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return ClockTime(t.Format(clockLayout)), nil
}

// Before сравнивает два нормализованных значения
func (c ClockTime) Before(other ClockTime) bool {
	return c < other
}

type Slot struct {
	ID          uuid.UUID `json:"id"`
	TeacherID   uuid.UUID `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	Day         string    `json:"day"`
	Date        time.Time `json:"date"`
	StartTime   ClockTime `json:"start_time"`
	EndTime     ClockTime `json:"end_time"`
	IsBooked    bool      `json:"is_booked"`
	CreatedAt   time.Time `json:"created_at"`
}

// TimeRange возвращает интервал слота в виде "HH:MM-HH:MM"
func (s *Slot) TimeRange() string {
	return string(s.StartTime) + "-" + string(s.EndTime)
}

// IsAvailable checks if the slot can be booked
func (s *Slot) IsAvailable() bool {
	return !s.IsBooked
}
