package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid checks that the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// StudentProfile holds the student-only part of a user record
type StudentProfile struct {
	StudentNumber string `json:"student_id"`
	Course        string `json:"course"`
	Semester      string `json:"semester"`
}

// TeacherProfile holds the teacher-only part of a user record
type TeacherProfile struct {
	Department    string `json:"department"`
	Subject       string `json:"subject"`
	Qualification string `json:"qualification"`
	Experience    string `json:"experience"`
}

type User struct {
	ID        uuid.UUID       `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      Role            `json:"role"`
	Approved  bool            `json:"approved"`
	Student   *StudentProfile `json:"student,omitempty"` // только для role = student
	Teacher   *TeacherProfile `json:"teacher,omitempty"` // только для role = teacher
	CreatedAt time.Time       `json:"created_at"`
}

// IsAdmin checks if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsTeacher checks if user is a teacher
func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// IsApprovedTeacher checks if user is a teacher students may book and message
func (u *User) IsApprovedTeacher() bool {
	return u.Role == RoleTeacher && u.Approved
}

// ApprovalFilter narrows the pending approvals list
type ApprovalFilter string

const (
	ApprovalFilterAll     ApprovalFilter = "all"
	ApprovalFilterStudent ApprovalFilter = "student"
	ApprovalFilterTeacher ApprovalFilter = "teacher"
)

// Role returns the role to filter by, nil means no filter
func (f ApprovalFilter) Role() (*Role, bool) {
	switch f {
	case "", ApprovalFilterAll:
		return nil, true
	case ApprovalFilterStudent:
		r := RoleStudent
		return &r, true
	case ApprovalFilterTeacher:
		r := RoleTeacher
		return &r, true
	}
	return nil, false
}
