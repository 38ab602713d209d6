package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, student_id, student_name, student_email, teacher_id, teacher_name,
	slot_id, date, time_range, purpose, status, created_at, updated_at`

// AppointmentOrder порядок сортировки выборки записей
type AppointmentOrder int

const (
	OrderByCreatedDesc AppointmentOrder = iota
	OrderByDateAsc
)

type AppointmentRepository struct {
	*base.Repository
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт новую запись
func (r *AppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (id, student_id, student_name, student_email, teacher_id, teacher_name,
			slot_id, date, time_range, purpose, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		a.ID,
		a.StudentID,
		a.StudentName,
		a.StudentEmail,
		a.TeacherID,
		a.TeacherName,
		a.SlotID,
		a.Date,
		a.TimeRange,
		a.Purpose,
		a.Status,
	).Scan(&a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

// GetByID получает запись по ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return r.getOne(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
}

// GetByIDForUpdate получает запись по ID с блокировкой строки до конца транзакции
func (r *AppointmentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return r.getOne(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id)
}

// HasActiveForSlot проверяет есть ли у слота pending или approved запись
func (r *AppointmentRepository) HasActiveForSlot(ctx context.Context, slotID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE slot_id = $1 AND status IN ('pending', 'approved')
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, slotID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active appointment for slot: %w", err)
	}

	return exists, nil
}

// List получает записи по фильтру; limit <= 0 означает без ограничения
func (r *AppointmentRepository) List(ctx context.Context, filter model.AppointmentFilter, order AppointmentOrder, limit int) ([]*model.Appointment, error) {
	where, args := appointmentWhere(filter)

	var sb strings.Builder
	sb.WriteString(`SELECT ` + appointmentColumns + ` FROM appointments`)
	sb.WriteString(where)

	switch order {
	case OrderByDateAsc:
		sb.WriteString(` ORDER BY date ASC, time_range ASC`)
	default:
		sb.WriteString(` ORDER BY created_at DESC`)
	}

	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}

	rows, err := r.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}

	return appointments, nil
}

// Count считает записи по фильтру
func (r *AppointmentRepository) Count(ctx context.Context, filter model.AppointmentFilter) (int, error) {
	where, args := appointmentWhere(filter)

	n, err := r.Repository.Count(ctx, `SELECT count(*) FROM appointments`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

// UpdateStatus обновляет статус записи
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *AppointmentRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*model.Appointment, error) {
	a, err := scanAppointment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}
	return a, nil
}

func appointmentWhere(filter model.AppointmentFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		conds = append(conds, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.TeacherID != nil {
		args = append(args, *filter.TeacherID)
		conds = append(conds, fmt.Sprintf("teacher_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID,
		&a.StudentID,
		&a.StudentName,
		&a.StudentEmail,
		&a.TeacherID,
		&a.TeacherName,
		&a.SlotID,
		&a.Date,
		&a.TimeRange,
		&a.Purpose,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
