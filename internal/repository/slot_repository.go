package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slotColumns = `id, teacher_id, teacher_name, day, date, start_time, end_time, is_booked, created_at`

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (id, teacher_id, teacher_name, day, date, start_time, end_time, is_booked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.ID,
		slot.TeacherID,
		slot.TeacherName,
		slot.Day,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.IsBooked,
	).Scan(&slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	return r.getOne(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = $1`, id)
}

// GetByIDForUpdate получает слот по ID с блокировкой строки до конца транзакции
func (r *SlotRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	return r.getOne(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = $1 FOR UPDATE`, id)
}

func (r *SlotRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*model.Slot, error) {
	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// ListByTeacher получает слоты учителя; onlyFree оставляет только свободные
func (r *SlotRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID, onlyFree bool) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE teacher_id = $1
		  AND (NOT $2 OR is_booked = false)
		ORDER BY date ASC, start_time ASC
	`

	rows, err := r.Query(ctx, query, teacherID, onlyFree)
	if err != nil {
		return nil, fmt.Errorf("list slots by teacher: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

// LockByTeacher блокирует все слоты учителя до конца транзакции;
// параллельное бронирование этих слотов будет ждать
func (r *SlotRepository) LockByTeacher(ctx context.Context, teacherID uuid.UUID) error {
	if _, err := r.ExecAffected(ctx, `SELECT id FROM slots WHERE teacher_id = $1 FOR UPDATE`, teacherID); err != nil {
		return fmt.Errorf("lock teacher slots: %w", err)
	}
	return nil
}

// CountByTeacher считает слоты учителя
func (r *SlotRepository) CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int, error) {
	n, err := r.Count(ctx, `SELECT count(*) FROM slots WHERE teacher_id = $1`, teacherID)
	if err != nil {
		return 0, fmt.Errorf("count slots: %w", err)
	}
	return n, nil
}

// Book помечает свободный слот учителя занятым. Возвращает nil, если слот
// не найден, принадлежит другому учителю или уже занят.
func (r *SlotRepository) Book(ctx context.Context, slotID, teacherID uuid.UUID) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET is_booked = true
		WHERE id = $1 AND teacher_id = $2 AND is_booked = false
		RETURNING ` + slotColumns

	slot, err := scanSlot(r.QueryRow(ctx, query, slotID, teacherID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("book slot: %w", err)
	}

	return slot, nil
}

// Release освобождает слот. Отсутствие слота не считается ошибкой:
// слот мог быть удалён, а запись осталась.
func (r *SlotRepository) Release(ctx context.Context, slotID uuid.UUID) error {
	_, err := r.ExecAffected(ctx, `UPDATE slots SET is_booked = false WHERE id = $1`, slotID)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	return nil
}

// Delete удаляет слот
func (r *SlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.TeacherID,
		&slot.TeacherName,
		&slot.Day,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsBooked,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}
