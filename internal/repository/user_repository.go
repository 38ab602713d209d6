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

const userColumns = `id, email, name, role, approved,
	student_number, course, semester,
	department, subject, qualification, experience,
	created_at`

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт нового пользователя, ID берётся у провайдера идентификации
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, name, role, approved,
			student_number, course, semester,
			department, subject, qualification, experience)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	student, teacher := profileArgs(user)
	err := r.QueryRow(
		ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		user.Approved,
		student[0], student[1], student[2],
		teacher[0], teacher[1], teacher[2], teacher[3],
	).Scan(&user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// List получает пользователей по роли и/или признаку одобрения
func (r *UserRepository) List(ctx context.Context, role *model.Role, approved *bool) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1::text IS NULL OR role = $1)
		  AND ($2::boolean IS NULL OR approved = $2)
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, role, approved)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// SearchTeachers ищет одобренных учителей по подстроке в имени, кафедре
// или предмете без учёта регистра; % и _ в запросе ищутся буквально
func (r *UserRepository) SearchTeachers(ctx context.Context, q string) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'teacher'
		  AND approved
		  AND ($1 = ''
		       OR strpos(lower(name), lower($1)) > 0
		       OR strpos(lower(coalesce(department, '')), lower($1)) > 0
		       OR strpos(lower(coalesce(subject, '')), lower($1)) > 0)
		ORDER BY name
	`

	rows, err := r.Query(ctx, query, q)
	if err != nil {
		return nil, fmt.Errorf("search teachers: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// Count считает пользователей по роли и/или признаку одобрения
func (r *UserRepository) Count(ctx context.Context, role *model.Role, approved *bool) (int, error) {
	query := `
		SELECT count(*)
		FROM users
		WHERE ($1::text IS NULL OR role = $1)
		  AND ($2::boolean IS NULL OR approved = $2)
	`

	n, err := r.Repository.Count(ctx, query, role, approved)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// SetApproved меняет признак одобрения
func (r *UserRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	affected, err := r.ExecAffected(ctx, `UPDATE users SET approved = $1 WHERE id = $2`, approved, id)
	if err != nil {
		return fmt.Errorf("set user approved: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateTeacherProfile обновляет имя и профиль учителя
func (r *UserRepository) UpdateTeacherProfile(ctx context.Context, id uuid.UUID, name string, profile model.TeacherProfile) error {
	query := `
		UPDATE users
		SET name = $1, department = $2, subject = $3, qualification = $4, experience = $5
		WHERE id = $6 AND role = 'teacher'
	`

	affected, err := r.ExecAffected(ctx, query,
		name, profile.Department, profile.Subject, profile.Qualification, profile.Experience, id)
	if err != nil {
		return fmt.Errorf("update teacher profile: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete удаляет пользователя
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func profileArgs(user *model.User) (student [3]*string, teacher [4]*string) {
	if p := user.Student; p != nil {
		student = [3]*string{&p.StudentNumber, &p.Course, &p.Semester}
	}
	if p := user.Teacher; p != nil {
		teacher = [4]*string{&p.Department, &p.Subject, &p.Qualification, &p.Experience}
	}
	return student, teacher
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	var studentNumber, course, semester *string
	var department, subject, qualification, experience *string

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.Approved,
		&studentNumber,
		&course,
		&semester,
		&department,
		&subject,
		&qualification,
		&experience,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case model.RoleStudent:
		user.Student = &model.StudentProfile{
			StudentNumber: deref(studentNumber),
			Course:        deref(course),
			Semester:      deref(semester),
		}
	case model.RoleTeacher:
		user.Teacher = &model.TeacherProfile{
			Department:    deref(department),
			Subject:       deref(subject),
			Qualification: deref(qualification),
			Experience:    deref(experience),
		}
	}

	return &user, nil
}

func collectUsers(rows pgx.Rows) ([]*model.User, error) {
	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
