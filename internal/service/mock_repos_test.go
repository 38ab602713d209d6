package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/appointment_desk/internal/identity"
	"github.com/Freeeeeet/appointment_desk/internal/model"
	"github.com/Freeeeeet/appointment_desk/internal/repository"
	"github.com/Freeeeeet/appointment_desk/internal/session"
	"github.com/google/uuid"
)

var errStoreDown = errors.New("store unavailable")

// ---- users ----

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*model.User
	createErr error
	// onDelete вызывается после удаления, как каскад внешних ключей
	onDelete func(id uuid.UUID)
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) List(_ context.Context, role *model.Role, approved *bool) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		if role != nil && u.Role != *role {
			continue
		}
		if approved != nil && u.Approved != *approved {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockUserRepo) SearchTeachers(ctx context.Context, _ string) ([]*model.User, error) {
	return m.List(ctx, ptr(model.RoleTeacher), ptr(true))
}

func (m *mockUserRepo) Count(ctx context.Context, role *model.Role, approved *bool) (int, error) {
	users, err := m.List(ctx, role, approved)
	return len(users), err
}

func (m *mockUserRepo) SetApproved(_ context.Context, id uuid.UUID, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Approved = approved
	return nil
}

func (m *mockUserRepo) UpdateTeacherProfile(_ context.Context, id uuid.UUID, name string, profile model.TeacherProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.Role != model.RoleTeacher {
		return repository.ErrNotFound
	}
	u.Name = name
	u.Teacher = &profile
	return nil
}

func (m *mockUserRepo) snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make(map[uuid.UUID]*model.User, len(m.users))
	for id, u := range m.users {
		cp := *u
		saved[id] = &cp
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.users = saved
	}
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	if _, ok := m.users[id]; !ok {
		m.mu.Unlock()
		return repository.ErrNotFound
	}
	delete(m.users, id)
	m.mu.Unlock()

	if m.onDelete != nil {
		m.onDelete(id)
	}
	return nil
}

// ---- slots ----

type mockSlotRepo struct {
	mu         sync.Mutex
	slots      map[uuid.UUID]*model.Slot
	releaseErr error
	locked     []uuid.UUID
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[uuid.UUID]*model.Slot)}
}

func (m *mockSlotRepo) Create(_ context.Context, slot *model.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot.CreatedAt = time.Now()
	cp := *slot
	m.slots[slot.ID] = &cp
	return nil
}

func (m *mockSlotRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *mockSlotRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	return m.GetByID(ctx, id)
}

func (m *mockSlotRepo) ListByTeacher(_ context.Context, teacherID uuid.UUID, onlyFree bool) ([]*model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Slot
	for _, s := range m.slots {
		if s.TeacherID != teacherID || (onlyFree && s.IsBooked) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (m *mockSlotRepo) CountByTeacher(ctx context.Context, teacherID uuid.UUID) (int, error) {
	slots, err := m.ListByTeacher(ctx, teacherID, false)
	return len(slots), err
}

func (m *mockSlotRepo) Book(_ context.Context, slotID, teacherID uuid.UUID) (*model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[slotID]
	if !ok || s.TeacherID != teacherID || s.IsBooked {
		return nil, nil
	}
	s.IsBooked = true
	cp := *s
	return &cp, nil
}

func (m *mockSlotRepo) LockByTeacher(_ context.Context, teacherID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked = append(m.locked, teacherID)
	return nil
}

func (m *mockSlotRepo) Release(_ context.Context, slotID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.releaseErr != nil {
		return m.releaseErr
	}
	if s, ok := m.slots[slotID]; ok {
		s.IsBooked = false
	}
	return nil
}

func (m *mockSlotRepo) snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make(map[uuid.UUID]*model.Slot, len(m.slots))
	for id, sl := range m.slots {
		cp := *sl
		saved[id] = &cp
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.slots = saved
	}
}

// deleteByTeacher повторяет ON DELETE CASCADE у slots.teacher_id
func (m *mockSlotRepo) deleteByTeacher(teacherID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sl := range m.slots {
		if sl.TeacherID == teacherID {
			delete(m.slots, id)
		}
	}
}

func (m *mockSlotRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.slots, id)
	return nil
}

// ---- appointments ----

type mockAppointmentRepo struct {
	mu           sync.Mutex
	appointments []*model.Appointment
	updateErr    error
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.SlotID != nil {
		for _, existing := range m.appointments {
			if existing.SlotID != nil && *existing.SlotID == *a.SlotID && existing.Status.IsActive() {
				return repository.ErrSlotTaken
			}
		}
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	cp := *a
	m.appointments = append(m.appointments, &cp)
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.appointments {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockAppointmentRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return m.GetByID(ctx, id)
}

func (m *mockAppointmentRepo) HasActiveForSlot(_ context.Context, slotID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.appointments {
		if a.SlotID != nil && *a.SlotID == slotID && a.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAppointmentRepo) List(_ context.Context, filter model.AppointmentFilter, order repository.AppointmentOrder, limit int) ([]*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Appointment
	// appointments хранятся в порядке создания, новые в конце
	for i := len(m.appointments) - 1; i >= 0; i-- {
		a := m.appointments[i]
		if !matches(a, filter) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	if order == repository.OrderByDateAsc {
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].Date.Equal(out[j].Date) {
				return out[i].Date.Before(out[j].Date)
			}
			return out[i].TimeRange < out[j].TimeRange
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockAppointmentRepo) Count(ctx context.Context, filter model.AppointmentFilter) (int, error) {
	list, err := m.List(ctx, filter, repository.OrderByCreatedDesc, 0)
	return len(list), err
}

func (m *mockAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	for _, a := range m.appointments {
		if a.ID == id {
			a.Status = status
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockAppointmentRepo) snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make([]*model.Appointment, len(m.appointments))
	for i, a := range m.appointments {
		cp := *a
		saved[i] = &cp
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.appointments = saved
	}
}

func matches(a *model.Appointment, f model.AppointmentFilter) bool {
	if f.StudentID != nil && a.StudentID != *f.StudentID {
		return false
	}
	if f.TeacherID != nil && a.TeacherID != *f.TeacherID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

// ---- messages ----

type mockMessageRepo struct {
	mu       sync.Mutex
	messages []*model.Message
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.CreatedAt = time.Now()
	cp := *msg
	m.messages = append(m.messages, &cp)
	return nil
}

func (m *mockMessageRepo) list(keep func(*model.Message) bool) []*model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Message
	for i := len(m.messages) - 1; i >= 0; i-- {
		if keep(m.messages[i]) {
			cp := *m.messages[i]
			out = append(out, &cp)
		}
	}
	return out
}

func (m *mockMessageRepo) ListTo(_ context.Context, toID uuid.UUID) ([]*model.Message, error) {
	return m.list(func(msg *model.Message) bool { return msg.ToID == toID }), nil
}

func (m *mockMessageRepo) ListFrom(_ context.Context, fromID uuid.UUID) ([]*model.Message, error) {
	return m.list(func(msg *model.Message) bool { return msg.FromID == fromID }), nil
}

func (m *mockMessageRepo) CountTo(ctx context.Context, toID uuid.UUID) (int, error) {
	list, _ := m.ListTo(ctx, toID)
	return len(list), nil
}

func (m *mockMessageRepo) CountFrom(ctx context.Context, fromID uuid.UUID) (int, error) {
	list, _ := m.ListFrom(ctx, fromID)
	return len(list), nil
}

// ---- infrastructure ----

// snapshotter фейк, который умеет вернуть свои данные к снимку
type snapshotter interface {
	snapshot() (restore func())
}

// mockTransactor выполняет транзакции по одной и при ошибке fn
// откатывает все подключённые фейки к состоянию до начала
type mockTransactor struct {
	mu    sync.Mutex
	repos []snapshotter
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	restores := make([]func(), 0, len(m.repos))
	for _, r := range m.repos {
		restores = append(restores, r.snapshot())
	}

	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type mockAccount struct {
	id       uuid.UUID
	password string
}

type mockIdentity struct {
	mu       sync.Mutex
	accounts map[string]mockAccount
}

func newMockIdentity() *mockIdentity {
	return &mockIdentity{accounts: make(map[string]mockAccount)}
}

func (m *mockIdentity) CreateAccount(_ context.Context, email, password string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(password) < identity.MinPasswordLength {
		return uuid.Nil, identity.ErrWeakPassword
	}
	if _, ok := m.accounts[email]; ok {
		return uuid.Nil, identity.ErrEmailTaken
	}
	id := uuid.New()
	m.accounts[email] = mockAccount{id: id, password: password}
	return id, nil
}

func (m *mockIdentity) SignIn(_ context.Context, email, password string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[email]
	if !ok || acc.password != password {
		return uuid.Nil, identity.ErrInvalidCredentials
	}
	return acc.id, nil
}

func (m *mockIdentity) DeleteAccount(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, acc := range m.accounts {
		if acc.id == id {
			delete(m.accounts, email)
		}
	}
	return nil
}

type mockSessions struct {
	mu        sync.Mutex
	sessions  map[string]*session.Session
	revokeErr error
}

func newMockSessions() *mockSessions {
	return &mockSessions{sessions: make(map[string]*session.Session)}
}

func (m *mockSessions) Create(_ context.Context, user *model.User) (*session.Session, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &session.Session{
		ID:     uuid.New(),
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		Email:  user.Email,
	}
	token := "token-" + s.ID.String()
	m.sessions[token] = s
	return s, token, nil
}

func (m *mockSessions) Resolve(_ context.Context, token string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, session.ErrNoSession
	}
	return s, nil
}

func (m *mockSessions) DestroyAllForUser(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revokeErr != nil {
		return 0, m.revokeErr
	}
	n := 0
	for token, stored := range m.sessions {
		if stored.UserID == userID {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

func (m *mockSessions) Destroy(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, stored := range m.sessions {
		if stored.ID == s.ID {
			delete(m.sessions, token)
		}
	}
	return nil
}

type auditEntry struct {
	level   model.LogLevel
	module  string
	message string
	userID  uuid.UUID
}

type mockAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAudit) add(level model.LogLevel, module, message string, userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{level: level, module: module, message: message, userID: userID})
}

func (m *mockAudit) Info(_ context.Context, module, message string, userID uuid.UUID) {
	m.add(model.LogLevelInfo, module, message, userID)
}

func (m *mockAudit) Warn(_ context.Context, module, message string, userID uuid.UUID) {
	m.add(model.LogLevelWarn, module, message, userID)
}

func (m *mockAudit) Error(_ context.Context, module, message string, userID uuid.UUID) {
	m.add(model.LogLevelError, module, message, userID)
}

func (m *mockAudit) Action(_ context.Context, module, message string, userID uuid.UUID) {
	m.add(model.LogLevelAction, module, message, userID)
}

func (m *mockAudit) count(level model.LogLevel) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

func (m *mockAudit) Recent(_ context.Context, limit int) ([]*model.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.LogEntry
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.entries[i]
		out = append(out, &model.LogEntry{Level: e.level, Module: e.module, Message: e.message})
	}
	return out, nil
}

type mockNotifier struct {
	mu       sync.Mutex
	booked   []*model.Appointment
	changed  []*model.Appointment
	approved []*model.User
	err      error
}

func (m *mockNotifier) AppointmentBooked(_ context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.booked = append(m.booked, a)
	return m.err
}

func (m *mockNotifier) AppointmentStatusChanged(_ context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changed = append(m.changed, a)
	return m.err
}

func (m *mockNotifier) UserApproved(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approved = append(m.approved, u)
	return m.err
}
