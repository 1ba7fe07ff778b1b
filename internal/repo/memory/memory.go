// Package memory 进程内仓储实现，db.driver=memory 时使用，也用于测试
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gin-todo-rpc/internal/domain"
)

// Store users 与 todos 共用一把锁，删用户时级联删 todo
type Store struct {
	mu    sync.RWMutex
	users map[string]domain.User
	todos map[string]domain.Todo
}

func New() *Store {
	return &Store{
		users: make(map[string]domain.User),
		todos: make(map[string]domain.Todo),
	}
}

func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }
func (s *Store) Todos() *TodoRepo { return &TodoRepo{s: s} }

type UserRepo struct{ s *Store }

var _ domain.UserRepository = (*UserRepo)(nil)

func sameEmail(a, b string) bool { return strings.EqualFold(a, b) }

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ex := range r.s.users {
		if sameEmail(ex.Email, u.Email) {
			return domain.ErrEmailTaken
		}
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	cp := *u
	cp.Todos = nil
	r.s.users[u.ID] = cp
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) findEmail(email string, activeOnly bool) *domain.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if sameEmail(u.Email, email) && (!activeOnly || u.IsActive) {
			cp := u
			return &cp
		}
	}
	return nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findEmail(email, false), nil
}

func (r *UserRepo) FindActiveByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findEmail(email, true), nil
}

func (r *UserRepo) ListActive(_ context.Context, offset, limit int) ([]domain.User, error) {
	r.s.mu.RLock()
	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return page(out, offset, limit), nil
}

func (r *UserRepo) Update(_ context.Context, id string, p domain.UserPatch, at time.Time) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	if p.Email != nil {
		for _, ex := range r.s.users {
			if ex.ID != id && sameEmail(ex.Email, *p.Email) {
				return nil, domain.ErrEmailTaken
			}
		}
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.EmailVerified != nil {
		u.EmailVerified = *p.EmailVerified
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	u.UpdatedAt = at
	r.s.users[id] = u
	return &u, nil
}

func (r *UserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return false, nil
	}
	delete(r.s.users, id)
	for tid, t := range r.s.todos {
		if t.UserID == id {
			delete(r.s.todos, tid)
		}
	}
	return true, nil
}

func (r *UserRepo) Stats(_ context.Context) (domain.UserStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st := domain.UserStats{ByRole: make(map[domain.Role]int64, len(domain.AllRoles))}
	for _, role := range domain.AllRoles {
		st.ByRole[role] = 0
	}
	for _, u := range r.s.users {
		st.Total++
		if u.IsActive {
			st.Active++
		} else {
			st.Inactive++
		}
		st.ByRole[u.Role]++
	}
	return st, nil
}

type TodoRepo struct{ s *Store }

var _ domain.TodoRepository = (*TodoRepo)(nil)

func (r *TodoRepo) Create(_ context.Context, t *domain.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// 外键约束
	if _, ok := r.s.users[t.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.todos[t.ID] = *t
	return nil
}

func (r *TodoRepo) Find(_ context.Context, s domain.Scope, id string) (*domain.Todo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.todos[id]
	if !ok || !s.Allows(t.UserID) {
		return nil, nil
	}
	return &t, nil
}

func (r *TodoRepo) List(_ context.Context, q domain.TodoQuery) ([]domain.Todo, error) {
	r.s.mu.RLock()
	out := make([]domain.Todo, 0)
	for _, t := range r.s.todos {
		if !q.Scope.Allows(t.UserID) {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		if q.Priority != nil && t.Priority != *q.Priority {
			continue
		}
		if q.DueBefore != nil && (t.DueDate == nil || t.DueDate.After(*q.DueBefore)) {
			continue
		}
		out = append(out, t)
	}
	r.s.mu.RUnlock()

	if q.ByDueDate {
		sort.Slice(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return a.Before(*b)
			}
		})
	} else {
		sort.Slice(out, func(i, j int) bool {
			if out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].ID > out[j].ID
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return page(out, q.Offset, q.Limit), nil
}

func (r *TodoRepo) Update(_ context.Context, s domain.Scope, id string, p domain.TodoPatch, at time.Time) (*domain.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.todos[id]
	if !ok || !s.Allows(t.UserID) {
		return nil, nil
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	t.UpdatedAt = at
	r.s.todos[id] = t
	return &t, nil
}

func (r *TodoRepo) Delete(_ context.Context, s domain.Scope, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.todos[id]
	if !ok || !s.Allows(t.UserID) {
		return false, nil
	}
	delete(r.s.todos, id)
	return true, nil
}

func (r *TodoRepo) Count(_ context.Context, s domain.Scope, completed *bool) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, t := range r.s.todos {
		if !s.Allows(t.UserID) {
			continue
		}
		if completed != nil && t.Completed != *completed {
			continue
		}
		n++
	}
	return n, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
