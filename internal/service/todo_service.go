package service

import (
	"context"
	"strings"
	"time"

	"gin-todo-rpc/internal/domain"
	"gin-todo-rpc/pkg/utils"
)

type NewTodo struct {
	Name        string
	Description *string
	Completed   bool
	Priority    domain.Priority
	DueDate     *time.Time
}

// TodoService 普通方法一律带 OwnedBy(uid)，不属于调用方的 todo 和不存在一样返回 ErrTodoNotFound
type TodoService struct {
	todos domain.TodoRepository
	now   Clock
}

func NewTodoService(todos domain.TodoRepository, now Clock) *TodoService {
	if now == nil {
		now = time.Now
	}
	return &TodoService{todos: todos, now: now}
}

func (s *TodoService) Get(ctx context.Context, uid, id string) (*domain.Todo, error) {
	return s.find(ctx, domain.OwnedBy(uid), id)
}

func (s *TodoService) find(ctx context.Context, scope domain.Scope, id string) (*domain.Todo, error) {
	t, err := s.todos.Find(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrTodoNotFound
	}
	return t, nil
}

func (s *TodoService) List(ctx context.Context, uid string, limit, offset int) ([]domain.Todo, error) {
	return s.todos.List(ctx, domain.TodoQuery{
		Scope:  domain.OwnedBy(uid),
		Limit:  clampLimit(limit),
		Offset: clampOffset(offset),
	})
}

func (s *TodoService) ListByCompleted(ctx context.Context, uid string, completed bool) ([]domain.Todo, error) {
	return s.todos.List(ctx, domain.TodoQuery{Scope: domain.OwnedBy(uid), Completed: &completed})
}

func (s *TodoService) ListByPriority(ctx context.Context, uid string, p domain.Priority) ([]domain.Todo, error) {
	return s.todos.List(ctx, domain.TodoQuery{Scope: domain.OwnedBy(uid), Priority: &p})
}

func (s *TodoService) Create(ctx context.Context, uid string, in NewTodo) (*domain.Todo, error) {
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	now := s.now().UTC()
	t := &domain.Todo{
		ID:          utils.NewID(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Completed:   in.Completed,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		UserID:      uid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.todos.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TodoService) Update(ctx context.Context, uid, id string, p domain.TodoPatch) (*domain.Todo, error) {
	return s.update(ctx, domain.OwnedBy(uid), id, p)
}

func (s *TodoService) update(ctx context.Context, scope domain.Scope, id string, p domain.TodoPatch) (*domain.Todo, error) {
	cur, err := s.find(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	t, err := s.todos.Update(ctx, scope, id, p, stamp(s.now, cur.UpdatedAt))
	if err != nil {
		return nil, err
	}
	// 读改之间被删掉了
	if t == nil {
		return nil, domain.ErrTodoNotFound
	}
	return t, nil
}

func (s *TodoService) SetCompleted(ctx context.Context, uid, id string, completed bool) (*domain.Todo, error) {
	return s.update(ctx, domain.OwnedBy(uid), id, domain.TodoPatch{Completed: &completed})
}

func (s *TodoService) Delete(ctx context.Context, uid, id string) error {
	return s.delete(ctx, domain.OwnedBy(uid), id)
}

func (s *TodoService) delete(ctx context.Context, scope domain.Scope, id string) error {
	ok, err := s.todos.Delete(ctx, scope, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (s *TodoService) Stats(ctx context.Context, uid string) (domain.TodoStats, error) {
	scope := domain.OwnedBy(uid)
	total, err := s.todos.Count(ctx, scope, nil)
	if err != nil {
		return domain.TodoStats{}, err
	}
	done := true
	completed, err := s.todos.Count(ctx, scope, &done)
	if err != nil {
		return domain.TodoStats{}, err
	}
	return domain.TodoStats{Total: total, Completed: completed, Pending: total - completed}, nil
}

// DueSoon 未完成且截止时间 <= now+days，已过期的也算，按截止时间升序
func (s *TodoService) DueSoon(ctx context.Context, uid string, days int) ([]domain.Todo, error) {
	if days <= 0 {
		days = 7
	}
	before := s.now().UTC().AddDate(0, 0, days)
	pending := false
	return s.todos.List(ctx, domain.TodoQuery{
		Scope:     domain.OwnedBy(uid),
		Completed: &pending,
		DueBefore: &before,
		ByDueDate: true,
	})
}

// ListAll admin 专用，不做归属过滤
func (s *TodoService) ListAll(ctx context.Context, limit, offset int) ([]domain.Todo, error) {
	return s.todos.List(ctx, domain.TodoQuery{
		Scope:  domain.Unscoped(),
		Limit:  clampLimit(limit),
		Offset: clampOffset(offset),
	})
}

// DeleteAny admin 专用
func (s *TodoService) DeleteAny(ctx context.Context, id string) error {
	return s.delete(ctx, domain.Unscoped(), id)
}
