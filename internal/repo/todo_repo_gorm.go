package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gin-todo-rpc/internal/domain"
)

type TodoRepo struct{ db *gorm.DB }

func NewTodoRepo(db *gorm.DB) *TodoRepo { return &TodoRepo{db: db} }

var _ domain.TodoRepository = (*TodoRepo)(nil)

// scoped 归属过滤：非 admin 路径一律带 user_id
func scoped(q *gorm.DB, s domain.Scope) *gorm.DB {
	if s.IsUnscoped() {
		return q
	}
	if s.UserID() == "" {
		return q.Where("1 = 0")
	}
	return q.Where("user_id = ?", s.UserID())
}

func (r *TodoRepo) Create(ctx context.Context, t *domain.Todo) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TodoRepo) Find(ctx context.Context, s domain.Scope, id string) (*domain.Todo, error) {
	var t domain.Todo
	err := scoped(r.db.WithContext(ctx), s).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TodoRepo) List(ctx context.Context, q domain.TodoQuery) ([]domain.Todo, error) {
	tx := scoped(r.db.WithContext(ctx).Model(&domain.Todo{}), q.Scope)
	if q.Completed != nil {
		tx = tx.Where("completed = ?", *q.Completed)
	}
	if q.Priority != nil {
		tx = tx.Where("priority = ?", *q.Priority)
	}
	if q.DueBefore != nil {
		tx = tx.Where("due_date IS NOT NULL AND due_date <= ?", *q.DueBefore)
	}
	if q.ByDueDate {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "due_date"}})
	} else {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	var items []domain.Todo
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *TodoRepo) Update(ctx context.Context, s domain.Scope, id string, p domain.TodoPatch, at time.Time) (*domain.Todo, error) {
	set := map[string]any{"updated_at": at}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Completed != nil {
		set["completed"] = *p.Completed
	}
	if p.Priority != nil {
		set["priority"] = *p.Priority
	}
	if p.DueDate != nil {
		set["due_date"] = *p.DueDate
	}

	res := scoped(r.db.WithContext(ctx).Model(&domain.Todo{}), s).Where("id = ?", id).Updates(set)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.Find(ctx, s, id)
}

func (r *TodoRepo) Delete(ctx context.Context, s domain.Scope, id string) (bool, error) {
	res := scoped(r.db.WithContext(ctx), s).Where("id = ?", id).Delete(&domain.Todo{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TodoRepo) Count(ctx context.Context, s domain.Scope, completed *bool) (int64, error) {
	tx := scoped(r.db.WithContext(ctx).Model(&domain.Todo{}), s)
	if completed != nil {
		tx = tx.Where("completed = ?", *completed)
	}
	var n int64
	err := tx.Count(&n).Error
	return n, err
}
