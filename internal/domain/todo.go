package domain

import (
	"context"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Todo struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description *string    `gorm:"type:text" json:"description"`
	Completed   bool       `gorm:"not null;default:false;index" json:"completed"`
	Priority    Priority   `gorm:"size:8;not null;default:medium;index" json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	UserID      string     `gorm:"type:varchar(36);not null;index" json:"userId"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`
}

func (Todo) TableName() string { return "todos" }

// TodoPatch nil 字段不更新
type TodoPatch struct {
	Name        *string
	Description *string
	Completed   *bool
	Priority    *Priority
	DueDate     *time.Time
}

// TodoQuery 列表过滤；零值字段不参与过滤
type TodoQuery struct {
	Scope     Scope
	Completed *bool
	Priority  *Priority
	DueBefore *time.Time // 只要有截止时间且 <= DueBefore
	Limit     int        // <=0 不限制
	Offset    int
	ByDueDate bool // true 按截止时间升序，否则按创建时间降序
}

type TodoStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}

// TodoRepository 查不到时返回 (nil, nil)
type TodoRepository interface {
	Create(ctx context.Context, t *Todo) error
	Find(ctx context.Context, s Scope, id string) (*Todo, error)
	List(ctx context.Context, q TodoQuery) ([]Todo, error)
	Update(ctx context.Context, s Scope, id string, p TodoPatch, at time.Time) (*Todo, error)
	Delete(ctx context.Context, s Scope, id string) (bool, error)
	Count(ctx context.Context, s Scope, completed *bool) (int64, error)
}
