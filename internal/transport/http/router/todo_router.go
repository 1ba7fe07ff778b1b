package router

import (
	"strings"
	"time"

	"gin-todo-rpc/internal/domain"
	"gin-todo-rpc/internal/service"
	"gin-todo-rpc/internal/transport/http/rpc"
)

type todoModule struct{ svc *service.TodoService }

func (todoModule) Namespace() string { return "todo" }
func (todoModule) Priority() int     { return 20 }

type idInput struct {
	ID string `json:"id" binding:"required,uuid"`
}

type pageInput struct {
	Limit  int `json:"limit" binding:"min=1,max=100"`
	Offset int `json:"offset" binding:"min=0"`
}

func (in *pageInput) Defaults() { in.Limit = 50 }

type completedInput struct {
	Completed bool `json:"completed"`
}

func (in *completedInput) Defaults() { in.Completed = true }

type priorityInput struct {
	Priority domain.Priority `json:"priority" binding:"required,oneof=low medium high"`
}

type createTodoInput struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description *string         `json:"description" binding:"omitempty,max=1000"`
	Completed   bool            `json:"completed"`
	Priority    domain.Priority `json:"priority" binding:"oneof=low medium high"`
	DueDate     *time.Time      `json:"dueDate"`
}

func (in *createTodoInput) Defaults() { in.Priority = domain.PriorityMedium }

type todoPatchInput struct {
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Description *string          `json:"description" binding:"omitempty,max=1000"`
	Completed   *bool            `json:"completed"`
	Priority    *domain.Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time       `json:"dueDate"`
}

type updateTodoInput struct {
	ID   string         `json:"id" binding:"required,uuid"`
	Data todoPatchInput `json:"data"`
}

type dueSoonInput struct {
	Days int `json:"days" binding:"min=1,max=30"`
}

func (in *dueSoonInput) Defaults() { in.Days = 7 }

func notBlank(field string, s *string) error {
	if s != nil && strings.TrimSpace(*s) == "" {
		return rpc.BadRequest("invalid input: " + field + " must not be blank")
	}
	return nil
}

func (m todoModule) Mount(r *rpc.Router) {
	rpc.Query(r, "todo.getTodoById", true, func(ctx rpc.Context, in *idInput) (*domain.Todo, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return nil, err
		}
		return m.svc.Get(ctx.Ctx(), u.ID, in.ID)
	})

	rpc.Query(r, "todo.getAllTodos", true, func(ctx rpc.Context, in *pageInput) ([]domain.Todo, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return nil, err
		}
		return m.svc.List(ctx.Ctx(), u.ID, in.Limit, in.Offset)
	})

	rpc.Query(r, "todo.getCompletedTodos", true, func(ctx rpc.Context, in *completedInput) ([]domain.Todo, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return nil, err
		}
		return m.svc.ListByCompleted(ctx.Ctx(), u.ID, in.Completed)
	})

	rpc.Query(r, "todo.getTodosByPriority", true, func(ctx rpc.Context, in *priorityInput) ([]domain.Todo, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return nil, err
		}
		return m.svc.ListByPriority(ctx.Ctx(), u.ID, in.Priority)
	})

	rpc.Mutation(r, "todo.createTodo", true, func(ctx rpc.Context, in *createTodoInput) (*domain.Todo, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return nil, err
		}
		if err := notBlank("name", &in.Name); err != nil {
			return nil, err
		}
		return m.svc.Create(ctx.Ctx(), u.ID, service.NewTodo{
			Name:        in.Name,
			Description: in.Description,
			Completed:   in.Completed,
			Priority:    in.Priority,
			DueDate:     in.DueDate,
		})
	})

	rpc.Mutation(r, "todo.updateTodo", true, func(ctx rpc.Context, in *updateTodoInput) (*domain.Todo, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return nil, err
		}
		if err := notBlank("data.name", in.Data.Name); err != nil {
			return nil, err
		}
		return m.svc.Update(ctx.Ctx(), u.ID, in.ID, domain.TodoPatch{
			Name:        in.Data.Name,
			Description: in.Data.Description,
			Completed:   in.Data.Completed,
			Priority:    in.Data.Priority,
			DueDate:     in.Data.DueDate,
		})
	})

	rpc.Mutation(r, "todo.deleteTodo", true, func(ctx rpc.Context, in *idInput) (bool, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return false, err
		}
		if err := m.svc.Delete(ctx.Ctx(), u.ID, in.ID); err != nil {
			return false, err
		}
		return true, nil
	})

	rpc.Mutation(r, "todo.markAsCompleted", true, func(ctx rpc.Context, in *idInput) (*domain.Todo, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return nil, err
		}
		return m.svc.SetCompleted(ctx.Ctx(), u.ID, in.ID, true)
	})

	rpc.Mutation(r, "todo.markAsIncomplete", true, func(ctx rpc.Context, in *idInput) (*domain.Todo, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return nil, err
		}
		return m.svc.SetCompleted(ctx.Ctx(), u.ID, in.ID, false)
	})

	rpc.Query(r, "todo.getTodoStats", true, func(ctx rpc.Context, _ *struct{}) (domain.TodoStats, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return domain.TodoStats{}, err
		}
		return m.svc.Stats(ctx.Ctx(), u.ID)
	})

	rpc.Query(r, "todo.getDueSoonTodos", true, func(ctx rpc.Context, in *dueSoonInput) ([]domain.Todo, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return nil, err
		}
		return m.svc.DueSoon(ctx.Ctx(), u.ID, in.Days)
	})

	// admin：不做归属过滤
	rpc.Query(r, "todo.getAllTodosAdmin", true, func(ctx rpc.Context, in *pageInput) ([]domain.Todo, error) {
		if _, err := rpc.RequireAdmin(ctx); err != nil {
			return nil, err
		}
		return m.svc.ListAll(ctx.Ctx(), in.Limit, in.Offset)
	})

	rpc.Mutation(r, "todo.deleteTodoAdmin", true, func(ctx rpc.Context, in *idInput) (bool, error) {
		if _, err := rpc.RequireAdmin(ctx); err != nil {
			return false, err
		}
		if err := m.svc.DeleteAny(ctx.Ctx(), in.ID); err != nil {
			return false, err
		}
		return true, nil
	})
}
