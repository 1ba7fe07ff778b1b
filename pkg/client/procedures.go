package client

import (
	"context"
	"net/http"
)

type page struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

type idArg struct {
	ID string `json:"id"`
}

// auth.*

func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	var res AuthResult
	in := map[string]string{"email": email, "password": password, "name": name}
	if err := c.mutate(ctx, "auth.register", in, &res); err != nil {
		return nil, err
	}
	if err := c.auth.Login(res.AccessToken, res.User); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	in := map[string]string{"email": email, "password": password}
	if err := c.mutate(ctx, "auth.login", in, &res); err != nil {
		return nil, err
	}
	if err := c.auth.Login(res.AccessToken, res.User); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout 只清本地，token 在服务端自然过期
func (c *Client) Logout() error { return c.auth.Logout() }

func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var id Identity
	if err := c.query(ctx, "auth.me", nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (c *Client) VerifyEmail(ctx context.Context, token string) (bool, error) {
	var ok bool
	err := c.mutate(ctx, "auth.verifyEmail", map[string]string{"token": token}, &ok)
	return ok, err
}

// todo.*

func (c *Client) todo(ctx context.Context, method, proc string, in any) (*Todo, error) {
	var t Todo
	if err := c.do(ctx, method, proc, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) todos(ctx context.Context, proc string, in any) ([]Todo, error) {
	var ts []Todo
	if err := c.query(ctx, proc, in, &ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func (c *Client) GetTodo(ctx context.Context, id string) (*Todo, error) {
	return c.todo(ctx, http.MethodGet, "todo.getTodoById", idArg{ID: id})
}

func (c *Client) ListTodos(ctx context.Context, limit, offset int) ([]Todo, error) {
	return c.todos(ctx, "todo.getAllTodos", page{Limit: limit, Offset: offset})
}

func (c *Client) ListTodosByCompleted(ctx context.Context, completed bool) ([]Todo, error) {
	return c.todos(ctx, "todo.getCompletedTodos", map[string]bool{"completed": completed})
}

func (c *Client) ListTodosByPriority(ctx context.Context, priority string) ([]Todo, error) {
	return c.todos(ctx, "todo.getTodosByPriority", map[string]string{"priority": priority})
}

func (c *Client) CreateTodo(ctx context.Context, in CreateTodo) (*Todo, error) {
	return c.todo(ctx, http.MethodPost, "todo.createTodo", in)
}

func (c *Client) UpdateTodo(ctx context.Context, id string, p TodoPatch) (*Todo, error) {
	in := struct {
		ID   string    `json:"id"`
		Data TodoPatch `json:"data"`
	}{id, p}
	return c.todo(ctx, http.MethodPost, "todo.updateTodo", in)
}

func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.mutate(ctx, "todo.deleteTodo", idArg{ID: id}, nil)
}

func (c *Client) MarkCompleted(ctx context.Context, id string) (*Todo, error) {
	return c.todo(ctx, http.MethodPost, "todo.markAsCompleted", idArg{ID: id})
}

func (c *Client) MarkIncomplete(ctx context.Context, id string) (*Todo, error) {
	return c.todo(ctx, http.MethodPost, "todo.markAsIncomplete", idArg{ID: id})
}

func (c *Client) TodoStats(ctx context.Context) (*TodoStats, error) {
	var st TodoStats
	if err := c.query(ctx, "todo.getTodoStats", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// DueSoonTodos days<=0 时用服务端默认值
func (c *Client) DueSoonTodos(ctx context.Context, days int) ([]Todo, error) {
	var in any
	if days > 0 {
		in = map[string]int{"days": days}
	}
	return c.todos(ctx, "todo.getDueSoonTodos", in)
}

func (c *Client) ListAllTodosAdmin(ctx context.Context, limit, offset int) ([]Todo, error) {
	return c.todos(ctx, "todo.getAllTodosAdmin", page{Limit: limit, Offset: offset})
}

func (c *Client) DeleteTodoAdmin(ctx context.Context, id string) error {
	return c.mutate(ctx, "todo.deleteTodoAdmin", idArg{ID: id}, nil)
}

// user.*

func (c *Client) user(ctx context.Context, method, proc string, in any) (*User, error) {
	var u User
	if err := c.do(ctx, method, proc, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	return c.user(ctx, http.MethodGet, "user.getProfile", nil)
}

func (c *Client) UpdateProfile(ctx context.Context, name, email *string) (*User, error) {
	in := struct {
		Name  *string `json:"name,omitempty"`
		Email *string `json:"email,omitempty"`
	}{name, email}
	u, err := c.user(ctx, http.MethodPost, "user.updateProfile", in)
	if err != nil {
		return nil, err
	}
	// 本地缓存的用户信息跟着更新
	if tok := c.auth.Token(); tok != "" {
		if err := c.auth.Login(tok, *u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (c *Client) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	var us []User
	if err := c.query(ctx, "user.getAllUsers", page{Limit: limit, Offset: offset}, &us); err != nil {
		return nil, err
	}
	return us, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	return c.user(ctx, http.MethodGet, "user.getUserById", idArg{ID: id})
}

func (c *Client) UpdateUserRole(ctx context.Context, id, role string) (*User, error) {
	return c.user(ctx, http.MethodPost, "user.updateUserRole", map[string]string{"id": id, "role": role})
}

func (c *Client) DeactivateUser(ctx context.Context, id string) error {
	return c.mutate(ctx, "user.deactivateUser", idArg{ID: id}, nil)
}

func (c *Client) UserStats(ctx context.Context) (*UserStats, error) {
	var st UserStats
	if err := c.query(ctx, "user.getUserStats", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.mutate(ctx, "user.deleteUser", idArg{ID: id}, nil)
}
