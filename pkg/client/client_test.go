package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gin-todo-rpc/internal/core/auth"
	"gin-todo-rpc/internal/core/config"
	"gin-todo-rpc/internal/domain"
	"gin-todo-rpc/internal/repo/memory"
	"gin-todo-rpc/internal/service"
	"gin-todo-rpc/internal/transport/http/router"
	"gin-todo-rpc/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.BcryptCost = bcrypt.MinCost
}

func newServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	var cfg config.Config
	cfg.App.HTTP.RequestTimeoutSec = 10
	cfg.Log.MaxInputBytes = 1024
	cfg.Log.SlowMs = 2000
	cfg.Limits = config.Limits{RPS: 1000, Burst: 1000, PerIPRPS: 1000, PerIPBurst: 1000, MaxConcurrent: 100, MaxBodyBytes: 1 << 20}

	st := memory.New()
	jwt := &auth.JWTer{Secret: []byte("0123456789abcdef"), Issuer: "test", TTL: time.Hour}
	e := router.NewAPIEngine(router.Deps{
		Log:     zap.NewNop(),
		Config:  &cfg,
		JWT:     jwt,
		Users:   st.Users(),
		AuthSvc: service.NewAuthService(st.Users(), jwt, nil),
		TodoSvc: service.NewTodoService(st.Todos(), nil),
		UserSvc: service.NewUserService(st.Users(), nil, 0, nil, nil),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, st
}

func seedAdmin(t *testing.T, st *memory.Store, email string) {
	t.Helper()
	hash, _ := utils.HashPassword("secret123")
	now := time.Now().UTC()
	err := st.Users().Create(context.Background(), &domain.User{
		ID: utils.NewID(), Email: email, Name: "Admin", PasswordHash: hash,
		Role: domain.RoleAdmin, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func asError(t *testing.T, err error) *Error {
	t.Helper()
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("want *Error, got %v", err)
	}
	return e
}

func TestClientTodoFlow(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()
	c := New(srv.URL+"/", nil)

	res, err := c.Register(ctx, "a@x.com", "secret123", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Auth().IsAuthenticated() || c.Auth().Token() != res.AccessToken {
		t.Fatal("token not stored after register")
	}
	if !c.Auth().IsUserOrAdmin() || c.Auth().IsAdmin() {
		t.Fatalf("role helpers wrong for %q", res.User.Role)
	}

	me, err := c.Me(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if me.ID != res.User.ID || me.Role != RoleUser {
		t.Fatalf("me = %+v", me)
	}

	td, err := c.CreateTodo(ctx, CreateTodo{Name: "  write tests "})
	if err != nil {
		t.Fatal(err)
	}
	if td.Name != "write tests" || td.Priority != "medium" || td.UserID != me.ID {
		t.Fatalf("created = %+v", td)
	}

	done, err := c.MarkCompleted(ctx, td.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !done.Completed || !done.UpdatedAt.After(td.UpdatedAt) {
		t.Fatalf("mark completed = %+v", done)
	}

	high := "high"
	up, err := c.UpdateTodo(ctx, td.ID, TodoPatch{Priority: &high})
	if err != nil {
		t.Fatal(err)
	}
	if up.Priority != "high" || !up.Completed {
		t.Fatalf("updated = %+v", up)
	}

	got, err := c.ListTodosByPriority(ctx, "high")
	if err != nil || len(got) != 1 {
		t.Fatalf("by priority = %v, %v", got, err)
	}
	all, err := c.ListTodos(ctx, 0, 0)
	if err != nil || len(all) != 1 {
		t.Fatalf("list = %v, %v", all, err)
	}
	st, err := c.TodoStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 1 || st.Completed != 1 || st.Pending != 0 {
		t.Fatalf("stats = %+v", st)
	}

	if err := c.DeleteTodo(ctx, td.ID); err != nil {
		t.Fatal(err)
	}
	_, err = c.GetTodo(ctx, td.ID)
	if e := asError(t, err); e.Code != http.StatusNotFound || e.Kind != "NOT_FOUND" {
		t.Fatalf("get deleted = %+v", e)
	}
}

func TestClientErrors(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()
	c := New(srv.URL, NewMemoryStore())

	_, err := c.Me(ctx)
	if e := asError(t, err); e.Code != http.StatusUnauthorized || e.Msg != "missing or invalid authorization header" {
		t.Fatalf("anonymous me = %+v", e)
	}

	if _, err := c.Register(ctx, "b@x.com", "secret123", "Bob"); err != nil {
		t.Fatal(err)
	}
	_, err = New(srv.URL, nil).Register(ctx, "B@X.com", "secret123", "Bob")
	if e := asError(t, err); e.Kind != "CONFLICT" {
		t.Fatalf("duplicate = %+v", e)
	}

	_, err = c.CreateTodo(ctx, CreateTodo{Name: ""})
	if e := asError(t, err); e.Code != http.StatusBadRequest {
		t.Fatalf("empty name = %+v", e)
	}

	_, err = c.ListAllTodosAdmin(ctx, 10, 0)
	if e := asError(t, err); e.Code != http.StatusForbidden {
		t.Fatalf("admin list as user = %+v", e)
	}

	if _, err := c.Login(ctx, "b@x.com", "wrong-pass"); err == nil {
		t.Fatal("expected login failure")
	}
	// 失败的登录不覆盖已有登录态
	if !c.Auth().IsAuthenticated() {
		t.Fatal("token dropped after failed login")
	}
	if err := c.Logout(); err != nil {
		t.Fatal(err)
	}
	if c.Auth().IsAuthenticated() || c.Auth().HasRole(RoleUser) {
		t.Fatal("still authenticated after logout")
	}
}

func TestClientAdmin(t *testing.T) {
	srv, st := newServer(t)
	ctx := context.Background()
	seedAdmin(t, st, "root@x.com")

	u := New(srv.URL, nil)
	ur, err := u.Register(ctx, "u@x.com", "secret123", "User")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.CreateTodo(ctx, CreateTodo{Name: "mine"}); err != nil {
		t.Fatal(err)
	}

	admin := New(srv.URL, nil)
	if _, err := admin.Login(ctx, "root@x.com", "secret123"); err != nil {
		t.Fatal(err)
	}
	if !admin.Auth().IsAdmin() {
		t.Fatal("admin role not stored")
	}

	todos, err := admin.ListAllTodosAdmin(ctx, 0, 0)
	if err != nil || len(todos) != 1 {
		t.Fatalf("admin todos = %v, %v", todos, err)
	}
	stats, err := admin.UserStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 || stats.ByRole[RoleAdmin] != 1 {
		t.Fatalf("user stats = %+v", stats)
	}

	promoted, err := admin.UpdateUserRole(ctx, ur.User.ID, RoleAdmin)
	if err != nil || promoted.Role != RoleAdmin {
		t.Fatalf("promote = %+v, %v", promoted, err)
	}
	if err := admin.DeleteTodoAdmin(ctx, todos[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := admin.DeactivateUser(ctx, ur.User.ID); err != nil {
		t.Fatal(err)
	}
	_, err = u.Me(ctx)
	if e := asError(t, err); e.Code != http.StatusUnauthorized {
		t.Fatalf("deactivated me = %+v", e)
	}
	if err := admin.DeleteUser(ctx, ur.User.ID); err != nil {
		t.Fatal(err)
	}
	_, err = admin.GetUser(ctx, ur.User.ID)
	if e := asError(t, err); e.Kind != "NOT_FOUND" {
		t.Fatalf("deleted user = %+v", e)
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewFileStore(path)
	if _, ok := s.Get(KeyToken); ok {
		t.Fatal("empty store returned a value")
	}
	a := NewAuth(s)
	if err := a.Login("tok", User{ID: "1", Role: RoleAdmin}); err != nil {
		t.Fatal(err)
	}

	again := NewAuth(NewFileStore(path))
	if again.Token() != "tok" || !again.IsAdmin() {
		t.Fatal("session not persisted")
	}
	if again.HasRole() {
		t.Fatal("empty role set must deny")
	}
	if err := again.Logout(); err != nil {
		t.Fatal(err)
	}
	if a.IsAuthenticated() {
		t.Fatal("logout not persisted")
	}
}
