package repo

import (
	"errors"
	"testing"
	"time"

	"gin-todo-rpc/internal/domain"
)

func TestUserRepoDuplicateEmail(t *testing.T) {
	users := NewUserRepo(newTestDB(t))
	seedUser(t, users, "u1", "a@x.com", domain.RoleUser)
	seedUser(t, users, "u2", "b@x.com", domain.RoleUser)

	err := users.Create(ctx, &domain.User{ID: "u3", Email: "a@x.com", Name: "dup", Role: domain.RoleUser, IsActive: true, CreatedAt: t0, UpdatedAt: t0})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("create dup err = %v", err)
	}

	taken := "a@x.com"
	if _, err := users.Update(ctx, "u2", domain.UserPatch{Email: &taken}, t0.Add(time.Second)); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("update dup err = %v", err)
	}
}

func TestUserRepoMissingRows(t *testing.T) {
	users := NewUserRepo(newTestDB(t))

	if u, err := users.FindByID(ctx, "ghost"); err != nil || u != nil {
		t.Fatalf("FindByID = %v, %v", u, err)
	}
	name := "x"
	if u, err := users.Update(ctx, "ghost", domain.UserPatch{Name: &name}, t0); err != nil || u != nil {
		t.Fatalf("Update = %v, %v", u, err)
	}
	if ok, err := users.Delete(ctx, "ghost"); err != nil || ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
}

func TestUserRepoUpdateAndActiveFilter(t *testing.T) {
	users := NewUserRepo(newTestDB(t))
	seedUser(t, users, "u1", "a@x.com", domain.RoleUser)

	admin, inactive := domain.RoleAdmin, false
	at := t0.Add(time.Minute)
	u, err := users.Update(ctx, "u1", domain.UserPatch{Role: &admin, IsActive: &inactive}, at)
	if err != nil || u == nil {
		t.Fatalf("Update = %v, %v", u, err)
	}
	if u.Role != domain.RoleAdmin || u.IsActive || !u.UpdatedAt.Equal(at) {
		t.Fatalf("updated user = %+v", u)
	}

	if got, _ := users.FindActiveByEmail(ctx, "a@x.com"); got != nil {
		t.Fatal("inactive user returned by FindActiveByEmail")
	}
	if got, _ := users.FindByEmail(ctx, "a@x.com"); got == nil {
		t.Fatal("FindByEmail should still see inactive user")
	}
	list, err := users.ListActive(ctx, 0, 10)
	if err != nil || len(list) != 0 {
		t.Fatalf("ListActive = %v, %v", list, err)
	}
}

func TestUserRepoStats(t *testing.T) {
	users := NewUserRepo(newTestDB(t))
	seedUser(t, users, "a1", "admin@x.com", domain.RoleAdmin)
	seedUser(t, users, "u1", "u1@x.com", domain.RoleUser)
	seedUser(t, users, "u2", "u2@x.com", domain.RoleUser)
	inactive := false
	if _, err := users.Update(ctx, "u2", domain.UserPatch{IsActive: &inactive}, t0.Add(time.Second)); err != nil {
		t.Fatal(err)
	}

	st, err := users.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 3 || st.Active != 2 || st.Inactive != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if st.ByRole[domain.RoleAdmin] != 1 || st.ByRole[domain.RoleUser] != 2 {
		t.Fatalf("byRole = %v", st.ByRole)
	}
	if n, ok := st.ByRole[domain.RolePublic]; !ok || n != 0 {
		t.Fatalf("public role should be reported as 0: %v", st.ByRole)
	}
}

func TestUserDeleteCascadesTodos(t *testing.T) {
	db := newTestDB(t)
	users, todos := NewUserRepo(db), NewTodoRepo(db)
	seedUser(t, users, "u1", "a@x.com", domain.RoleUser)
	seedUser(t, users, "u2", "b@x.com", domain.RoleUser)
	seedTodo(t, todos, "t1", "u1", 0)
	seedTodo(t, todos, "t2", "u1", time.Second)
	seedTodo(t, todos, "t3", "u2", 2*time.Second)

	if ok, err := users.Delete(ctx, "u1"); err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	n, err := todos.Count(ctx, domain.Unscoped(), nil)
	if err != nil || n != 1 {
		t.Fatalf("remaining todos = %d, %v", n, err)
	}
	if got, _ := todos.Find(ctx, domain.Unscoped(), "t3"); got == nil {
		t.Fatal("other user's todo was removed")
	}
}
