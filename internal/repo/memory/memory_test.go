package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"gin-todo-rpc/internal/domain"
)

var ctx = context.Background()

func seedUser(t *testing.T, s *Store, id, email string) {
	t.Helper()
	err := s.Users().Create(ctx, &domain.User{ID: id, Email: email, Name: id, Role: domain.RoleUser, IsActive: true, CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestUserEmailUnique(t *testing.T) {
	s := New()
	seedUser(t, s, "u1", "a@x.com")
	err := s.Users().Create(ctx, &domain.User{ID: "u2", Email: "A@x.com"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("err = %v", err)
	}
	st, _ := s.Users().Stats(ctx)
	if st.Total != 1 {
		t.Fatalf("total = %d", st.Total)
	}
}

func TestTodoRequiresOwner(t *testing.T) {
	s := New()
	err := s.Todos().Create(ctx, &domain.Todo{ID: "t1", UserID: "ghost"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestScopedAccess(t *testing.T) {
	s := New()
	seedUser(t, s, "u1", "a@x.com")
	seedUser(t, s, "u2", "b@x.com")
	if err := s.Todos().Create(ctx, &domain.Todo{ID: "t1", UserID: "u1", Name: "x"}); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Todos().Find(ctx, domain.OwnedBy("u2"), "t1"); got != nil {
		t.Fatal("other owner must not see todo")
	}
	if got, _ := s.Todos().Find(ctx, domain.Unscoped(), "t1"); got == nil {
		t.Fatal("unscoped should see todo")
	}
	if ok, _ := s.Todos().Delete(ctx, domain.OwnedBy("u2"), "t1"); ok {
		t.Fatal("other owner must not delete todo")
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := New()
	seedUser(t, s, "u1", "a@x.com")
	_ = s.Todos().Create(ctx, &domain.Todo{ID: "t1", UserID: "u1"})
	_ = s.Todos().Create(ctx, &domain.Todo{ID: "t2", UserID: "u1"})
	ok, err := s.Users().Delete(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	n, _ := s.Todos().Count(ctx, domain.Unscoped(), nil)
	if n != 0 {
		t.Fatalf("todos left after cascade: %d", n)
	}
}

func TestListOrderingAndPaging(t *testing.T) {
	s := New()
	seedUser(t, s, "u1", "a@x.com")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		_ = s.Todos().Create(ctx, &domain.Todo{ID: id, UserID: "u1", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	got, _ := s.Todos().List(ctx, domain.TodoQuery{Scope: domain.OwnedBy("u1"), Limit: 2})
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("unexpected page: %+v", got)
	}
	got, _ = s.Todos().List(ctx, domain.TodoQuery{Scope: domain.OwnedBy("u1"), Offset: 5})
	if len(got) != 0 {
		t.Fatalf("expected empty page, got %d", len(got))
	}
}
