package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gin-todo-rpc/internal/core/database"
	"gin-todo-rpc/internal/domain"
)

var ctx = context.Background()

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// newTestDB 每个测试一个独立的 sqlite 文件，打开外键并走真实迁移
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "repo.db") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, users *UserRepo, id, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:        id,
		Email:     email,
		Name:      id,
		Role:      role,
		IsActive:  true,
		CreatedAt: t0,
		UpdatedAt: t0,
	}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}

func seedTodo(t *testing.T, todos *TodoRepo, id, owner string, offset time.Duration) *domain.Todo {
	t.Helper()
	td := &domain.Todo{
		ID:        id,
		Name:      id,
		Priority:  domain.PriorityMedium,
		UserID:    owner,
		CreatedAt: t0.Add(offset),
		UpdatedAt: t0.Add(offset),
	}
	if err := todos.Create(ctx, td); err != nil {
		t.Fatalf("seed todo %s: %v", id, err)
	}
	return td
}
