// admin 运维命令行：注册接口只会创建 user 角色，管理员从这里建
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"gin-todo-rpc/internal/core/config"
	"gin-todo-rpc/internal/core/database"
	"gin-todo-rpc/internal/core/logger"
	"gin-todo-rpc/internal/domain"
	"gin-todo-rpc/internal/repo"
	"gin-todo-rpc/pkg/utils"
)

const usage = `usage: admin <command> [flags]

commands:
  create-admin  --email --password --name   create an admin account
  set-role      --email --role              change a user's role (public|user|admin)
  deactivate    --email                     soft-delete a user
  list          [--limit --offset]          list active users and role counts
`

func main() { os.Exit(realMain()) }

// realMain 返回退出码，让 defer 的清理都能执行
func realMain() int {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	if cfg.DB.Driver == "memory" {
		log.Error("admin commands need a persistent db.driver")
		return 1
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       2,
		MaxIdleConns:       1,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                log,
	})
	if err != nil {
		log.Error("db open", zap.Error(err))
		return 1
	}
	defer func() { _ = database.Close(db) }()
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Error("automigrate failed", zap.Error(err))
			return 1
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := run(ctx, os.Args[1:], os.Stdout, repo.NewUserRepo(db)); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

var errUsage = errors.New("invalid usage")

func run(ctx context.Context, args []string, out io.Writer, users domain.UserRepository) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errUsage
	}
	cmd, args := args[0], args[1:]
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(out)

	switch cmd {
	case "create-admin":
		email := fs.String("email", "", "admin email")
		password := fs.String("password", "", "admin password (min 6)")
		name := fs.String("name", "Administrator", "display name")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return createAdmin(ctx, out, users, *email, *password, *name)
	case "set-role":
		email := fs.String("email", "", "user email")
		role := fs.String("role", "", "public|user|admin")
		if err := fs.Parse(args); err != nil {
			return err
		}
		r, ok := domain.ParseRole(*role)
		if !ok {
			return domain.ErrInvalidRole
		}
		return setRole(ctx, out, users, *email, r)
	case "deactivate":
		email := fs.String("email", "", "user email")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return deactivate(ctx, out, users, *email)
	case "list":
		limit := fs.Int("limit", 50, "page size")
		offset := fs.Int("offset", 0, "rows to skip")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return list(ctx, out, users, *limit, *offset)
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func createAdmin(ctx context.Context, out io.Writer, users domain.UserRepository, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 6 {
		return fmt.Errorf("%w: --email and --password (min 6) are required", errUsage)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	// 后台创建的账号视为已验证
	u := &domain.User{
		ID:            utils.NewID(),
		Email:         email,
		Name:          strings.TrimSpace(name),
		PasswordHash:  hash,
		Role:          domain.RoleAdmin,
		EmailVerified: true,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := users.Create(ctx, u); err != nil {
		return err
	}
	fmt.Fprintf(out, "created admin %s (%s)\n", u.Email, u.ID)
	return nil
}

func findByEmail(ctx context.Context, users domain.UserRepository, email string) (*domain.User, error) {
	u, err := users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func setRole(ctx context.Context, out io.Writer, users domain.UserRepository, email string, role domain.Role) error {
	u, err := findByEmail(ctx, users, email)
	if err != nil {
		return err
	}
	if _, err := users.Update(ctx, u.ID, domain.UserPatch{Role: &role}, domain.NextUpdatedAt(time.Now(), u.UpdatedAt)); err != nil {
		return err
	}
	change := "unchanged"
	switch {
	case role.Level() > u.Role.Level():
		change = "promoted"
	case role.Level() < u.Role.Level():
		change = "demoted"
	}
	fmt.Fprintf(out, "%s: %s -> %s (%s)\n", u.Email, u.Role, role, change)
	return nil
}

func deactivate(ctx context.Context, out io.Writer, users domain.UserRepository, email string) error {
	u, err := findByEmail(ctx, users, email)
	if err != nil {
		return err
	}
	inactive := false
	if _, err := users.Update(ctx, u.ID, domain.UserPatch{IsActive: &inactive}, domain.NextUpdatedAt(time.Now(), u.UpdatedAt)); err != nil {
		return err
	}
	fmt.Fprintf(out, "deactivated %s\n", u.Email)
	return nil
}

func list(ctx context.Context, out io.Writer, users domain.UserRepository, limit, offset int) error {
	us, err := users.ListActive(ctx, offset, limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tVERIFIED")
	for _, u := range us {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Email, u.Name, u.Role, u.EmailVerified)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	st, err := users.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "total=%d active=%d inactive=%d", st.Total, st.Active, st.Inactive)
	for _, r := range domain.AllRoles {
		fmt.Fprintf(out, " %s=%d", r, st.ByRole[r])
	}
	fmt.Fprintln(out)
	return nil
}
