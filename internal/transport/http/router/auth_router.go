package router

import (
	"gin-todo-rpc/internal/domain"
	"gin-todo-rpc/internal/service"
	"gin-todo-rpc/internal/transport/http/rpc"
)

type authModule struct{ svc *service.AuthService }

func (authModule) Namespace() string { return "auth" }
func (authModule) Priority() int     { return 10 }

type registerInput struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128" redact:"true"`
	Name     string `json:"name" binding:"required,min=2,max=255"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128" redact:"true"`
}

type verifyEmailInput struct {
	Token string `json:"token" binding:"required" redact:"true"`
}

func (m authModule) Mount(r *rpc.Router) {
	rpc.Mutation(r, "auth.register", false, func(ctx rpc.Context, in *registerInput) (*service.AuthResult, error) {
		return m.svc.Register(ctx.Ctx(), in.Email, in.Password, in.Name)
	})

	rpc.Mutation(r, "auth.login", false, func(ctx rpc.Context, in *loginInput) (*service.AuthResult, error) {
		return m.svc.Login(ctx.Ctx(), in.Email, in.Password)
	})

	rpc.Query(r, "auth.me", true, func(ctx rpc.Context, _ *struct{}) (domain.Identity, error) {
		u, err := rpc.RequireAuth(ctx)
		if err != nil {
			return domain.Identity{}, err
		}
		return m.svc.Me(u), nil
	})

	rpc.Mutation(r, "auth.verifyEmail", false, func(ctx rpc.Context, in *verifyEmailInput) (bool, error) {
		return m.svc.VerifyEmail(ctx.Ctx(), in.Token)
	})
}
