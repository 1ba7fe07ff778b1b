package router

import (
	"gin-todo-rpc/internal/domain"
	"gin-todo-rpc/internal/service"
	"gin-todo-rpc/internal/transport/http/rpc"
)

type userModule struct{ svc *service.UserService }

func (userModule) Namespace() string { return "user" }
func (userModule) Priority() int     { return 30 }

type updateProfileInput struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=255"`
	Email *string `json:"email" binding:"omitempty,email,max=255"`
}

type userIDInput struct {
	ID string `json:"id" binding:"required,uuid"`
}

type updateRoleInput struct {
	ID   string      `json:"id" binding:"required,uuid"`
	Role domain.Role `json:"role" binding:"required,oneof=public user admin"`
}

func (m userModule) Mount(r *rpc.Router) {
	rpc.Query(r, "user.getProfile", true, func(ctx rpc.Context, _ *struct{}) (domain.PublicUser, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return domain.PublicUser{}, err
		}
		return m.svc.Profile(ctx.Ctx(), u.ID)
	})

	rpc.Mutation(r, "user.updateProfile", true, func(ctx rpc.Context, in *updateProfileInput) (domain.PublicUser, error) {
		u, err := rpc.RequireUserOrAdmin(ctx)
		if err != nil {
			return domain.PublicUser{}, err
		}
		return m.svc.UpdateProfile(ctx.Ctx(), u.ID, service.ProfilePatch{Name: in.Name, Email: in.Email})
	})

	rpc.Query(r, "user.getAllUsers", true, func(ctx rpc.Context, in *pageInput) ([]domain.PublicUser, error) {
		if _, err := rpc.RequireAdmin(ctx); err != nil {
			return nil, err
		}
		return m.svc.List(ctx.Ctx(), in.Limit, in.Offset)
	})

	rpc.Query(r, "user.getUserById", true, func(ctx rpc.Context, in *userIDInput) (domain.PublicUser, error) {
		if _, err := rpc.RequireAdmin(ctx); err != nil {
			return domain.PublicUser{}, err
		}
		return m.svc.Get(ctx.Ctx(), in.ID)
	})

	rpc.Mutation(r, "user.updateUserRole", true, func(ctx rpc.Context, in *updateRoleInput) (domain.PublicUser, error) {
		if _, err := rpc.RequireAdmin(ctx); err != nil {
			return domain.PublicUser{}, err
		}
		return m.svc.UpdateRole(ctx.Ctx(), in.ID, in.Role)
	})

	rpc.Mutation(r, "user.deactivateUser", true, func(ctx rpc.Context, in *userIDInput) (bool, error) {
		if _, err := rpc.RequireAdmin(ctx); err != nil {
			return false, err
		}
		if err := m.svc.Deactivate(ctx.Ctx(), in.ID); err != nil {
			return false, err
		}
		return true, nil
	})

	rpc.Query(r, "user.getUserStats", true, func(ctx rpc.Context, _ *struct{}) (domain.UserStats, error) {
		if _, err := rpc.RequireAdmin(ctx); err != nil {
			return domain.UserStats{}, err
		}
		return m.svc.Stats(ctx.Ctx())
	})

	rpc.Mutation(r, "user.deleteUser", true, func(ctx rpc.Context, in *userIDInput) (bool, error) {
		if _, err := rpc.RequireAdmin(ctx); err != nil {
			return false, err
		}
		if err := m.svc.Delete(ctx.Ctx(), in.ID); err != nil {
			return false, err
		}
		return true, nil
	})
}
