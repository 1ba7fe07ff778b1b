package rpc

import "gin-todo-rpc/internal/domain"

// 每个受保护过程的第一行调用且只调用一个 gate；gate 不修改 ctx

func RequireAuth(ctx Context) (AuthUser, error) {
	if ctx.User == nil {
		return AuthUser{}, Unauthorized("authentication required")
	}
	return *ctx.User, nil
}

func RequireRole(ctx Context, roles ...domain.Role) (AuthUser, error) {
	u, err := RequireAuth(ctx)
	if err != nil {
		return AuthUser{}, err
	}
	if !domain.HasAccess(u.Role, roles...) {
		return AuthUser{}, Forbidden("access denied, required roles: " + domain.JoinRoles(roles))
	}
	return u, nil
}

func RequireAdmin(ctx Context) (AuthUser, error) {
	return RequireRole(ctx, domain.RoleAdmin)
}

func RequireUserOrAdmin(ctx Context) (AuthUser, error) {
	return RequireRole(ctx, domain.RoleUser, domain.RoleAdmin)
}

func IsAuthenticated(ctx Context) bool { return ctx.User != nil }

func HasRole(ctx Context, roles ...domain.Role) bool {
	return ctx.User != nil && domain.HasAccess(ctx.User.Role, roles...)
}

func IsAdmin(ctx Context) bool { return ctx.User != nil && domain.IsAdmin(ctx.User.Role) }

func IsUserOrAdmin(ctx Context) bool { return ctx.User != nil && domain.IsUserOrAdmin(ctx.User.Role) }
