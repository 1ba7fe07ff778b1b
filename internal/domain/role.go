package domain

import "strings"

// Role 访问控制标签：public < user < admin
type Role string

const (
	RolePublic Role = "public"
	RoleUser   Role = "user"
	RoleAdmin  Role = "admin"
)

// AllRoles 按权限从低到高
var AllRoles = []Role{RolePublic, RoleUser, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RolePublic, RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Level 未定义角色返回 -1
func (r Role) Level() int {
	switch r {
	case RolePublic:
		return 0
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	}
	return -1
}

func (r Role) String() string { return string(r) }

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// HasAccess role 在 allowed 中才返回 true；allowed 为空一律拒绝
func HasAccess(role Role, allowed ...Role) bool {
	if !role.Valid() {
		return false
	}
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

func IsAdmin(role Role) bool { return role == RoleAdmin }

func IsUserOrAdmin(role Role) bool { return HasAccess(role, RoleUser, RoleAdmin) }

// HasPublicAccess 任何已定义角色都至少是 public
func HasPublicAccess(role Role) bool { return HasAccess(role, AllRoles...) }

// JoinRoles 用于错误信息
func JoinRoles(roles []Role) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ", ")
}
