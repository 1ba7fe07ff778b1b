package domain

// Scope 仓储层的归属过滤。普通路径必须用 OwnedBy，只有 admin 路径用 Unscoped
type Scope struct {
	userID   string
	unscoped bool
}

func OwnedBy(userID string) Scope { return Scope{userID: userID} }

func Unscoped() Scope { return Scope{unscoped: true} }

func (s Scope) IsUnscoped() bool { return s.unscoped }

func (s Scope) UserID() string { return s.userID }

// Allows 内存实现用；空 userID 的 OwnedBy 不匹配任何行
func (s Scope) Allows(ownerID string) bool {
	if s.unscoped {
		return true
	}
	return s.userID != "" && s.userID == ownerID
}
