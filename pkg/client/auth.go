package client

import "encoding/json"

const (
	RolePublic = "public"
	RoleUser   = "user"
	RoleAdmin  = "admin"
)

// Auth 本地登录态；角色判断只用于界面条件渲染，服务端仍会再校验
type Auth struct{ store TokenStore }

func NewAuth(store TokenStore) *Auth {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Auth{store: store}
}

func (a *Auth) Login(token string, u User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := a.store.Set(KeyToken, token); err != nil {
		return err
	}
	return a.store.Set(KeyUser, string(b))
}

func (a *Auth) Logout() error {
	if err := a.store.Remove(KeyToken); err != nil {
		return err
	}
	return a.store.Remove(KeyUser)
}

func (a *Auth) Token() string {
	t, _ := a.store.Get(KeyToken)
	return t
}

func (a *Auth) IsAuthenticated() bool { return a.Token() != "" }

func (a *Auth) CurrentUser() (*User, bool) {
	raw, ok := a.store.Get(KeyUser)
	if !ok || raw == "" {
		return nil, false
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, false
	}
	return &u, true
}

// HasRole roles 为空时返回 false
func (a *Auth) HasRole(roles ...string) bool {
	u, ok := a.CurrentUser()
	if !ok {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (a *Auth) IsAdmin() bool { return a.HasRole(RoleAdmin) }

func (a *Auth) IsUserOrAdmin() bool { return a.HasRole(RoleUser, RoleAdmin) }
