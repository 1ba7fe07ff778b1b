package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"gin-todo-rpc/internal/core/cache"
	"gin-todo-rpc/internal/domain"
)

type ProfilePatch struct {
	Name  *string
	Email *string
}

type UserService struct {
	users    domain.UserRepository
	cache    *cache.Cache
	statsTTL time.Duration
	log      *zap.Logger
	now      Clock
}

func NewUserService(users domain.UserRepository, c *cache.Cache, statsTTL time.Duration, log *zap.Logger, now Clock) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if statsTTL <= 0 {
		statsTTL = 30 * time.Second
	}
	return &UserService{users: users, cache: c, statsTTL: statsTTL, log: log, now: now}
}

func (s *UserService) load(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) Profile(ctx context.Context, uid string) (domain.PublicUser, error) {
	u, err := s.load(ctx, uid)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return u.Public(), nil
}

// UpdateProfile 改邮箱后需要重新验证
func (s *UserService) UpdateProfile(ctx context.Context, uid string, in ProfilePatch) (domain.PublicUser, error) {
	cur, err := s.load(ctx, uid)
	if err != nil {
		return domain.PublicUser{}, err
	}
	var p domain.UserPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		p.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != cur.Email {
			unverified := false
			p.Email = &email
			p.EmailVerified = &unverified
		}
	}
	return s.apply(ctx, cur, p)
}

func (s *UserService) apply(ctx context.Context, cur *domain.User, p domain.UserPatch) (domain.PublicUser, error) {
	u, err := s.users.Update(ctx, cur.ID, p, stamp(s.now, cur.UpdatedAt))
	if err != nil {
		return domain.PublicUser{}, err
	}
	if u == nil {
		return domain.PublicUser{}, domain.ErrUserNotFound
	}
	return u.Public(), nil
}

// List 只列活跃用户，按注册时间升序
func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.PublicUser, error) {
	us, err := s.users.ListActive(ctx, clampOffset(offset), clampLimit(limit))
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicUser, 0, len(us))
	for i := range us {
		out = append(out, us[i].Public())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id string) (domain.PublicUser, error) {
	return s.Profile(ctx, id)
}

func (s *UserService) UpdateRole(ctx context.Context, id string, role domain.Role) (domain.PublicUser, error) {
	if !role.Valid() {
		return domain.PublicUser{}, domain.ErrInvalidRole
	}
	cur, err := s.load(ctx, id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	out, err := s.apply(ctx, cur, domain.UserPatch{Role: &role})
	if err != nil {
		return domain.PublicUser{}, err
	}
	s.invalidateStats(ctx)
	return out, nil
}

// Deactivate 软删除；已停用的再次停用也算成功
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	cur, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	inactive := false
	if _, err := s.apply(ctx, cur, domain.UserPatch{IsActive: &inactive}); err != nil {
		return err
	}
	s.invalidateStats(ctx)
	return nil
}

// Delete 物理删除，todos 级联删除
func (s *UserService) Delete(ctx context.Context, id string) error {
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	s.invalidateStats(ctx)
	return nil
}

// Stats 走缓存，写操作后失效
func (s *UserService) Stats(ctx context.Context) (domain.UserStats, error) {
	return cache.LoadJSON(ctx, s.cache, userStatsKey, s.statsTTL, s.users.Stats)
}

func (s *UserService) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, userStatsKey); err != nil {
		s.log.Warn("invalidate user stats", zap.Error(err))
	}
}
