package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"gin-todo-rpc/internal/core/auth"
	"gin-todo-rpc/internal/core/cache"
	"gin-todo-rpc/internal/domain"
	"gin-todo-rpc/pkg/utils"
)

// Mailer 为 nil 时不发验证邮件
type Mailer interface {
	SendVerification(ctx context.Context, to, name, link string) error
}

type AuthResult struct {
	AccessToken string            `json:"access_token"`
	User        domain.PublicUser `json:"user"`
}

type AuthService struct {
	users     domain.UserRepository
	jwt       *auth.JWTer
	cache     *cache.Cache
	mailer    Mailer
	verifyURL string
	verifyTTL time.Duration
	log       *zap.Logger
	now       Clock
}

type AuthOption func(*AuthService)

func WithMailer(m Mailer, verifyURL string, ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		s.mailer = m
		s.verifyURL = verifyURL
		s.verifyTTL = ttl
	}
}

func WithAuthClock(c Clock) AuthOption { return func(s *AuthService) { s.now = c } }

func WithAuthLogger(l *zap.Logger) AuthOption { return func(s *AuthService) { s.log = l } }

func NewAuthService(users domain.UserRepository, jwt *auth.JWTer, c *cache.Cache, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:     users,
		jwt:       jwt,
		cache:     c,
		verifyTTL: 24 * time.Hour,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register 新用户固定为 user 角色，admin 只能通过 cmd/admin 创建
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	exist, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// 并发注册由唯一索引兜底，仓储返回 ErrEmailTaken
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, userStatsKey); err != nil {
		s.log.Warn("invalidate user stats", zap.Error(err))
	}

	s.sendVerification(u)
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.FindActiveByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(u)
}

// Me 直接返回上下文里的身份投影，不再查库
func (s *AuthService) Me(id domain.Identity) domain.Identity { return id }

// VerifyEmail token 里的邮箱和当前邮箱不一致（期间改过邮箱）视为无效
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (bool, error) {
	c, err := s.jwt.ParsePurpose(token, auth.PurposeVerifyEmail)
	if err != nil {
		return false, domain.ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, c.Subject)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, domain.ErrUserNotFound
	}
	if !strings.EqualFold(u.Email, c.Email) {
		return false, domain.ErrInvalidToken
	}
	if u.EmailVerified {
		return true, nil
	}
	verified := true
	if _, err := s.users.Update(ctx, u.ID, domain.UserPatch{EmailVerified: &verified}, stamp(s.now, u.UpdatedAt)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) issue(u *domain.User) (*AuthResult, error) {
	tok, err := s.jwt.Issue(u.ID, u.Email, u.Name, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: tok, User: u.Public()}, nil
}

func (s *AuthService) sendVerification(u *domain.User) {
	if s.mailer == nil {
		return
	}
	tok, err := s.jwt.IssueVerifyEmail(u.ID, u.Email, s.verifyTTL)
	if err != nil {
		s.log.Error("issue verify token", zap.String("user_id", u.ID), zap.Error(err))
		return
	}
	link := verifyLink(s.verifyURL, tok)
	to, name := u.Email, u.Name

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.mailer.SendVerification(ctx, to, name, link); err != nil {
			s.log.Warn("send verification mail", zap.String("to", to), zap.Error(err))
		}
	}()
}

func verifyLink(base, token string) string {
	if base == "" {
		return token
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
