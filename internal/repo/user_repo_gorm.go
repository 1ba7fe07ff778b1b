package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"gin-todo-rpc/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Omit("Todos").Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepo) first(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) FindActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ? AND is_active = ?", email, true)
}

func (r *UserRepo) ListActive(ctx context.Context, offset, limit int) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *UserRepo) Update(ctx context.Context, id string, p domain.UserPatch, at time.Time) (*domain.User, error) {
	set := map[string]any{"updated_at": at}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.PasswordHash != nil {
		set["password"] = *p.PasswordHash
	}
	if p.Role != nil {
		set["role"] = *p.Role
	}
	if p.EmailVerified != nil {
		set["email_verified"] = *p.EmailVerified
	}
	if p.IsActive != nil {
		set["is_active"] = *p.IsActive
	}

	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(set)
	if res.Error != nil {
		if isDupKey(res.Error) {
			return nil, domain.ErrEmailTaken
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// Delete 物理删除，todos 由外键级联删除
func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *UserRepo) Stats(ctx context.Context) (domain.UserStats, error) {
	type row struct {
		Role     domain.Role
		IsActive bool
		N        int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Select("role, is_active, COUNT(*) AS n").
		Group("role, is_active").
		Scan(&rows).Error
	if err != nil {
		return domain.UserStats{}, err
	}

	st := newUserStats()
	for _, rw := range rows {
		st.Total += rw.N
		if rw.IsActive {
			st.Active += rw.N
		} else {
			st.Inactive += rw.N
		}
		st.ByRole[rw.Role] += rw.N
	}
	return st, nil
}

func newUserStats() domain.UserStats {
	st := domain.UserStats{ByRole: make(map[domain.Role]int64, len(domain.AllRoles))}
	for _, r := range domain.AllRoles {
		st.ByRole[r] = 0
	}
	return st
}
