package domain

import (
	"context"
	"time"
)

type User struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)"`
	Email         string    `gorm:"uniqueIndex;size:255;not null"`
	Name          string    `gorm:"size:255;not null"`
	PasswordHash  string    `gorm:"column:password;size:255;not null"`
	Role          Role      `gorm:"size:16;not null;default:user;index"`
	EmailVerified bool      `gorm:"not null;default:false"`
	IsActive      bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time `gorm:"not null;index"`
	UpdatedAt     time.Time `gorm:"not null"`

	Todos []Todo `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string { return "users" }

// PublicUser 对外视图，不含密码
type PublicUser struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          Role      `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// Identity 请求上下文里携带的最小用户投影
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// UserPatch nil 字段不更新
type UserPatch struct {
	Email         *string
	Name          *string
	PasswordHash  *string
	Role          *Role
	EmailVerified *bool
	IsActive      *bool
}

type UserStats struct {
	Total    int64          `json:"total"`
	Active   int64          `json:"active"`
	Inactive int64          `json:"inactive"`
	ByRole   map[Role]int64 `json:"byRole"`
}

// UserRepository 查不到时返回 (nil, nil)
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindActiveByEmail(ctx context.Context, email string) (*User, error)
	ListActive(ctx context.Context, offset, limit int) ([]User, error)
	Update(ctx context.Context, id string, p UserPatch, at time.Time) (*User, error)
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (UserStats, error)
}
