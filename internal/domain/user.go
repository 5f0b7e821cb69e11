package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// PublicUser 登录/注册返回的精简视图
type PublicUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

// NewUser 注册时构造，role/isActive 取默认值
func NewUser(firstName, lastName, email, passwordHash string) *User {
	return &User{
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		IsActive:     true,
	}
}

// UserPatch 管理端可改字段
type UserPatch struct {
	FirstName *string    `json:"firstName" binding:"omitnil,min=1"`
	LastName  *string    `json:"lastName"  binding:"omitnil,min=1"`
	Email     *string    `json:"email"     binding:"omitnil,email"`
	Role      *Role      `json:"role"`
	IsActive  *bool      `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin"`
}

func (u *UserPatch) Apply(x *User) {
	if u.FirstName != nil {
		x.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		x.LastName = *u.LastName
	}
	if u.Email != nil {
		x.Email = NormalizeEmail(*u.Email)
	}
	if u.Role != nil {
		x.Role = *u.Role
	}
	if u.IsActive != nil {
		x.IsActive = *u.IsActive
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		x.LastLogin = &t
	}
}

func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
