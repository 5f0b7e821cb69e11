package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"scentify/internal/core/auth"
	"scentify/internal/core/errs"
	"scentify/internal/domain"
	"scentify/pkg/utils"
)

type SignupInput struct {
	FirstName string `json:"firstName" binding:"required,min=2"`
	LastName  string `json:"lastName"  binding:"required,min=2"`
	Email     string `json:"email"     binding:"required,email"`
	Password  string `json:"password"  binding:"required,min=8"`
}

type SigninInput struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	User  domain.PublicUser `json:"user"`
	Token string            `json:"token"`
}

type AuthService struct {
	users domain.UserRepository
	jwt   *auth.JWTer
	log   *zap.Logger
	now   func() time.Time
}

func NewAuthService(users domain.UserRepository, j *auth.JWTer, l *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: j, log: l, now: time.Now}
}

func (s *AuthService) issue(u *domain.User) (*AuthResult, error) {
	tok, err := s.jwt.Issue(u.ID, u.Email)
	if err != nil {
		return nil, errs.Internal("Internal server error", err)
	}
	return &AuthResult{User: u.Public(), Token: tok}, nil
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	s.log.Info("signing up user", zap.String("email", in.Email))
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, errs.Internal("Internal server error", err)
	}
	u := domain.NewUser(in.FirstName, in.LastName, in.Email, hash)
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			s.log.Warn("email already exists", zap.String("email", u.Email))
			return nil, errs.Conflict("Email already exists")
		}
		return nil, err
	}
	s.log.Info("user created", zap.String("userId", u.ID))
	return s.issue(u)
}

// Signin 未知邮箱与密码错误返回同一提示；lastLogin 写失败只记日志
func (s *AuthService) Signin(ctx context.Context, in SigninInput) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
		s.log.Info("signin rejected", zap.String("email", domain.NormalizeEmail(in.Email)))
		return nil, errs.Unauthorized("Invalid email or password")
	}

	now := s.now().UTC()
	if _, err := s.users.Update(ctx, u.ID, &domain.UserPatch{LastLogin: &now}); err != nil {
		s.log.Warn("record last login", zap.String("userId", u.ID), zap.Error(err))
	} else {
		u.LastLogin = &now
	}
	return s.issue(u)
}

// Verify 供 AuthJWT 中间件使用
func (s *AuthService) Verify(token string) (*auth.Claims, error) {
	c, err := s.jwt.Parse(token)
	if err != nil {
		return nil, errs.Unauthorized("Invalid or expired token")
	}
	return c, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.PublicUser, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.Unauthorized("Invalid token")
	}
	pu := u.Public()
	return &pu, nil
}
