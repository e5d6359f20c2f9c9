package service

import (
	"context"
	"strings"

	"sweetshop-api/internal/core/auth"
	"sweetshop-api/internal/domain"
	"sweetshop-api/pkg/utils"
)

type AuthService struct {
	users domain.UserRepository
	jwter *auth.JWTer
}

func NewAuthService(users domain.UserRepository, jwter *auth.JWTer) *AuthService {
	return &AuthService{users: users, jwter: jwter}
}

// Register 注册成功不发令牌，登录才发
func (s *AuthService) Register(ctx context.Context, username, email, password, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := domain.ValidateRegister(username, email, password, role); err != nil {
		return nil, err
	}
	if role == "" {
		role = domain.RoleUser
	}
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: utils.HashPassword(password),
		Role:         role,
	}
	// 并发兜底：唯一索引冲突由 repo 映射为 ErrEmailTaken
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 查不到用户和密码不符走同一个错误，避免枚举邮箱
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}
	return s.jwter.Issue(u.ID, u.Role)
}

func (s *AuthService) Me(ctx context.Context, uid string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}
