package service

import (
	"context"
	"errors"

	"github.com/venuebook/venuebook-backend/config"
	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/internal/app/repository"
	"github.com/venuebook/venuebook-backend/pkg/redis"
	"github.com/venuebook/venuebook-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService issues and revokes tokens for the vendor and review surfaces.
type AuthService struct {
	userRepo repository.UserRepository
	jwtCfg   config.JWTConfig
}

func NewAuthService(userRepo repository.UserRepository, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{userRepo: userRepo, jwtCfg: jwtCfg}
}

func (s *AuthService) Register(ctx context.Context, email, password, name, phone string, role model.UserRole) (*model.User, error) {
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	if role != model.RoleUser && role != model.RoleVendor {
		// Admin accounts are provisioned out of band.
		role = model.RoleUser
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Phone:        phone,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, *util.TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtCfg.Secret,
		s.jwtCfg.AccessTokenExpiry,
		s.jwtCfg.RefreshTokenExpiry,
	)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Logout blacklists the access token for its remaining lifetime. Without a
// Redis connection logout is a no-op on the server side.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if redis.GetClient() == nil {
		return nil
	}
	return redis.BlacklistToken(ctx, token, s.jwtCfg.AccessTokenExpiry)
}
