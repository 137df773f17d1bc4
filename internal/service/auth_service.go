package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/config"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/entity"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/middleware"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
)

// AuthService credential checks, token minting, profile management,
// and first-run bootstrap.
type AuthService struct {
	users *repository.UserRepository
	jwt   config.JWTConfig
}

func NewAuthService(users *repository.UserRepository, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{users: users, jwt: jwtCfg}
}

// TokenResponse OAuth2-style token payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login verifies credentials and mints a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: incorrect username or password", ErrUnauthorized)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: incorrect username or password", ErrUnauthorized)
	}

	token, err := s.mintToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.jwt.ExpireTime.Seconds()),
	}, nil
}

func (s *AuthService) mintToken(user *entity.User) (string, error) {
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			Issuer:    s.jwt.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwt.ExpireTime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwt.Secret))
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, userID uint) (*entity.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateMeInput profile self-update. Password change requires the
// current password.
type UpdateMeInput struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *AuthService) UpdateMe(ctx context.Context, userID uint, in UpdateMeInput) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.FullName != "" {
		user.FullName = in.FullName
	}
	if in.Email != "" && in.Email != user.Email {
		if existing, err := s.users.FindByEmail(ctx, in.Email); err == nil && existing.ID != userID {
			return nil, fmt.Errorf("%w: email already in use", ErrConflict)
		}
		user.Email = in.Email
	}
	if in.NewPassword != "" {
		if len(in.NewPassword) < 8 {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
			return nil, fmt.Errorf("%w: current password is incorrect", ErrUnauthorized)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetupInput first-run super admin bootstrap.
type SetupInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

// Initialize creates the first super admin. Refused once any user exists.
func (s *AuthService) Initialize(ctx context.Context, in SetupInput) (*entity.User, error) {
	total, err := s.users.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	if total > 0 {
		return nil, fmt.Errorf("%w: system is already initialized", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: string(hash),
		Role:         entity.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// IsInitialized reports whether any account exists.
func (s *AuthService) IsInitialized(ctx context.Context) (bool, error) {
	total, err := s.users.Count(ctx, "")
	if err != nil {
		return false, err
	}
	return total > 0, nil
}
