package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"vendorhub/internal/model"
	"vendorhub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// --- DTOs ---

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateUserDTO struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type AuthResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

// --- Interface ---

type UserService interface {
	Login(ctx context.Context, req LoginDTO) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	CreateUser(ctx context.Context, req CreateUserDTO) (*UserResponse, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// --- Helpers ---

func validUserRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleProcurement
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

func signAccessToken(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}
	return token.SignedString([]byte(secret))
}

func newRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*AuthResponse, error) {
	accessToken, err := signAccessToken(user)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveRefreshToken(ctx, &model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		User:         toUserResponse(user),
	}, nil
}

// --- Implementation ---

func (s *userService) Login(ctx context.Context, req LoginDTO) (*AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, model.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, model.ErrUnauthorized
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	rt, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if time.Now().After(rt.ExpiresAt) {
		return nil, model.ErrUnauthorized
	}

	// Rotate: invalidate every outstanding token before issuing a new pair.
	if err := s.repo.DeleteRefreshTokensByUser(ctx, rt.UserID); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh tokens: %w", err)
	}
	return s.issueTokens(ctx, &rt.User)
}

func (s *userService) Logout(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return model.ErrUnauthorized
	}
	return s.repo.DeleteRefreshTokensByUser(ctx, uid)
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	user, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	res := toUserResponse(user)
	return &res, nil
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserDTO) (*UserResponse, error) {
	if !validUserRole(req.Role) {
		return nil, validationErr("role must be admin or procurement")
	}
	if !validEmail(req.Email) {
		return nil, validationErr("email is not a valid address")
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, validationErr("email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	res := toUserResponse(user)
	return &res, nil
}
