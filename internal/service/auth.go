package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/pkg/utils/apperror"
	"rentdesk_backend/pkg/utils/jwt"
	"rentdesk_backend/pkg/utils/validation"
)

var ErrInvalidCredentials = apperror.Unauthorized("Invalid credentials")

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	store repository.Store
}

func NewAuthService(store repository.Store) *AuthService {
	return &AuthService{store: store}
}

// Login şifreyi doğrular ve bearer token üretir
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, *model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if errs := validation.Struct(in); errs != nil {
		return "", nil, apperror.Validation(errs)
	}

	user, err := s.store.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if isNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// HashPassword bcrypt ile şifreler
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
