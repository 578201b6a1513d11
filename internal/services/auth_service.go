package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
)

// LoginResult bundles the issued token pair with the authenticated user.
type LoginResult struct {
	AccessToken  string       `json:"access"`
	RefreshToken string       `json:"refresh"`
	User         *models.User `json:"user"`
}

// UpdateProfileInput carries the self-editable account fields. Nil pointers
// leave the current value untouched.
type UpdateProfileInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

type AuthService struct {
	users     *repository.UserRepository
	tokens    *TokenService
	passwords *PasswordService
	logger    *logrus.Logger
}

func NewAuthService(users *repository.UserRepository, tokens *TokenService, passwords *PasswordService, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Login verifies credentials and issues a token pair. Unknown email, wrong
// password and deactivated account all fail with the same message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, NewValidationError("email", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewPermissionError("invalid email or password")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive || !s.passwords.Check(user.PasswordHash, password) {
		return nil, NewPermissionError("invalid email or password")
	}

	session := &models.TokenSession{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTTL()),
		IsActive:  true,
	}
	if err := s.users.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	access, refresh, err := s.tokens.GeneratePair(user, session.ID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User logged in")

	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Logout revokes the refresh session behind the given token. A malformed
// token is a validation error, not a server fault.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return NewValidationError("refresh", "refresh token is required")
	}
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return NewValidationError("refresh", "invalid refresh token")
	}

	if err := s.users.DeactivateSession(ctx, claims.SessionID); err != nil {
		return err
	}
	s.tokens.RevokeSession(ctx, claims.SessionID, claims.ExpiresAt.Time)

	s.logger.WithField("user_id", claims.UserID).Info("User logged out")
	return nil
}

// Refresh rotates a valid refresh token into a new pair. The old session is
// deactivated so each refresh token is single-use.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, NewValidationError("refresh", "refresh token is required")
	}
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, NewPermissionError("invalid refresh token")
	}
	if s.tokens.IsSessionRevoked(ctx, claims.SessionID) {
		return nil, NewPermissionError("refresh token revoked")
	}

	session, err := s.users.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewPermissionError("refresh token revoked")
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !session.IsActive || session.ExpiresAt.Before(time.Now()) {
		return nil, NewPermissionError("refresh token revoked")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, NewPermissionError("invalid refresh token")
	}
	if !user.IsActive {
		return nil, NewPermissionError("account is disabled")
	}

	if err := s.users.DeactivateSession(ctx, session.ID); err != nil {
		return nil, err
	}
	newSession := &models.TokenSession{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTTL()),
		IsActive:  true,
	}
	if err := s.users.CreateSession(ctx, newSession); err != nil {
		return nil, err
	}

	access, refresh, err := s.tokens.GeneratePair(user, newSession.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// UpdateProfile updates the caller's own name and phone.
func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, input UpdateProfileInput) (*models.User, error) {
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the old password before setting the new one.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error {
	if newPassword == "" {
		return NewValidationError("new_password", "new password is required")
	}
	if len(newPassword) < 8 {
		return NewValidationError("new_password", "password must be at least 8 characters")
	}
	if !s.passwords.Check(user.PasswordHash, oldPassword) {
		return NewValidationError("old_password", "old password is incorrect")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.WithField("user_id", user.ID).Info("Password changed")
	return nil
}
