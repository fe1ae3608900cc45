package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/materials-service/internal/models"
	"github.com/SAP-F-2025/materials-service/internal/repositories"
	"github.com/SAP-F-2025/materials-service/internal/validator"
)

const resetTokenTTL = 10 * time.Minute

type authService struct {
	repo      repositories.Repository
	tokens    TokenService
	events    NotificationEventService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(
	repo repositories.Repository,
	tokens TokenService,
	events NotificationEventService,
	logger *slog.Logger,
	validator *validator.Validator,
) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		events:    events,
		logger:    logger,
		validator: validator,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateRegister(req); len(errs) > 0 {
		return nil, errs
	}

	// Email is stored lowercase; duplicate detection is therefore
	// case-insensitive by construction.
	email := strings.ToLower(strings.TrimSpace(req.Email))

	taken, err := s.repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("email check failed: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("password hashing failed: %w", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	// Admin accounts are provisioned out of band, never via signup.
	if role == models.RoleAdmin {
		role = models.RoleStudent
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hash),
		Role:     role,
		Status:   models.StatusActive,
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)

	if err := s.events.UserRegistered(ctx, user); err != nil {
		s.logger.Error("Failed to publish user registered event", "error", err, "user_id", user.ID)
	}

	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.CanLogin() {
		return nil, ErrAccountNotActive
	}

	now := time.Now()
	if err := s.repo.User().UpdateLastLogin(ctx, nil, user.ID, now); err != nil {
		// Login still succeeds; the timestamp is bookkeeping.
		s.logger.Error("Failed to update last login", "error", err, "user_id", user.ID)
	}
	user.LastLogin = &now

	s.logger.Info("User logged in", "user_id", user.ID)

	return s.issueToken(user)
}

func (s *authService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// ForgotPassword issues an opaque reset token. The token is returned to
// the caller for delivery; this service does not send mail itself.
func (s *authService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) (string, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return "", errs
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	expire := time.Now().Add(resetTokenTTL)
	if err := s.repo.User().SetResetPasswordToken(ctx, nil, user.ID, token, expire); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	s.logger.Info("Password reset token issued", "user_id", user.ID)
	return token, nil
}

func (s *authService) ResetPassword(ctx context.Context, token string, req *ResetPasswordRequest) (*AuthResponse, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByResetPasswordToken(ctx, nil, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("failed to load user by reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("password hashing failed: %w", err)
	}

	user.Password = string(hash)
	user.ResetPasswordToken = nil
	user.ResetPasswordExpire = nil

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password reset completed", "user_id", user.ID)
	return s.issueToken(user)
}

func (s *authService) issueToken(user *models.User) (*AuthResponse, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResponse{
		Token:     token,
		ExpiresIn: int64(s.tokens.Expiry().Seconds()),
		User:      user,
	}, nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
