package service

import (
	"context"
	"log"

	"github.com/dukahub/pos-api/internal/domain/entity"
	"github.com/dukahub/pos-api/internal/domain/enum"
	"github.com/dukahub/pos-api/internal/domain/repository"
	"github.com/dukahub/pos-api/pkg/apperror"
	"github.com/dukahub/pos-api/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo         repository.UserRepository
	loginHistoryRepo repository.LoginHistoryRepository
	settingsRepo     repository.SettingsRepository
	notificationRepo repository.NotificationRepository
	jwtManager       *utils.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	loginHistoryRepo repository.LoginHistoryRepository,
	settingsRepo repository.SettingsRepository,
	notificationRepo repository.NotificationRepository,
	jwtManager *utils.JWTManager,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		loginHistoryRepo: loginHistoryRepo,
		settingsRepo:     settingsRepo,
		notificationRepo: notificationRepo,
		jwtManager:       jwtManager,
	}
}

// RegisterInput represents the registration input
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthResult represents a successful authentication
type AuthResult struct {
	User         *entity.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

// Register creates a new staff account
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*entity.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("A user with this email already exists")
	}

	role := input.Role
	if role == "" {
		role = entity.RoleCashier
	}
	if role != entity.RoleAdmin && role != entity.RoleCashier {
		return nil, apperror.NewBadRequestError("Invalid role")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashedPassword),
		Role:     role,
		Active:   true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// LoginInput represents the login input. IP and user agent come from the
// HTTP layer and are recorded in the login history.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// Login authenticates a user and issues a token pair. Every attempt against
// an existing account is recorded, successful or not.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		s.recordLogin(ctx, user, input, false)
		return nil, apperror.ErrInvalidCredentials
	}

	if !user.Active {
		s.recordLogin(ctx, user, input, false)
		return nil, apperror.NewAppError(403, "Account is deactivated")
	}

	s.recordLogin(ctx, user, input, true)

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// recordLogin writes the login history row and, when the user has login
// alerts enabled, a notification for failed attempts. Failures here never
// block authentication.
func (s *AuthService) recordLogin(ctx context.Context, user *entity.User, input *LoginInput, success bool) {
	record := &entity.LoginHistory{
		UserID:    user.ID,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Success:   success,
	}
	if err := s.loginHistoryRepo.Create(ctx, record); err != nil {
		log.Printf("Failed to record login attempt: %v", err)
	}

	if success {
		return
	}

	settings, err := s.settingsRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		log.Printf("Failed to load settings for login alert: %v", err)
		return
	}
	if settings != nil && !settings.LoginAlerts {
		return
	}

	notification := &entity.Notification{
		UserID:   user.ID,
		Severity: enum.NotificationSeverityWarning,
		Title:    "Failed login attempt",
		Message:  "A failed login attempt was made on your account from " + input.IPAddress,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("Failed to record login alert: %v", err)
	}
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, apperror.ErrUnauthorized
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	newRefreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}
