package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"distro-backend/internal/auth"
	"distro-backend/internal/models"
	"distro-backend/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// UserService covers admin user management and both login flows
// (password, and password + TOTP when 2FA is enabled).
type UserService struct {
	Users     *repositories.UserRepository
	LoginLogs *repositories.LoginLogRepository
	TOTP      *TOTPService
	JWT       *auth.JWTManager
}

func NewUserService(users *repositories.UserRepository, loginLogs *repositories.LoginLogRepository, totp *TOTPService, jwt *auth.JWTManager) *UserService {
	return &UserService{Users: users, LoginLogs: loginLogs, TOTP: totp, JWT: jwt}
}

// Login authenticates an admin/manager user. When the user has 2FA
// enabled and no code is supplied, the response carries a short-lived
// temp token instead of a session token.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest, ip, userAgent string) (*models.LoginResponse, error) {
	user, err := s.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logAttempt(ctx, 0, req.Email, ip, userAgent, false)
		return nil, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.logAttempt(ctx, user.ID, req.Email, ip, userAgent, false)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logAttempt(ctx, user.ID, req.Email, ip, userAgent, false)
		return nil, ErrAccountDisabled
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			tempToken, err := s.JWT.GenerateTempToken(user)
			if err != nil {
				return nil, fmt.Errorf("generating temp token: %w", err)
			}
			return &models.LoginResponse{TempToken: tempToken, RequireTOTP: true}, nil
		}
		if err := s.TOTP.VerifyLogin(user, req.TOTPCode); err != nil {
			s.logAttempt(ctx, user.ID, req.Email, ip, userAgent, false)
			return nil, err
		}
	}

	return s.issueSession(ctx, user, ip, userAgent)
}

// CompleteTOTPLogin finishes the 2FA flow: temp token + code -> session.
func (s *UserService) CompleteTOTPLogin(ctx context.Context, tempToken, code, ip, userAgent string) (*models.LoginResponse, error) {
	claims, err := s.JWT.ValidateTempToken(tempToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.TOTP.VerifyLogin(user, code); err != nil {
		s.logAttempt(ctx, user.ID, user.Email, ip, userAgent, false)
		return nil, err
	}
	return s.issueSession(ctx, user, ip, userAgent)
}

func (s *UserService) issueSession(ctx context.Context, user *models.User, ip, userAgent string) (*models.LoginResponse, error) {
	token, err := s.JWT.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	s.logAttempt(ctx, user.ID, user.Email, ip, userAgent, true)
	if err := s.Users.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Printf("[Auth] last-login update failed for user=%d: %v", user.ID, err)
	}
	return &models.LoginResponse{Token: token, User: user}, nil
}

// DriverLogin authenticates a driver for the portal.
func (s *UserService) DriverLogin(ctx context.Context, email, password string, rememberMe bool, ip, userAgent string) (string, *models.User, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		s.logAttempt(ctx, 0, email, ip, userAgent, false)
		return "", nil, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		s.logAttempt(ctx, user.ID, email, ip, userAgent, false)
		return "", nil, ErrInvalidCredentials
	}
	if user.Role != models.RoleDriver {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrAccountDisabled
	}
	token, err := s.JWT.GenerateDriverToken(user, rememberMe)
	if err != nil {
		return "", nil, fmt.Errorf("generating driver token: %w", err)
	}
	s.logAttempt(ctx, user.ID, email, ip, userAgent, true)
	_ = s.Users.UpdateLastLogin(ctx, user.ID)
	return token, user, nil
}

func (s *UserService) Logout(ctx context.Context, userID int) {
	if err := s.LoginLogs.RecordLogout(ctx, userID); err != nil {
		log.Printf("[Auth] logout stamp failed for user=%d: %v", userID, err)
	}
}

func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, errors.New("email and password are required")
	}
	switch req.Role {
	case models.RoleAdmin, models.RoleManager, models.RoleDriver:
	default:
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = req.Name
	user.Email = req.Email
	user.Phone = req.Phone
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) logAttempt(ctx context.Context, userID int, email, ip, userAgent string, success bool) {
	entry := &models.LoginLog{
		UserID:    userID,
		Email:     email,
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   success,
	}
	if err := s.LoginLogs.Record(ctx, entry); err != nil {
		log.Printf("[Auth] login log failed for %s: %v", email, err)
	}
}
