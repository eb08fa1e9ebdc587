package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/akeren/landing-api/config"
	"github.com/akeren/landing-api/internal/log"
	pkgauth "github.com/akeren/landing-api/pkg/auth"
	"github.com/akeren/landing-api/pkg/constants"
	apperrors "github.com/akeren/landing-api/pkg/errors"
	"github.com/akeren/landing-api/pkg/utils"
)

type AuthService interface {
	// Login checks the admin credentials and issues a session token.
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	// Authenticate validates a session token. It fails when auth is not configured.
	Authenticate(token string) (*pkgauth.Principal, error)
}

type authService struct {
	logger *log.Logger
	config *config.AuthConfig
}

func NewAuthService(logger *log.Logger, cfg *config.AuthConfig) AuthService {
	return &authService{logger: logger.WithScope("auth"), config: cfg}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	if !s.config.IsConfigured() {
		logger.Warn("Login attempted while admin auth is not configured")
		return nil, apperrors.NewServiceUnavailableError("Admin login is not configured", pkgauth.ErrNotConfigured)
	}

	email := utils.NormalizeEmail(req.Email)
	emailMatches := subtle.ConstantTimeCompare([]byte(email), []byte(utils.NormalizeEmail(s.config.AdminEmail))) == 1
	passwordMatches := pkgauth.CheckPassword(s.config.AdminPasswordHash, req.Password)

	if !emailMatches || !passwordMatches {
		logger.Warn("Failed admin login", "email", email)
		return nil, apperrors.NewUnauthorizedError("Invalid email or password", pkgauth.ErrInvalidCredentials)
	}

	token, expiresAt, err := s.config.Tokens.Issue(email, pkgauth.RoleAdmin)
	if err != nil {
		logger.Error("Failed to issue session token", "error", err)
		return nil, apperrors.NewInternalServerError("Unable to sign in", err)
	}

	logger.Info("Admin signed in", "email", email)

	return &LoginResponse{
		User: UserResponse{
			Email:     email,
			Role:      pkgauth.RoleAdmin,
			ExpiresAt: expiresAt.UTC().Format(constants.RFC3339DateTimeFormat),
		},
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC().Format(constants.RFC3339DateTimeFormat),
		expiresAt:   expiresAt,
	}, nil
}

func (s *authService) Authenticate(token string) (*pkgauth.Principal, error) {
	if s.config == nil || s.config.Tokens == nil {
		return nil, apperrors.NewUnauthorizedError("Authentication is not configured", pkgauth.ErrNotConfigured)
	}

	claims, err := s.config.Tokens.Validate(token)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid or expired session", err)
	}

	if claims.Role != pkgauth.RoleAdmin {
		return nil, apperrors.NewForbiddenError("Admin role required", errors.New("role "+claims.Role))
	}

	return pkgauth.PrincipalFromClaims(claims), nil
}
