package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/roombooking/internal/persistence"
)

// SessionTTL is how long an admin session cookie stays valid.
const SessionTTL = 8 * time.Hour

// AdminDirectory resolves administrator accounts for authentication.
type AdminDirectory interface {
	GetAdminByUsername(ctx context.Context, username string) (AdminCredentials, error)
	CreateAdmin(ctx context.Context, admin AdminUser, passwordHash string) (AdminUser, error)
}

// TokenIssuer mints signed session tokens for authenticated administrators.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// AuthService authenticates administrators and issues session tokens.
type AuthService struct {
	admins      AdminDirectory
	tokens      TokenIssuer
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(admins AdminDirectory, tokens TokenIssuer, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		admins:      admins,
		tokens:      tokens,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Login checks the credentials and returns a signed session token. Every
// failure mode collapses into ErrInvalidCredentials so the response never
// reveals whether the username exists.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil || s.admins == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not fully configured")
		return
	}

	username := strings.TrimSpace(params.Username)
	logger := serviceLogger(ctx, s.logger, "AuthService", "Login", "username", username)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "login rejected", "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "admin logged in")
	}()

	if username == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	creds, lookupErr := s.admins.GetAdminByUsername(ctx, username)
	if lookupErr != nil {
		if errors.Is(lookupErr, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		err = lookupErr
		return
	}
	if !creds.Admin.Active {
		err = ErrInvalidCredentials
		return
	}
	if err = VerifyPassword(creds.PasswordHash, params.Password); err != nil {
		return
	}

	token, issueErr := s.tokens.Issue(creds.Admin.Username)
	if issueErr != nil {
		err = fmt.Errorf("issue session token: %w", issueErr)
		return
	}

	result = LoginResult{
		Username:  creds.Admin.Username,
		Token:     token,
		ExpiresAt: s.now().Add(SessionTTL),
	}
	return
}

// EnsureAdmin creates the administrator account when it does not exist yet.
// An existing account is left untouched, including its password. It reports
// whether a new account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (created bool, err error) {
	if s == nil || s.admins == nil {
		return false, fmt.Errorf("admin directory not configured")
	}

	username = strings.TrimSpace(username)
	logger := serviceLogger(ctx, s.logger, "AuthService", "EnsureAdmin", "username", username)

	if username == "" || password == "" {
		return false, fmt.Errorf("admin username and password must both be set")
	}

	_, lookupErr := s.admins.GetAdminByUsername(ctx, username)
	if lookupErr == nil {
		return false, nil
	}
	if !errors.Is(lookupErr, persistence.ErrNotFound) {
		return false, lookupErr
	}

	hash, hashErr := HashPassword(password)
	if hashErr != nil {
		return false, fmt.Errorf("hash admin password: %w", hashErr)
	}

	_, err = s.admins.CreateAdmin(ctx, AdminUser{
		ID:        s.idGenerator(),
		Username:  username,
		Active:    true,
		CreatedAt: s.now(),
	}, hash)
	if err != nil {
		// Lost a startup race with another process; the account exists.
		if errors.Is(err, persistence.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}

	logger.InfoContext(ctx, "admin account created")
	return true, nil
}
