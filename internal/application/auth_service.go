package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CredentialStore exposes user credential lookup operations required by the auth service.
type CredentialStore interface {
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
	GetUser(ctx context.Context, id string) (User, error)
}

// TokenRepository captures the persistence interactions for issued bearer tokens.
type TokenRepository interface {
	CreateToken(ctx context.Context, token Token) (Token, error)
	GetToken(ctx context.Context, value string) (Token, error)
	RevokeToken(ctx context.Context, value string, revokedAt time.Time) (Token, error)
	DeleteExpiredTokens(ctx context.Context, reference time.Time) error
}

// AuthService coordinates login, logout, token refresh, and access-token validation.
//
// Both token kinds are opaque persisted values. Logout revokes only the refresh
// token; access tokens issued earlier stay valid until their own expiry, which
// is a property of the token scheme rather than an oversight.
type AuthService struct {
	credentials    CredentialStore
	tokens         TokenRepository
	verifyPassword PasswordVerifier
	tokenGenerator func() string
	idGenerator    func() string
	now            func() time.Time
	accessTTL      time.Duration
	refreshTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, tokens TokenRepository, verify PasswordVerifier, tokenGenerator, idGenerator func() string, now func() time.Time, accessTTL, refreshTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, tokens, verify, tokenGenerator, idGenerator, now, accessTTL, refreshTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, tokens TokenRepository, verify PasswordVerifier, tokenGenerator, idGenerator func() string, now func() time.Time, accessTTL, refreshTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if idGenerator == nil {
		idGenerator = tokenGenerator
	}
	if now == nil {
		now = time.Now
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		tokens:         tokens,
		verifyPassword: verify,
		tokenGenerator: tokenGenerator,
		idGenerator:    idGenerator,
		now:            now,
		accessTTL:      accessTTL,
		refreshTTL:     refreshTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login validates credentials and issues a fresh access/refresh token pair.
// Unknown email and wrong password produce the same sentinel error so the two
// cases cannot be distinguished by callers; only a disabled account is reported
// separately.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}
	if s.tokens == nil {
		err = fmt.Errorf("token repository not configured")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	if email == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var creds UserCredentials
	creds, err = s.credentials.GetUserCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if creds.Disabled {
		err = ErrAccountDisabled
		return
	}

	if err = s.verifyPassword(creds.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	if err = s.tokens.DeleteExpiredTokens(ctx, now); err != nil {
		return
	}

	var access, refresh Token
	if access, err = s.issueToken(ctx, creds.User.ID, TokenKindAccess, s.accessTTL); err != nil {
		return
	}
	if refresh, err = s.issueToken(ctx, creds.User.ID, TokenKindRefresh, s.refreshTTL); err != nil {
		return
	}

	result = LoginResult{User: creds.User, AccessToken: access, RefreshToken: refresh}
	return
}

// Logout adds the presented refresh token to the revocation list. The caller's
// access token is left untouched and expires on its own schedule.
func (s *AuthService) Logout(ctx context.Context, principal Principal, refreshToken string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.tokens == nil {
		return fmt.Errorf("token repository not configured")
	}

	logger := s.loggerWith(ctx, "Logout", "principal_id", principal.UserID)

	trimmed := strings.TrimSpace(refreshToken)
	if trimmed == "" {
		vErr := &ValidationError{}
		vErr.add("refresh_token", "Refresh token is required.")
		logger.ErrorContext(ctx, "logout rejected", "error", vErr, "error_kind", ErrorKind(vErr))
		return vErr
	}

	token, err := s.tokens.GetToken(ctx, trimmed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = fmt.Errorf("unknown refresh token")
		}
		logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if token.Kind != TokenKindRefresh {
		err = fmt.Errorf("presented token is not a refresh token")
		logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if _, err := s.tokens.RevokeToken(ctx, trimmed, s.now()); err != nil {
		logger.ErrorContext(ctx, "failed to revoke refresh token", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.tokens.DeleteExpiredTokens(ctx, s.now()); err != nil {
		logger.ErrorContext(ctx, "failed to prune expired tokens", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "refresh token revoked")
	return nil
}

// RefreshAccessToken exchanges a live, non-revoked refresh token for a new
// access token. This is the point where the revocation list is consulted.
func (s *AuthService) RefreshAccessToken(ctx context.Context, params RefreshParams) (result RefreshResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.tokens == nil {
		err = fmt.Errorf("token repository not configured")
		return
	}

	trimmed := strings.TrimSpace(params.RefreshToken)
	logger := s.loggerWith(ctx, "RefreshAccessToken", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "token refresh failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.AccessToken.UserID).InfoContext(ctx, "access token refreshed")
	}()

	if trimmed == "" {
		err = ErrInvalidToken
		return
	}

	var token Token
	token, err = s.tokens.GetToken(ctx, trimmed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidToken
		}
		return
	}

	if token.Kind != TokenKindRefresh {
		err = ErrInvalidToken
		return
	}
	if token.RevokedAt != nil && !token.RevokedAt.IsZero() {
		err = ErrTokenRevoked
		return
	}
	if !token.ExpiresAt.After(s.now()) {
		err = ErrTokenExpired
		return
	}

	var access Token
	if access, err = s.issueToken(ctx, token.UserID, TokenKindAccess, s.accessTTL); err != nil {
		return
	}

	result = RefreshResult{AccessToken: access}
	return
}

// ValidateAccessToken verifies a presented access token and resolves its principal.
func (s *AuthService) ValidateAccessToken(ctx context.Context, value string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.tokens == nil {
		err = fmt.Errorf("token repository not configured")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	trimmed := strings.TrimSpace(value)
	logger := s.loggerWith(ctx, "ValidateAccessToken", "token_provided", trimmed != "")

	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	var token Token
	token, err = s.tokens.GetToken(ctx, trimmed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		logger.ErrorContext(ctx, "access token rejected", "error", err, "error_kind", ErrorKind(err))
		return
	}

	if token.Kind != TokenKindAccess {
		err = ErrUnauthorized
		logger.ErrorContext(ctx, "access token rejected", "error", err, "error_kind", ErrorKind(err))
		return
	}
	if !token.ExpiresAt.After(s.now()) {
		err = ErrTokenExpired
		logger.ErrorContext(ctx, "access token rejected", "error", err, "error_kind", ErrorKind(err))
		return
	}

	var user User
	user, err = s.credentials.GetUser(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		logger.ErrorContext(ctx, "access token rejected", "error", err, "error_kind", ErrorKind(err))
		return
	}
	if !user.IsActive {
		err = ErrAccountDisabled
		logger.ErrorContext(ctx, "access token rejected", "error", err, "error_kind", ErrorKind(err))
		return
	}

	principal = Principal{UserID: user.ID, Role: user.Role}
	return
}

func (s *AuthService) issueToken(ctx context.Context, userID string, kind TokenKind, ttl time.Duration) (Token, error) {
	now := s.now()
	value := s.tokenGenerator()
	token := Token{
		ID:        s.idGenerator(),
		UserID:    userID,
		Value:     value,
		Kind:      kind,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if token.Value == "" {
		token.Value = token.ID
	}
	return s.tokens.CreateToken(ctx, token)
}
