package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
)

// UserRepository captures the persistence operations needed by the registration service.
type UserRepository interface {
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// WelcomeMailer sends the post-registration notification. Delivery is
// fire-and-forget; failures are logged and never fail the registration.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, user User) error
}

// PasswordHasher derives the stored hash for a plaintext password.
type PasswordHasher func(password string) (string, error)

// RegistrationService validates and persists new user accounts.
type RegistrationService struct {
	users        UserRepository
	mailer       WelcomeMailer
	hashPassword PasswordHasher
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewRegistrationService wires dependencies for the registration service.
func NewRegistrationService(users UserRepository, mailer WelcomeMailer, hashPassword PasswordHasher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RegistrationService {
	if hashPassword == nil {
		hashPassword = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RegistrationService{
		users:        users,
		mailer:       mailer,
		hashPassword: hashPassword,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// Register validates the submitted fields and persists a new account with the
// password stored only in hashed form.
func (s *RegistrationService) Register(ctx context.Context, params RegisterParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("RegistrationService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	logger := serviceLogger(ctx, s.logger, "RegistrationService", "Register", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user registered")
	}()

	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "Email is required.")
	} else if _, mailErr := mail.ParseAddress(email); mailErr != nil {
		vErr.add("email", "Enter a valid email address.")
	}
	if strings.TrimSpace(params.FirstName) == "" {
		vErr.add("first_name", "First name is required.")
	}
	if strings.TrimSpace(params.LastName) == "" {
		vErr.add("last_name", "Last name is required.")
	}
	if strings.TrimSpace(params.Username) == "" {
		vErr.add("username", "Username is required.")
	}
	if params.Password == "" {
		vErr.add("password", "Password is required.")
	}
	role, ok := ParseRole(params.Role)
	if !ok {
		vErr.add("role", "Role must be one of: user, event_manager.")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, lookupErr := s.users.GetUserByEmail(ctx, email); lookupErr == nil {
		vErr.add("email", "Email already exists.")
		err = vErr
		return
	} else if !errors.Is(lookupErr, ErrNotFound) {
		err = lookupErr
		return
	}

	hash, err := s.hashPassword(params.Password)
	if err != nil {
		return
	}

	now := s.now()
	candidate := User{
		ID:        s.idGenerator(),
		Email:     email,
		Username:  strings.TrimSpace(params.Username),
		FirstName: strings.TrimSpace(params.FirstName),
		LastName:  strings.TrimSpace(params.LastName),
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	user, err = s.users.CreateUser(ctx, candidate, hash)
	if err != nil {
		// A concurrent registration can slip past the lookup above; the storage
		// uniqueness constraint reports it as ErrAlreadyExists.
		if errors.Is(err, ErrAlreadyExists) {
			vErr.add("email", "Email already exists.")
			err = vErr
		}
		return
	}

	if s.mailer != nil {
		registered := user
		mailCtx := context.WithoutCancel(ctx)
		go func() {
			if mailErr := s.mailer.SendWelcome(mailCtx, registered); mailErr != nil {
				logger.ErrorContext(mailCtx, "failed to send welcome mail", "error", mailErr)
			}
		}()
	}

	return user, nil
}
