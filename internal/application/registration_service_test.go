package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegistrationService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates an account with a hashed password", func(t *testing.T) {
		t.Parallel()

		now := time.Now().UTC()
		repo := newUserRepositoryStub()
		var hashed string
		hasher := func(password string) (string, error) {
			hashed = "hashed:" + password
			return hashed, nil
		}

		svc := NewRegistrationService(repo, nil, hasher, func() string { return "user-1" }, func() time.Time { return now }, nil)

		user, err := svc.Register(context.Background(), RegisterParams{
			Email:     " Alice@Example.com ",
			FirstName: "Alice",
			LastName:  "Smith",
			Username:  "alice",
			Password:  "s3cret",
			Role:      "user",
		})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		if user.ID != "user-1" {
			t.Fatalf("expected generated id, got %q", user.ID)
		}
		if user.Email != "alice@example.com" {
			t.Fatalf("expected normalized email, got %q", user.Email)
		}
		if !user.IsActive {
			t.Fatalf("expected new accounts to be active")
		}
		if repo.hashes["user-1"] != "hashed:s3cret" {
			t.Fatalf("expected stored hash, got %q", repo.hashes["user-1"])
		}
		if hashed == "" {
			t.Fatalf("expected password hasher to be invoked")
		}
	})

	t.Run("collects field validation errors", func(t *testing.T) {
		t.Parallel()

		svc := NewRegistrationService(newUserRepositoryStub(), nil, nil, nil, nil, nil)

		_, err := svc.Register(context.Background(), RegisterParams{Email: "not-an-email", Role: "superuser"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}

		for field, want := range map[string]string{
			"email":      "Enter a valid email address.",
			"first_name": "First name is required.",
			"last_name":  "Last name is required.",
			"username":   "Username is required.",
			"password":   "Password is required.",
			"role":       "Role must be one of: user, event_manager.",
		} {
			if got := vErr.FieldErrors[field]; got != want {
				t.Fatalf("field %q: expected %q, got %q", field, want, got)
			}
		}
	})

	t.Run("rejects registrations without a role", func(t *testing.T) {
		t.Parallel()

		svc := NewRegistrationService(newUserRepositoryStub(), nil, nil, nil, nil, nil)

		_, err := svc.Register(context.Background(), RegisterParams{
			Email:     "erin@example.com",
			FirstName: "Erin",
			LastName:  "Gray",
			Username:  "erin",
			Password:  "s3cret",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["role"] != "Role must be one of: user, event_manager." {
			t.Fatalf("unexpected field errors: %#v", vErr.FieldErrors)
		}
	})

	t.Run("rejects duplicate email addresses", func(t *testing.T) {
		t.Parallel()

		repo := newUserRepositoryStub()
		repo.users["bob@example.com"] = User{ID: "existing", Email: "bob@example.com"}

		svc := NewRegistrationService(repo, nil, nil, func() string { return "user-2" }, nil, nil)

		_, err := svc.Register(context.Background(), RegisterParams{
			Email:     "bob@example.com",
			FirstName: "Bob",
			LastName:  "Jones",
			Username:  "bob",
			Password:  "s3cret",
			Role:      "user",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["email"] != "Email already exists." {
			t.Fatalf("unexpected field errors: %#v", vErr.FieldErrors)
		}
	})

	t.Run("maps storage collisions from concurrent registrations", func(t *testing.T) {
		t.Parallel()

		repo := newUserRepositoryStub()
		repo.createErr = ErrAlreadyExists

		svc := NewRegistrationService(repo, nil, nil, func() string { return "user-3" }, nil, nil)

		_, err := svc.Register(context.Background(), RegisterParams{
			Email:     "carol@example.com",
			FirstName: "Carol",
			LastName:  "White",
			Username:  "carol",
			Password:  "s3cret",
			Role:      "event_manager",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["email"] != "Email already exists." {
			t.Fatalf("unexpected field errors: %#v", vErr.FieldErrors)
		}
	})

	t.Run("sends the welcome mail without failing the registration", func(t *testing.T) {
		t.Parallel()

		repo := newUserRepositoryStub()
		mailer := &welcomeMailerStub{sent: make(chan User, 1), err: errors.New("smtp down")}

		svc := NewRegistrationService(repo, mailer, nil, func() string { return "user-4" }, nil, nil)

		user, err := svc.Register(context.Background(), RegisterParams{
			Email:     "dave@example.com",
			FirstName: "Dave",
			LastName:  "Brown",
			Username:  "dave",
			Password:  "s3cret",
			Role:      "user",
		})
		if err != nil {
			t.Fatalf("Register failed despite mail error: %v", err)
		}

		select {
		case sent := <-mailer.sent:
			if sent.ID != user.ID {
				t.Fatalf("expected welcome mail for %q, got %q", user.ID, sent.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("expected welcome mail to be attempted")
		}
	})
}

// userRepositoryStub implements UserRepository for tests.
type userRepositoryStub struct {
	users  map[string]User
	hashes map[string]string

	createErr error
}

func newUserRepositoryStub() *userRepositoryStub {
	return &userRepositoryStub{
		users:  make(map[string]User),
		hashes: make(map[string]string),
	}
}

func (s *userRepositoryStub) CreateUser(ctx context.Context, user User, passwordHash string) (User, error) {
	if s.createErr != nil {
		return User{}, s.createErr
	}
	s.users[user.Email] = user
	s.hashes[user.ID] = passwordHash
	return user, nil
}

func (s *userRepositoryStub) GetUserByEmail(ctx context.Context, email string) (User, error) {
	user, ok := s.users[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// welcomeMailerStub records welcome notifications.
type welcomeMailerStub struct {
	sent chan User
	err  error
}

func (m *welcomeMailerStub) SendWelcome(ctx context.Context, user User) error {
	m.sent <- user
	return m.err
}
