package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hemobase/hemobase/data/repository"
	"github.com/hemobase/hemobase/structs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/ncobase/ncore/logging/logger"
)

func newTestRepos(t *testing.T) (repository.UserRepository, repository.SessionRepository) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	users, sessions, err := repository.NewSQLiteRepositories(db)
	if err != nil {
		t.Fatalf("init repositories: %v", err)
	}
	return users, sessions
}

func newTestServices(t *testing.T) (*AuthService, *UserService) {
	t.Helper()

	users, sessions := newTestRepos(t)
	log := logger.StdLogger()
	return NewAuthService(users, sessions, DefaultSessionTTL, log), NewUserService(users, log)
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		FirstName:            "Jane",
		LastName:             "Doe",
		Email:                email,
		Password:             "secret1",
		SocialSecurityNumber: "12345678901",
		Gender:               "female",
		BloodType:            "onegative",
		City:                 "Izmir",
		District:             "Konak",
		PhoneNumber:          "5550001",
		DateOfBirth:          "1990-04-02",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := newTestServices(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, registerInput("a@x.com"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !user.Roles.Has(structs.RoleBasic) {
		t.Errorf("new user must hold the basic role, got %b", user.Roles)
	}
	if user.PasswordHash == "secret1" {
		t.Error("password must not be stored in plaintext")
	}

	session, loggedIn, err := auth.Login(ctx, "a@x.com", "secret1", "10.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("login resolved wrong user: %q", loggedIn.ID)
	}
	if session.UserID != user.ID {
		t.Errorf("session bound to wrong user: %q", session.UserID)
	}
	if got := session.Roles; len(got) != 1 || got[0] != "Basic" {
		t.Errorf("unexpected role snapshot: %v", got)
	}
	if session.IPAddress != "10.0.0.1" || session.UserAgent != "test-agent" {
		t.Errorf("provenance not recorded: %+v", session)
	}
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newTestServices(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		mod   func(*RegisterInput)
		field string
	}{
		{"gender", func(in *RegisterInput) { in.Gender = "other" }, "gender"},
		{"blood type", func(in *RegisterInput) { in.BloodType = "o+" }, "bloodType"},
		{"date of birth", func(in *RegisterInput) { in.DateOfBirth = "02/04/1990" }, "dateOfBirth"},
	}

	for _, tc := range cases {
		in := registerInput("a@x.com")
		tc.mod(&in)

		_, err := auth.Register(ctx, in)
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
			continue
		}
		if validation.Field != tc.field {
			t.Errorf("%s: expected field %q, got %q", tc.name, tc.field, validation.Field)
		}
	}

	// Nothing may have been persisted by the failed attempts.
	if _, _, err := auth.Login(ctx, "a@x.com", "secret1", "", ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("failed registration must not persist a user, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, _ := newTestServices(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, registerInput("a@x.com")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := auth.Register(ctx, registerInput("a@x.com")); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestLoginErrors(t *testing.T) {
	auth, _ := newTestServices(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, registerInput("a@x.com")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, err := auth.Login(ctx, "missing@x.com", "secret1", "", ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "a@x.com", "wrong1", "", ""); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestLoginTwiceReusesSession(t *testing.T) {
	auth, _ := newTestServices(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, registerInput("a@x.com")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	first, _, err := auth.Login(ctx, "a@x.com", "secret1", "10.0.0.1", "agent-one")
	if err != nil {
		t.Fatalf("first Login failed: %v", err)
	}
	second, _, err := auth.Login(ctx, "a@x.com", "secret1", "10.0.0.2", "agent-two")
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second login must reuse the session: got %q, want %q", second.ID, first.ID)
	}
	if second.CreatedAt.UnixMilli() != first.CreatedAt.UnixMilli() {
		t.Error("login must not reset created-at")
	}
	if second.ExpireAt.UnixMilli() != first.ExpireAt.UnixMilli() {
		t.Error("login must not extend expire-at")
	}
	if second.UserAgent != "agent-two" {
		t.Errorf("provenance must track the latest login: %q", second.UserAgent)
	}
}

func TestLogout(t *testing.T) {
	auth, _ := newTestServices(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, registerInput("a@x.com")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	session, _, err := auth.Login(ctx, "a@x.com", "secret1", "", "")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := auth.Logout(ctx, session.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := auth.ResolveSession(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("session must be gone after logout, got %v", err)
	}

	// Logout is never a silent no-op.
	if err := auth.Logout(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for stale id, got %v", err)
	}
	if err := auth.Logout(ctx, ""); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for empty id, got %v", err)
	}
}

func TestResolveSession(t *testing.T) {
	auth, _ := newTestServices(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, registerInput("a@x.com")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	session, _, err := auth.Login(ctx, "a@x.com", "secret1", "", "")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	resolved, err := auth.ResolveSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("ResolveSession failed: %v", err)
	}
	if resolved.UserID != session.UserID {
		t.Errorf("resolved wrong session: %+v", resolved)
	}

	if _, err := auth.ResolveSession(ctx, uuid.New().String()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for unknown id, got %v", err)
	}
}

func TestResolveSessionExpiry(t *testing.T) {
	users, sessions := newTestRepos(t)
	auth := NewAuthService(users, sessions, DefaultSessionTTL, logger.StdLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	// Plant a session whose lifetime already ran out.
	id, err := sessions.Save(ctx, &structs.Session{
		UserID:    "user-1",
		Email:     "a@x.com",
		Roles:     []string{"Basic"},
		CreatedAt: now.Add(-48 * time.Hour),
		ExpireAt:  now.Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := auth.ResolveSession(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for expired session, got %v", err)
	}

	// Resolution deletes the expired row, so the slot is free again.
	if _, err := sessions.FindByID(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expired session must be purged, got %v", err)
	}
}
