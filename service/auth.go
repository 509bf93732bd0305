package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hemobase/hemobase/data/repository"
	"github.com/hemobase/hemobase/structs"
	password "github.com/hemobase/hemobase/utils"
	"github.com/ncobase/ncore/logging/logger"
)

// DefaultSessionTTL is the fixed session lifetime granted at creation.
// Login over a live slot does not extend it.
const DefaultSessionTTL = 24 * time.Hour

// AuthService owns registration and the session lifecycle.
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	ttl      time.Duration
	logger   *logger.Logger
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, ttl time.Duration, log *logger.Logger) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		logger:   log,
	}
}

// RegisterInput carries the raw registration fields; enum and date fields
// arrive as strings and are validated here.
type RegisterInput struct {
	FirstName            string
	LastName             string
	Email                string
	Password             string
	SocialSecurityNumber string
	Gender               string
	BloodType            string
	City                 string
	District             string
	PhoneNumber          string
	DateOfBirth          string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*structs.User, error) {
	gender, ok := structs.ParseGender(in.Gender)
	if !ok {
		return nil, &ValidationError{Field: "gender", Reason: genderReason}
	}

	bloodType, ok := structs.ParseBloodType(in.BloodType)
	if !ok {
		return nil, &ValidationError{Field: "bloodType", Reason: bloodTypeReason}
	}

	dateOfBirth, err := time.Parse("2006-01-02", in.DateOfBirth)
	if err != nil {
		return nil, &ValidationError{Field: "dateOfBirth", Reason: dateReason}
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &structs.User{
		ID:                   uuid.New().String(),
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		Email:                in.Email,
		PasswordHash:         hash,
		SocialSecurityNumber: in.SocialSecurityNumber,
		Gender:               gender,
		BloodType:            bloodType,
		City:                 in.City,
		District:             in.District,
		Roles:                structs.NewRoleMask(structs.RoleBasic),
		PhoneNumber:          in.PhoneNumber,
		DateOfBirth:          dateOfBirth.UTC(),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "User registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login verifies credentials and hands back the user's session. One live
// session exists per user: a live slot is reused with its created-at and
// expire-at untouched, an expired or missing one is issued fresh.
func (s *AuthService) Login(ctx context.Context, email, plain, ipAddress, userAgent string) (*structs.Session, *structs.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if !password.Verify(plain, user.PasswordHash) {
		return nil, nil, ErrInvalidPassword
	}

	now := time.Now().UTC()
	session, err := s.sessions.Upsert(ctx, &structs.Session{
		UserID:    user.ID,
		Email:     user.Email,
		Roles:     user.Roles.Names(),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpireAt:  now.Add(s.ttl),
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "User logged in", "user_id", user.ID, "session_id", session.ID)
	return session, user, nil
}

// Logout deletes the session behind the given identifier. A missing or
// unknown identifier is an error, not a silent no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionNotFound
	}

	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		return err
	}

	s.logger.Info(ctx, "User logged out", "session_id", sessionID)
	return nil
}

// ResolveSession loads a session for the authentication gate. An expired
// session is deleted and treated as not found.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (*structs.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if session.Expired(time.Now().UTC()) {
		_ = s.sessions.DeleteByID(ctx, sessionID)
		return nil, ErrSessionNotFound
	}

	return session, nil
}
