package service

import (
	"context"
	"errors"
	"time"

	"github.com/hemobase/hemobase/data/repository"
	"github.com/hemobase/hemobase/structs"
	password "github.com/hemobase/hemobase/utils"
	"github.com/ncobase/ncore/logging/logger"
)

// UserService owns profile access, directory queries and role toggles.
type UserService struct {
	users  repository.UserRepository
	logger *logger.Logger
}

func NewUserService(users repository.UserRepository, log *logger.Logger) *UserService {
	return &UserService{users: users, logger: log}
}

func (s *UserService) Profile(ctx context.Context, userID string) (*structs.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ProfileUpdate carries optional profile fields; nil means unchanged.
// Enum and date fields are re-validated exactly like registration.
type ProfileUpdate struct {
	FirstName            *string
	LastName             *string
	Email                *string
	Password             *string
	SocialSecurityNumber *string
	Gender               *string
	BloodType            *string
	City                 *string
	District             *string
	DonationDescription  *string
	PhoneNumber          *string
	DateOfBirth          *string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Password != nil {
		hash, err := password.Hash(*update.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	if update.SocialSecurityNumber != nil {
		user.SocialSecurityNumber = *update.SocialSecurityNumber
	}
	if update.Gender != nil {
		gender, ok := structs.ParseGender(*update.Gender)
		if !ok {
			return &ValidationError{Field: "gender", Reason: genderReason}
		}
		user.Gender = gender
	}
	if update.BloodType != nil {
		bloodType, ok := structs.ParseBloodType(*update.BloodType)
		if !ok {
			return &ValidationError{Field: "bloodType", Reason: bloodTypeReason}
		}
		user.BloodType = bloodType
	}
	if update.City != nil {
		user.City = *update.City
	}
	if update.District != nil {
		user.District = *update.District
	}
	if update.DonationDescription != nil {
		user.DonationDescription = *update.DonationDescription
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
	}
	if update.DateOfBirth != nil {
		dateOfBirth, err := time.Parse("2006-01-02", *update.DateOfBirth)
		if err != nil {
			return &ValidationError{Field: "dateOfBirth", Reason: dateReason}
		}
		user.DateOfBirth = dateOfBirth.UTC()
	}

	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

func (s *UserService) SetDonationDescription(ctx context.Context, userID, description string) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}

	user.DonationDescription = description
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

func (s *UserService) ByBloodType(ctx context.Context, bloodType string) ([]*structs.User, error) {
	parsed, ok := structs.ParseBloodType(bloodType)
	if !ok {
		return nil, &ValidationError{Field: "bloodType", Reason: bloodTypeReason}
	}
	return s.users.FindByBloodType(ctx, parsed)
}

func (s *UserService) ByCity(ctx context.Context, city string) ([]*structs.User, error) {
	return s.users.FindByCity(ctx, city)
}

func (s *UserService) ByDistrict(ctx context.Context, district string) ([]*structs.User, error) {
	return s.users.FindByDistrict(ctx, district)
}

func (s *UserService) Donors(ctx context.Context) ([]*structs.User, error) {
	return s.users.FindByRole(ctx, structs.RoleDonor)
}

func (s *UserService) Beneficiaries(ctx context.Context) ([]*structs.User, error) {
	return s.users.FindByRole(ctx, structs.RoleBeneficiary)
}

// GrantRole sets the role bit on the user's mask and persists it.
// Granting an already-held role leaves the mask unchanged.
func (s *UserService) GrantRole(ctx context.Context, userID string, role structs.Role) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}

	user.Roles = user.Roles.Grant(role)
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info(ctx, "Role granted", "user_id", userID, "role", role.String())
	return nil
}

// RevokeRole clears the role bit on the user's mask and persists it.
func (s *UserService) RevokeRole(ctx context.Context, userID string, role structs.Role) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}

	user.Roles = user.Roles.Revoke(role)
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info(ctx, "Role revoked", "user_id", userID, "role", role.String())
	return nil
}
