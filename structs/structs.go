// Package structs defines the blood-donation directory domain models.
package structs

import "time"

// User is a registered account in the directory. The Roles mask is the
// authoritative role state; sessions carry a decoded snapshot of it.
type User struct {
	ID                   string    `json:"id"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"-"`
	SocialSecurityNumber string    `json:"social_security_number"`
	Gender               Gender    `json:"gender"`
	BloodType            BloodType `json:"blood_type"`
	City                 string    `json:"city"`
	District             string    `json:"district"`
	DonationDescription  string    `json:"donation_description"`
	Roles                RoleMask  `json:"roles"`
	PhoneNumber          string    `json:"phone_number"`
	DateOfBirth          time.Time `json:"date_of_birth"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Session binds a random identifier to an authenticated user and acts as
// the sole bearer credential. Email and Roles are a point-in-time copy
// taken at login, not a live reference to the user row.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpireAt  time.Time `json:"expire_at"`
}

// Expired reports whether the session's expiry instant has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpireAt.After(now)
}
