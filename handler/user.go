package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hemobase/hemobase/middleware"
	"github.com/hemobase/hemobase/service"
	"github.com/hemobase/hemobase/structs"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/ncore/net/resp"
)

// UserHandler handles profile and directory lookups. All routes sit
// behind the session gate, which injects the caller's session.
type UserHandler struct {
	users  *service.UserService
	logger *logger.Logger
}

func NewUserHandler(users *service.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// Profile returns the authenticated user's own profile.
func (h *UserHandler) Profile(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("Session not found"))
		return
	}

	user, err := h.users.Profile(c.Request.Context(), session.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	resp.Success(c.Writer, gin.H{
		"firstName":            user.FirstName,
		"lastName":             user.LastName,
		"email":                user.Email,
		"socialSecurityNumber": user.SocialSecurityNumber,
		"gender":               string(user.Gender),
		"bloodType":            string(user.BloodType),
		"city":                 user.City,
		"district":             user.District,
		"donationDescription":  user.DonationDescription,
		"dateOfBirth":          user.DateOfBirth.Format("2006-01-02"),
		"phoneNumber":          user.PhoneNumber,
		"roles":                user.Roles.Names(),
	})
}

// UpdateProfile applies a partial profile update.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("Session not found"))
		return
	}

	var req struct {
		FirstName            *string `json:"firstName"`
		LastName             *string `json:"lastName"`
		Email                *string `json:"email"`
		Password             *string `json:"password"`
		SocialSecurityNumber *string `json:"socialSecurityNumber"`
		Gender               *string `json:"gender"`
		BloodType            *string `json:"bloodType"`
		City                 *string `json:"city"`
		District             *string `json:"district"`
		DonationDescription  *string `json:"donationDescription"`
		PhoneNumber          *string `json:"phoneNumber"`
		DateOfBirth          *string `json:"dateOfBirth"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	err := h.users.UpdateProfile(c.Request.Context(), session.UserID, service.ProfileUpdate{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Email:                req.Email,
		Password:             req.Password,
		SocialSecurityNumber: req.SocialSecurityNumber,
		Gender:               req.Gender,
		BloodType:            req.BloodType,
		City:                 req.City,
		District:             req.District,
		DonationDescription:  req.DonationDescription,
		PhoneNumber:          req.PhoneNumber,
		DateOfBirth:          req.DateOfBirth,
	})
	if err != nil {
		failFromError(c, err)
		return
	}

	resp.Success(c.Writer, "Profile updated successfully")
}

// SetDonationDescription replaces the caller's donation description.
func (h *UserHandler) SetDonationDescription(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("Session not found"))
		return
	}

	var req struct {
		DonationDescription string `json:"donationDescription"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	if err := h.users.SetDonationDescription(c.Request.Context(), session.UserID, req.DonationDescription); err != nil {
		failFromError(c, err)
		return
	}

	resp.Success(c.Writer, "Donation description updated successfully")
}

// ByBloodType lists users matching the given blood type.
func (h *UserHandler) ByBloodType(c *gin.Context) {
	users, err := h.users.ByBloodType(c.Request.Context(), c.Query("bloodType"))
	if err != nil {
		failFromError(c, err)
		return
	}

	results := make([]gin.H, 0, len(users))
	for _, user := range users {
		results = append(results, gin.H{
			"firstName":           user.FirstName,
			"lastName":            user.LastName,
			"email":               user.Email,
			"city":                user.City,
			"district":            user.District,
			"donationDescription": user.DonationDescription,
			"phoneNumber":         user.PhoneNumber,
		})
	}

	resp.Success(c.Writer, results)
}

// ByCity lists users in the given city.
func (h *UserHandler) ByCity(c *gin.Context) {
	users, err := h.users.ByCity(c.Request.Context(), c.Query("city"))
	if err != nil {
		failFromError(c, err)
		return
	}

	resp.Success(c.Writer, locationResults(users))
}

// ByDistrict lists users in the given district.
func (h *UserHandler) ByDistrict(c *gin.Context) {
	users, err := h.users.ByDistrict(c.Request.Context(), c.Query("district"))
	if err != nil {
		failFromError(c, err)
		return
	}

	resp.Success(c.Writer, locationResults(users))
}

// Donors lists users holding the donor role.
func (h *UserHandler) Donors(c *gin.Context) {
	users, err := h.users.Donors(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	resp.Success(c.Writer, roleResults(users))
}

// Beneficiaries lists users holding the beneficiary role.
func (h *UserHandler) Beneficiaries(c *gin.Context) {
	users, err := h.users.Beneficiaries(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	resp.Success(c.Writer, roleResults(users))
}

func locationResults(users []*structs.User) []gin.H {
	results := make([]gin.H, 0, len(users))
	for _, user := range users {
		results = append(results, gin.H{
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"email":     user.Email,
			"bloodType": string(user.BloodType),
		})
	}
	return results
}

func roleResults(users []*structs.User) []gin.H {
	results := make([]gin.H, 0, len(users))
	for _, user := range users {
		results = append(results, gin.H{
			"firstName":           user.FirstName,
			"lastName":            user.LastName,
			"email":               user.Email,
			"city":                user.City,
			"district":            user.District,
			"donationDescription": user.DonationDescription,
			"bloodType":           string(user.BloodType),
		})
	}
	return results
}
