// Package handler exposes the directory HTTP endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hemobase/hemobase/service"
	"github.com/hemobase/hemobase/structs"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/ncore/net/cookie"
	"github.com/ncobase/ncore/net/resp"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	auth   *service.AuthService
	logger *logger.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		FirstName            string `json:"firstName" binding:"required"`
		LastName             string `json:"lastName" binding:"required"`
		Email                string `json:"email" binding:"required,email"`
		Password             string `json:"password" binding:"required,min=6"`
		SocialSecurityNumber string `json:"socialSecurityNumber" binding:"required"`
		Gender               string `json:"gender" binding:"required"`
		BloodType            string `json:"bloodType" binding:"required"`
		City                 string `json:"city" binding:"required"`
		District             string `json:"district" binding:"required"`
		PhoneNumber          string `json:"phoneNumber" binding:"required"`
		DateOfBirth          string `json:"dateOfBirth" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	_, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Email:                req.Email,
		Password:             req.Password,
		SocialSecurityNumber: req.SocialSecurityNumber,
		Gender:               req.Gender,
		BloodType:            req.BloodType,
		City:                 req.City,
		District:             req.District,
		PhoneNumber:          req.PhoneNumber,
		DateOfBirth:          req.DateOfBirth,
	})
	if err != nil {
		failFromError(c, err)
		return
	}

	resp.Success(c.Writer, "User registered")
}

// Login verifies credentials, issues the session and sets the carrier
// cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest(err.Error()))
		return
	}

	session, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		failFromError(c, err)
		return
	}

	setSessionCookie(c.Writer, session)

	resp.Success(c.Writer, gin.H{
		"sessionId": session.ID,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"roles":     user.Roles.Names(),
	})
}

// Logout resolves the session identifier from the cookie first, then the
// payload, deletes the session and clears the carrier.
func (h *AuthHandler) Logout(c *gin.Context) {
	var sessionID string
	if id, err := cookie.GetSessionID(c.Request); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			sessionID = id
		}
	}

	if sessionID == "" {
		var req struct {
			SessionID string `json:"sessionId"`
		}
		if err := c.ShouldBindJSON(&req); err == nil {
			sessionID = req.SessionID
		}
	}

	if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
		failFromError(c, err)
		return
	}

	cookie.ClearSessionID(c.Writer)
	resp.Success(c.Writer, "User logged out")
}

// setSessionCookie writes the bearer credential with the attributes the
// session contract requires; expiry tracks the session's own expire-at.
func setSessionCookie(w http.ResponseWriter, session *structs.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookie.SessionIDName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  session.ExpireAt,
	})
}
