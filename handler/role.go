package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hemobase/hemobase/middleware"
	"github.com/hemobase/hemobase/service"
	"github.com/hemobase/hemobase/structs"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/ncore/net/resp"
)

// RoleHandler toggles donor and beneficiary roles for the caller.
type RoleHandler struct {
	users  *service.UserService
	logger *logger.Logger
}

func NewRoleHandler(users *service.UserService, logger *logger.Logger) *RoleHandler {
	return &RoleHandler{
		users:  users,
		logger: logger,
	}
}

func (h *RoleHandler) BecomeDonor(c *gin.Context) {
	h.toggle(c, structs.RoleDonor, true, "User is now a donor")
}

func (h *RoleHandler) DropDonor(c *gin.Context) {
	h.toggle(c, structs.RoleDonor, false, "User is no longer a donor")
}

func (h *RoleHandler) BecomeBeneficiary(c *gin.Context) {
	h.toggle(c, structs.RoleBeneficiary, true, "User is now a beneficiary")
}

func (h *RoleHandler) DropBeneficiary(c *gin.Context) {
	h.toggle(c, structs.RoleBeneficiary, false, "User is no longer a beneficiary")
}

func (h *RoleHandler) toggle(c *gin.Context, role structs.Role, grant bool, message string) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("Session not found"))
		return
	}

	var err error
	if grant {
		err = h.users.GrantRole(c.Request.Context(), session.UserID, role)
	} else {
		err = h.users.RevokeRole(c.Request.Context(), session.UserID, role)
	}
	if err != nil {
		failFromError(c, err)
		return
	}

	resp.Success(c.Writer, message)
}
