package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/hemobase/hemobase/service"
	"github.com/ncobase/ncore/net/resp"
)

// failFromError translates service errors into the response taxonomy:
// validation 400 with the offending field, not-found 404, conflict 409,
// missing session 400. Anything unexpected becomes a generic 500.
func failFromError(c *gin.Context, err error) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		resp.Fail(c.Writer, resp.BadRequest(
			fmt.Sprintf("Invalid %s", validation.Field),
			map[string]string{validation.Field: validation.Reason},
		))
	case errors.Is(err, service.ErrUserExists):
		resp.Fail(c.Writer, resp.Conflict("User already exists"))
	case errors.Is(err, service.ErrUserNotFound):
		resp.Fail(c.Writer, resp.NotFound("User not found"))
	case errors.Is(err, service.ErrInvalidPassword):
		resp.Fail(c.Writer, resp.BadRequest("Invalid password"))
	case errors.Is(err, service.ErrSessionNotFound):
		resp.Fail(c.Writer, resp.BadRequest("Session not found"))
	default:
		resp.Fail(c.Writer, resp.InternalServer("Something went wrong"))
	}
}
