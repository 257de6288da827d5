package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kzmshx/taskhub/internal/authz"
	"github.com/kzmshx/taskhub/internal/constants"
	apierrors "github.com/kzmshx/taskhub/internal/errors"
	"github.com/kzmshx/taskhub/internal/middleware"
	"github.com/kzmshx/taskhub/internal/services"
)

// requireIdentity resolves the authenticated caller or responds 401.
func requireIdentity(c *gin.Context) (authz.Identity, bool) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return authz.Identity{}, false
	}
	return caller, true
}

// parseIDParam parses a numeric path parameter or responds 400.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

// respondServiceError maps service sentinels onto the API error taxonomy.
// Out-of-scope resources surface as 404 from the services themselves, so
// every not-found sentinel maps straight through.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPermissionDenied),
		errors.Is(err, services.ErrNotCommentAuthor),
		errors.Is(err, services.ErrNotAttachmentOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrLabelNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrAttachmentNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidProjectName),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrLabelNotInProject),
		errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, services.ErrLabelNameEmpty),
		errors.Is(err, services.ErrInvalidHexColor),
		errors.Is(err, services.ErrCommentEmpty),
		errors.Is(err, services.ErrAttachmentNameEmpty),
		errors.Is(err, services.ErrSuggestTextEmpty):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrSuggestUnavailable):
		apierrors.ServiceUnavailable(c, "Task suggestion is not configured. Set OPENAI_API_KEY to enable it.")
	default:
		// Unexpected errors are logged in full; the client only sees the
		// generic message.
		log.Printf("internal error: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		apierrors.InternalError(c, "")
	}
}
