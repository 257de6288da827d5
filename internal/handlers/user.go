package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kzmshx/taskhub/internal/dto"
	apierrors "github.com/kzmshx/taskhub/internal/errors"
	"github.com/kzmshx/taskhub/internal/services"
	"github.com/kzmshx/taskhub/internal/utils"
)

// UserHandler coordinates user directory HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns the user directory. ADMIN only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(caller, services.ListUsersInput{
		Search:   c.Query("search"),
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params.Page, params.PageSize, total, utils.TotalPages(total, params.PageSize)))
}

// GetUser returns a user. Self for everyone, anyone for ADMIN.
func (h *UserHandler) GetUser(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(caller, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser updates the caller's own profile.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Name       *string `json:"name"`
		AvatarPath *string `json:"avatar_path"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(caller, userID, services.UpdateUserInput{
		Name:       req.Name,
		AvatarPath: req.AvatarPath,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser removes a user. ADMIN only.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(caller, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}
