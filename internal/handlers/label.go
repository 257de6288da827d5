package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kzmshx/taskhub/internal/dto"
	apierrors "github.com/kzmshx/taskhub/internal/errors"
	"github.com/kzmshx/taskhub/internal/services"
)

// LabelHandler coordinates label HTTP handlers.
type LabelHandler struct {
	labelService *services.LabelService
}

// NewLabelHandler creates a new LabelHandler.
func NewLabelHandler(labelService *services.LabelService) *LabelHandler {
	return &LabelHandler{
		labelService: labelService,
	}
}

// CreateLabel creates a label under a project.
func (h *LabelHandler) CreateLabel(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type CreateLabelRequest struct {
		Name  string `json:"name" binding:"required,max=100"`
		Color string `json:"color" binding:"required"`
	}

	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	label, err := h.labelService.CreateLabel(caller, services.CreateLabelInput{
		Name:      req.Name,
		Color:     req.Color,
		ProjectID: projectID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToLabelDTO(*label))
}

// UpdateLabel updates a label's fields.
func (h *LabelHandler) UpdateLabel(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	labelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateLabelRequest struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}

	var req UpdateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	label, err := h.labelService.UpdateLabel(caller, labelID, services.UpdateLabelInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLabelDTO(*label))
}

// DeleteLabel removes a label and its task links.
func (h *LabelHandler) DeleteLabel(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	labelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.labelService.DeleteLabel(caller, labelID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Label deleted successfully",
	})
}
