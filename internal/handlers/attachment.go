package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kzmshx/taskhub/internal/dto"
	apierrors "github.com/kzmshx/taskhub/internal/errors"
	"github.com/kzmshx/taskhub/internal/services"
)

// AttachmentHandler coordinates attachment HTTP handlers.
type AttachmentHandler struct {
	attachmentService *services.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler.
func NewAttachmentHandler(attachmentService *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
	}
}

// Upload stores a multipart file against a task.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "Missing file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to read file")
		return
	}
	defer file.Close()

	attachment, err := h.attachmentService.Upload(caller, services.UploadInput{
		TaskID:       taskID,
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Payload:      file,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAttachmentDTO(*attachment))
}

// Download streams an attachment's payload with its original name.
func (h *AttachmentHandler) Download(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	attachmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attachment, path, err := h.attachmentService.Download(caller, attachmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.FileAttachment(path, attachment.OriginalName)
}

// Delete removes an attachment.
func (h *AttachmentHandler) Delete(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	attachmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.attachmentService.Delete(caller, attachmentID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Attachment deleted successfully",
	})
}
