package dto

import (
	"time"

	"github.com/kzmshx/taskhub/internal/models"
)

// AttachmentDTO represents an attachment in API responses
type AttachmentDTO struct {
	ID           uint64    `json:"id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	TaskID       uint64    `json:"task_id"`
	UploaderID   uint64    `json:"uploader_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToAttachmentDTO converts an Attachment model to AttachmentDTO
func ToAttachmentDTO(attachment models.Attachment) AttachmentDTO {
	return AttachmentDTO{
		ID:           attachment.ID,
		OriginalName: attachment.OriginalName,
		MimeType:     attachment.MimeType,
		Size:         attachment.Size,
		TaskID:       attachment.TaskID,
		UploaderID:   attachment.UploaderID,
		CreatedAt:    attachment.CreatedAt,
	}
}

// ToAttachmentDTOs converts a slice of attachments to AttachmentDTOs
func ToAttachmentDTOs(attachments []models.Attachment) []AttachmentDTO {
	items := make([]AttachmentDTO, len(attachments))
	for i, attachment := range attachments {
		items[i] = ToAttachmentDTO(attachment)
	}
	return items
}
