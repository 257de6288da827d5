package services

import (
	"errors"
	"fmt"
	"io"

	"github.com/kzmshx/taskhub/internal/authz"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/internal/repository"
	"github.com/kzmshx/taskhub/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrNotAttachmentOwner  = errors.New("only the uploader or an admin can delete an attachment")
	ErrAttachmentNameEmpty = errors.New("file name cannot be empty")
)

// AttachmentService manages file attachments on tasks. Payloads live in a
// FileStore; the database only keeps the metadata row.
type AttachmentService struct {
	attachRepo  repository.AttachmentRepository
	taskService *TaskService
	store       storage.FileStore
}

// NewAttachmentService creates a new AttachmentService.
func NewAttachmentService(attachRepo repository.AttachmentRepository, taskService *TaskService, store storage.FileStore) *AttachmentService {
	return &AttachmentService{
		attachRepo:  attachRepo,
		taskService: taskService,
		store:       store,
	}
}

// UploadInput carries the payload and its client-supplied metadata.
type UploadInput struct {
	TaskID       uint64
	OriginalName string
	MimeType     string
	Size         int64
	Payload      io.Reader
}

// Upload stores a file against a visible task.
func (s *AttachmentService) Upload(caller authz.Identity, input UploadInput) (*models.Attachment, error) {
	if input.OriginalName == "" {
		return nil, ErrAttachmentNameEmpty
	}

	if _, err := s.taskService.requireVisible(caller, input.TaskID, "Project"); err != nil {
		return nil, err
	}

	storedName, err := s.store.Save(input.Payload, input.OriginalName)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	attachment := &models.Attachment{
		FileName:     storedName,
		OriginalName: input.OriginalName,
		MimeType:     input.MimeType,
		Size:         input.Size,
		TaskID:       input.TaskID,
		UploaderID:   caller.UserID,
	}

	if err := s.attachRepo.Create(attachment); err != nil {
		// Best effort: the metadata row never landed, an orphaned payload
		// is harmless.
		_ = s.store.Remove(storedName)
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}

	return attachment, nil
}

// Download resolves an attachment to its metadata and on-disk path. The
// attachment is only reachable when its task is visible to the caller.
func (s *AttachmentService) Download(caller authz.Identity, attachmentID uint64) (*models.Attachment, string, error) {
	attachment, err := s.findAttachment(attachmentID)
	if err != nil {
		return nil, "", err
	}

	if _, err := s.taskService.requireVisible(caller, attachment.TaskID, "Project"); err != nil {
		return nil, "", ErrAttachmentNotFound
	}

	return attachment, s.store.Path(attachment.FileName), nil
}

// Delete removes an attachment record and its payload. Uploader or ADMIN
// only.
func (s *AttachmentService) Delete(caller authz.Identity, attachmentID uint64) error {
	attachment, err := s.findAttachment(attachmentID)
	if err != nil {
		return err
	}

	if _, err := s.taskService.requireVisible(caller, attachment.TaskID, "Project"); err != nil {
		return ErrAttachmentNotFound
	}

	if attachment.UploaderID != caller.UserID && caller.Role != models.RoleAdmin {
		return ErrNotAttachmentOwner
	}

	if err := s.attachRepo.Delete(attachmentID); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	// Best effort: the row is gone, a leftover payload is harmless.
	_ = s.store.Remove(attachment.FileName)

	return nil
}

func (s *AttachmentService) findAttachment(attachmentID uint64) (*models.Attachment, error) {
	attachment, err := s.attachRepo.FindByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("failed to find attachment: %w", err)
	}
	return attachment, nil
}
