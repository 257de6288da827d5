package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kzmshx/taskhub/internal/authz"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrLabelNotFound   = errors.New("label not found")
	ErrLabelNameEmpty  = errors.New("label name cannot be empty")
	ErrInvalidHexColor = errors.New("color must be a 6-digit hex RGB string")
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// LabelService provides business logic for label operations. Label reads
// inherit the parent project's visibility; writes require ADMIN or the
// MANAGER owning the project.
type LabelService struct {
	labelRepo   repository.LabelRepository
	projectRepo repository.ProjectRepository
}

// NewLabelService creates a new LabelService.
func NewLabelService(labelRepo repository.LabelRepository, projectRepo repository.ProjectRepository) *LabelService {
	return &LabelService{
		labelRepo:   labelRepo,
		projectRepo: projectRepo,
	}
}

// CreateLabelInput represents parameters to create a label.
type CreateLabelInput struct {
	Name      string
	Color     string
	ProjectID uint64
}

// CreateLabel creates a label under a project.
func (s *LabelService) CreateLabel(caller authz.Identity, input CreateLabelInput) (*models.Label, error) {
	if !authz.CanPerform(caller.Role, authz.ActionCreate, authz.ResourceLabel) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrLabelNameEmpty
	}
	if !hexColorPattern.MatchString(input.Color) {
		return nil, ErrInvalidHexColor
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !authz.CanCreateTaskIn(caller.Role, caller.UserID, project) {
		return nil, ErrPermissionDenied
	}

	label := &models.Label{
		Name:      input.Name,
		Color:     input.Color,
		ProjectID: project.ID,
	}

	if err := s.labelRepo.Create(label); err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}

	return label, nil
}

// UpdateLabelInput represents a partial label update.
type UpdateLabelInput struct {
	Name  *string
	Color *string
}

// UpdateLabel updates a label's fields.
func (s *LabelService) UpdateLabel(caller authz.Identity, labelID uint64, input UpdateLabelInput) (*models.Label, error) {
	if !authz.CanPerform(caller.Role, authz.ActionUpdate, authz.ResourceLabel) {
		return nil, ErrPermissionDenied
	}

	label, err := s.requireManageable(caller, labelID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrLabelNameEmpty
		}
		label.Name = *input.Name
	}
	if input.Color != nil {
		if !hexColorPattern.MatchString(*input.Color) {
			return nil, ErrInvalidHexColor
		}
		label.Color = *input.Color
	}

	if err := s.labelRepo.Update(label); err != nil {
		return nil, fmt.Errorf("failed to update label: %w", err)
	}

	return label, nil
}

// DeleteLabel removes a label and its task links.
func (s *LabelService) DeleteLabel(caller authz.Identity, labelID uint64) error {
	if !authz.CanPerform(caller.Role, authz.ActionDelete, authz.ResourceLabel) {
		return ErrPermissionDenied
	}

	if _, err := s.requireManageable(caller, labelID); err != nil {
		return err
	}

	if err := s.labelRepo.Delete(labelID); err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}

	return nil
}

func (s *LabelService) requireManageable(caller authz.Identity, labelID uint64) (*models.Label, error) {
	label, err := s.labelRepo.FindByID(labelID, "Project")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabelNotFound
		}
		return nil, fmt.Errorf("failed to find label: %w", err)
	}

	if !authz.CanManageLabel(caller.Role, caller.UserID, label.Project.OwnerID) {
		return nil, ErrPermissionDenied
	}

	return label, nil
}
