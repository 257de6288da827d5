package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kzmshx/taskhub/internal/authz"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/internal/repository"
	"github.com/kzmshx/taskhub/internal/scope"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidProjectName = errors.New("project name cannot be empty")
	ErrPermissionDenied   = errors.New("permission denied")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	labelRepo   repository.LabelRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository, labelRepo repository.LabelRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		labelRepo:   labelRepo,
	}
}

// ListProjectsInput represents parameters for listing projects.
type ListProjectsInput struct {
	Filter   scope.ProjectFilter
	Sort     scope.Sort
	Page     int
	PageSize int
}

// ListProjects returns the projects visible to the caller.
func (s *ProjectService) ListProjects(caller authz.Identity, input ListProjectsInput) ([]models.Project, int64, error) {
	if !authz.CanPerform(caller.Role, authz.ActionList, authz.ResourceProject) {
		return nil, 0, ErrPermissionDenied
	}

	assignedIDs, err := s.assignedProjectIDs(caller)
	if err != nil {
		return nil, 0, err
	}

	projects, total, err := s.projectRepo.List(repository.ListParams{
		Scope:    scope.ProjectScope(caller.Role, caller.UserID, assignedIDs, input.Filter),
		Sort:     input.Sort,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

// GetProject returns a project when the caller may see it. Out-of-scope
// projects are reported as not found so their existence stays hidden.
func (s *ProjectService) GetProject(caller authz.Identity, projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Owner")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	visible, err := s.canView(caller, project)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrProjectNotFound
	}

	return project, nil
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
}

// CreateProject creates a project owned by the caller.
func (s *ProjectService) CreateProject(caller authz.Identity, input CreateProjectInput) (*models.Project, error) {
	if !authz.CanPerform(caller.Role, authz.ActionCreate, authz.ResourceProject) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidProjectName
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     caller.UserID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID, "Owner")
}

// UpdateProjectInput represents a partial project update.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// UpdateProject updates a project's fields. Only supplied fields change.
func (s *ProjectService) UpdateProject(caller authz.Identity, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	if !authz.CanPerform(caller.Role, authz.ActionUpdate, authz.ResourceProject) {
		return nil, ErrPermissionDenied
	}

	project, err := s.requireManageable(caller, projectID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID, "Owner")
}

// DeleteProject removes a project and everything under it.
func (s *ProjectService) DeleteProject(caller authz.Identity, projectID uint64) error {
	if !authz.CanPerform(caller.Role, authz.ActionDelete, authz.ResourceProject) {
		return ErrPermissionDenied
	}

	if _, err := s.requireManageable(caller, projectID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// ListLabels returns the labels of a project visible to the caller.
func (s *ProjectService) ListLabels(caller authz.Identity, projectID uint64) ([]models.Label, error) {
	if _, err := s.GetProject(caller, projectID); err != nil {
		return nil, err
	}

	labels, err := s.labelRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

// requireManageable loads a project and verifies the caller may mutate it.
// A visible but unmanageable project yields ErrPermissionDenied; an
// invisible one stays a not-found.
func (s *ProjectService) requireManageable(caller authz.Identity, projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if authz.CanManageProject(caller.Role, caller.UserID, project) {
		return project, nil
	}

	visible, err := s.canView(caller, project)
	if err != nil {
		return nil, err
	}
	if visible {
		return nil, ErrPermissionDenied
	}
	return nil, ErrProjectNotFound
}

func (s *ProjectService) canView(caller authz.Identity, project *models.Project) (bool, error) {
	hasAssigned := false
	if caller.Role != models.RoleAdmin {
		var err error
		hasAssigned, err = s.taskRepo.HasAssignedTaskInProject(project.ID, caller.UserID)
		if err != nil {
			return false, fmt.Errorf("failed to check task assignment: %w", err)
		}
	}
	return authz.CanViewProject(caller.Role, caller.UserID, project, hasAssigned), nil
}

func (s *ProjectService) assignedProjectIDs(caller authz.Identity) ([]uint64, error) {
	if caller.Role == models.RoleAdmin {
		return nil, nil
	}
	ids, err := s.taskRepo.AssignedProjectIDs(caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assigned projects: %w", err)
	}
	return ids, nil
}
