package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kzmshx/taskhub/internal/authz"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/internal/repository"
	"github.com/kzmshx/taskhub/internal/scope"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrTitleEmpty        = errors.New("title cannot be empty")
	ErrInvalidStatus     = errors.New("invalid task status")
	ErrInvalidPriority   = errors.New("invalid task priority")
	ErrLabelNotInProject = errors.New("one or more labels do not belong to the task's project")
	ErrAssigneeNotFound  = errors.New("assignee does not exist")
)

// TaskService handles task business logic.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	labelRepo   repository.LabelRepository
	commentRepo repository.CommentRepository
	attachRepo  repository.AttachmentRepository
	userRepo    repository.UserRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	labelRepo repository.LabelRepository,
	commentRepo repository.CommentRepository,
	attachRepo repository.AttachmentRepository,
	userRepo repository.UserRepository,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		labelRepo:   labelRepo,
		commentRepo: commentRepo,
		attachRepo:  attachRepo,
		userRepo:    userRepo,
	}
}

// ListTasksInput represents parameters for listing tasks.
type ListTasksInput struct {
	Filter   scope.TaskFilter
	Sort     scope.Sort
	Page     int
	PageSize int
}

// ListTasks returns the tasks visible to the caller under the requested
// filters.
func (s *TaskService) ListTasks(caller authz.Identity, input ListTasksInput) ([]models.Task, int64, error) {
	if !authz.CanPerform(caller.Role, authz.ActionList, authz.ResourceTask) {
		return nil, 0, ErrPermissionDenied
	}

	taskScope, err := s.buildTaskScope(caller, input.Filter)
	if err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.List(repository.ListParams{
		Scope:    taskScope,
		Sort:     input.Sort,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with its related records. Comments and attachments
// are ordered newest first. Out-of-scope tasks are reported as not found.
func (s *TaskService) GetTask(caller authz.Identity, taskID uint64) (*models.Task, error) {
	task, err := s.requireVisible(caller, taskID, "Assignee", "Project", "Project.Owner", "Labels")
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByTask(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	task.Comments = comments

	attachments, err := s.attachRepo.ListByTask(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attachments: %w", err)
	}
	task.Attachments = attachments

	return task, nil
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	DueDate     *time.Time
	AssigneeID  *uint64
	ProjectID   uint64
	LabelIDs    []uint64
}

// CreateTask creates a task under a project. The parent must exist and a
// MANAGER caller must own it. Label associations are attached atomically
// with the task record.
func (s *TaskService) CreateTask(caller authz.Identity, input CreateTaskInput) (*models.Task, error) {
	if !authz.CanPerform(caller.Role, authz.ActionCreate, authz.ResourceTask) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
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

	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	if input.AssigneeID != nil {
		if err := s.ensureUserExists(*input.AssigneeID); err != nil {
			return nil, err
		}
	}

	labelIDs := uniqueUint64(input.LabelIDs)
	if err := s.ensureLabelsInProject(project.ID, labelIDs); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskStatusBacklog,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		AssigneeID:  input.AssigneeID,
		ProjectID:   project.ID,
	}

	if err := s.taskRepo.CreateWithLabels(task, labelIDs); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Project", "Labels")
}

// UpdateTaskInput represents a partial task update. A supplied LabelIDs list
// replaces the full association set.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *time.Time
	ClearDueDate  bool
	AssigneeID    *uint64
	ClearAssignee bool
	LabelIDs      *[]uint64
}

// UpdateTask updates a task. Only supplied fields change.
func (s *TaskService) UpdateTask(caller authz.Identity, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	if !authz.CanPerform(caller.Role, authz.ActionUpdate, authz.ResourceTask) {
		return nil, ErrPermissionDenied
	}

	task, err := s.requireVisible(caller, taskID, "Project")
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
	} else if input.AssigneeID != nil {
		if err := s.ensureUserExists(*input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
	}

	// All validation happens before anything is written: a rejected label
	// set must not leave the field changes behind.
	var labelIDs *[]uint64
	if input.LabelIDs != nil {
		ids := uniqueUint64(*input.LabelIDs)
		if err := s.ensureLabelsInProject(task.ProjectID, ids); err != nil {
			return nil, err
		}
		labelIDs = &ids
	}

	if err := s.taskRepo.UpdateWithLabels(task, labelIDs); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Project", "Labels")
}

// DeleteTask removes a task and everything under it.
func (s *TaskService) DeleteTask(caller authz.Identity, taskID uint64) error {
	if !authz.CanPerform(caller.Role, authz.ActionDelete, authz.ResourceTask) {
		return ErrPermissionDenied
	}

	if _, err := s.requireVisible(caller, taskID, "Project"); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// buildTaskScope combines the requested filters with the caller's
// role-derived restriction, prefetching the owned-project set a MANAGER
// restriction needs.
func (s *TaskService) buildTaskScope(caller authz.Identity, filter scope.TaskFilter) (scope.Expr, error) {
	var ownedIDs []uint64
	if caller.Role == models.RoleManager {
		var err error
		ownedIDs, err = s.projectRepo.OwnedProjectIDs(caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch owned projects: %w", err)
		}
	}
	return scope.TaskScope(caller.Role, caller.UserID, ownedIDs, filter), nil
}

// requireVisible loads a task and applies the ownership predicate,
// reporting out-of-scope tasks as not found.
func (s *TaskService) requireVisible(caller authz.Identity, taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !authz.TaskInScope(caller.Role, caller.UserID, task, task.Project.OwnerID) {
		return nil, ErrTaskNotFound
	}

	return task, nil
}

func (s *TaskService) ensureUserExists(userID uint64) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to verify assignee: %w", err)
	}
	return nil
}

func (s *TaskService) ensureLabelsInProject(projectID uint64, labelIDs []uint64) error {
	if len(labelIDs) == 0 {
		return nil
	}
	count, err := s.labelRepo.CountInProject(projectID, labelIDs)
	if err != nil {
		return fmt.Errorf("failed to verify labels: %w", err)
	}
	if int(count) != len(labelIDs) {
		return ErrLabelNotInProject
	}
	return nil
}

// uniqueUint64 removes duplicate values from a slice of uint64.
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
