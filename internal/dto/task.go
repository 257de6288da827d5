package dto

import (
	"time"

	"github.com/kzmshx/taskhub/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	AssigneeID  *uint64             `json:"assignee_id"`
	ProjectID   uint64              `json:"project_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Assignee    *UserRefDTO         `json:"assignee,omitempty"`
	Project     *ProjectDTO         `json:"project,omitempty"`
	Labels      []LabelDTO          `json:"labels,omitempty"`
	Comments    []CommentDTO        `json:"comments,omitempty"`
	Attachments []AttachmentDTO     `json:"attachments,omitempty"`
}

// TaskListItemDTO represents a task in list responses (minimal data)
type TaskListItemDTO struct {
	ID         uint64              `json:"id"`
	Title      string              `json:"title"`
	Status     models.TaskStatus   `json:"status"`
	Priority   models.TaskPriority `json:"priority"`
	DueDate    *time.Time          `json:"due_date"`
	AssigneeID *uint64             `json:"assignee_id"`
	ProjectID  uint64              `json:"project_id"`
	Assignee   *UserRefDTO         `json:"assignee,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskListItemDTO `json:"tasks"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int64             `json:"total_count"`
	TotalPages int               `json:"total_pages"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		AssigneeID:  task.AssigneeID,
		ProjectID:   task.ProjectID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include assignee if preloaded
	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserRefDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	// Include project if preloaded
	if task.Project.ID != 0 {
		project := ToProjectDTO(task.Project)
		dto.Project = &project
	}

	if len(task.Labels) > 0 {
		dto.Labels = ToLabelDTOs(task.Labels)
	}
	if len(task.Comments) > 0 {
		dto.Comments = ToCommentDTOs(task.Comments)
	}
	if len(task.Attachments) > 0 {
		dto.Attachments = ToAttachmentDTOs(task.Attachments)
	}

	return dto
}

// ToTaskListItemDTO converts a Task model to TaskListItemDTO
func ToTaskListItemDTO(task models.Task) TaskListItemDTO {
	dto := TaskListItemDTO{
		ID:         task.ID,
		Title:      task.Title,
		Status:     task.Status,
		Priority:   task.Priority,
		DueDate:    task.DueDate,
		AssigneeID: task.AssigneeID,
		ProjectID:  task.ProjectID,
		CreatedAt:  task.CreatedAt,
	}

	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserRefDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64, totalPages int) TaskListResponse {
	items := make([]TaskListItemDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskListItemDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
