package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kzmshx/taskhub/internal/dto"
	apierrors "github.com/kzmshx/taskhub/internal/errors"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/internal/scope"
	"github.com/kzmshx/taskhub/internal/services"
	"github.com/kzmshx/taskhub/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService    *services.TaskService
	suggestService *services.SuggestService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, suggestService *services.SuggestService) *TaskHandler {
	return &TaskHandler{
		taskService:    taskService,
		suggestService: suggestService,
	}
}

// ListTasks returns the tasks visible to the caller under the requested
// filters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	filter, ok := parseTaskFilter(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(caller, services.ListTasksInput{
		Filter:   filter,
		Sort:     scope.ParseSort(c.Query("sort"), c.Query("order")),
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.PageSize, total, utils.TotalPages(total, params.PageSize)))
}

// GetTask returns a task with its related records.
func (h *TaskHandler) GetTask(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(caller, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a task under a project.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string              `json:"title" binding:"required"`
		Description string              `json:"description"`
		Priority    models.TaskPriority `json:"priority"`
		DueDate     *time.Time          `json:"due_date"`
		AssigneeID  *uint64             `json:"assignee_id"`
		ProjectID   uint64              `json:"project_id" binding:"required"`
		LabelIDs    []uint64            `json:"label_ids"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(caller, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
		LabelIDs:    req.LabelIDs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates a task. Only provided fields change; an explicit null
// clears due_date or assignee_id.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Parse raw JSON to tell "field absent" apart from "field null"
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, ok := buildUpdateTaskInput(c, rawReq)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(caller, taskID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task and everything under it.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(caller, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// SuggestTasks extracts task drafts from free-form text using AI.
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	type SuggestTasksRequest struct {
		Text      string `json:"text" binding:"required"`
		ProjectID uint64 `json:"project_id" binding:"required"`
	}

	var req SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	suggestions, err := h.suggestService.SuggestTasks(c.Request.Context(), caller, req.ProjectID, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": suggestions,
	})
}

func parseTaskFilter(c *gin.Context) (scope.TaskFilter, bool) {
	var filter scope.TaskFilter

	if raw := c.Query("project_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return filter, false
		}
		filter.ProjectID = &id
	}
	if raw := c.Query("assignee_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assignee_id")
			return filter, false
		}
		filter.AssigneeID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return filter, false
		}
		filter.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := models.TaskPriority(raw)
		if !priority.Valid() {
			apierrors.BadRequest(c, "Invalid priority")
			return filter, false
		}
		filter.Priority = &priority
	}
	if raw := c.Query("due_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_from")
			return filter, false
		}
		filter.DueFrom = &t
	}
	if raw := c.Query("due_to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_to")
			return filter, false
		}
		filter.DueTo = &t
	}
	filter.Search = c.Query("search")

	return filter, true
}

func buildUpdateTaskInput(c *gin.Context, rawReq map[string]any) (services.UpdateTaskInput, bool) {
	var input services.UpdateTaskInput

	if raw, ok := rawReq["title"]; ok {
		s, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid title")
			return input, false
		}
		input.Title = &s
	}
	if raw, ok := rawReq["description"]; ok {
		s, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid description")
			return input, false
		}
		input.Description = &s
	}
	if raw, ok := rawReq["status"]; ok {
		s, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid status")
			return input, false
		}
		status := models.TaskStatus(s)
		input.Status = &status
	}
	if raw, ok := rawReq["priority"]; ok {
		s, ok := raw.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid priority")
			return input, false
		}
		priority := models.TaskPriority(s)
		input.Priority = &priority
	}
	if raw, ok := rawReq["due_date"]; ok {
		if raw == nil {
			input.ClearDueDate = true
		} else if s, ok := raw.(string); ok {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date")
				return input, false
			}
			input.DueDate = &t
		} else {
			apierrors.BadRequest(c, "Invalid due_date")
			return input, false
		}
	}
	if raw, ok := rawReq["assignee_id"]; ok {
		if raw == nil {
			input.ClearAssignee = true
		} else if n, ok := raw.(float64); ok && n >= 0 {
			id := uint64(n)
			input.AssigneeID = &id
		} else {
			apierrors.BadRequest(c, "Invalid assignee_id")
			return input, false
		}
	}
	if raw, ok := rawReq["label_ids"]; ok {
		list, ok := raw.([]any)
		if !ok {
			apierrors.BadRequest(c, "Invalid label_ids")
			return input, false
		}
		ids := make([]uint64, 0, len(list))
		for _, item := range list {
			n, ok := item.(float64)
			if !ok || n < 0 {
				apierrors.BadRequest(c, "Invalid label_ids")
				return input, false
			}
			ids = append(ids, uint64(n))
		}
		input.LabelIDs = &ids
	}

	return input, true
}
