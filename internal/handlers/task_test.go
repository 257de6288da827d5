package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kzmshx/taskhub/internal/dto"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/stretchr/testify/require"
)

func TestTaskHandler_ListTasks_Scoped(t *testing.T) {
	env := setupHandlerTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	member := env.createUser(t, "member@example.com", models.RoleMember)

	project := &models.Project{Name: "p", OwnerID: manager.ID}
	require.NoError(t, env.projectRepo.Create(project))

	mine := &models.Task{Title: "mine", Status: models.TaskStatusBacklog, Priority: models.TaskPriorityMedium, ProjectID: project.ID, AssigneeID: &member.ID}
	require.NoError(t, env.taskRepo.CreateWithLabels(mine, nil))
	other := &models.Task{Title: "not mine", Status: models.TaskStatusBacklog, Priority: models.TaskPriorityMedium, ProjectID: project.ID}
	require.NoError(t, env.taskRepo.CreateWithLabels(other, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	authorize(req, env.tokenFor(t, member))
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TaskListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, int64(1), response.TotalCount)
	require.Len(t, response.Tasks, 1)
	require.Equal(t, "mine", response.Tasks[0].Title)
}

func TestTaskHandler_GetTask_HiddenIs404(t *testing.T) {
	env := setupHandlerTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	member := env.createUser(t, "member@example.com", models.RoleMember)

	project := &models.Project{Name: "p", OwnerID: manager.ID}
	require.NoError(t, env.projectRepo.Create(project))
	task := &models.Task{Title: "secret", Status: models.TaskStatusBacklog, Priority: models.TaskPriorityMedium, ProjectID: project.ID}
	require.NoError(t, env.taskRepo.CreateWithLabels(task, nil))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	authorize(req, env.tokenFor(t, member))
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	// Out-of-scope reads report not-found, never forbidden
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_CreateTask(t *testing.T) {
	env := setupHandlerTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	project := &models.Project{Name: "p", OwnerID: manager.ID}
	require.NoError(t, env.projectRepo.Create(project))

	payload := map[string]any{
		"title":      "deploy the thing",
		"project_id": project.ID,
		"priority":   "HIGH",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	authorize(req, env.tokenFor(t, manager))
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "deploy the thing", response.Title)
	require.Equal(t, models.TaskStatusBacklog, response.Status)
	require.Equal(t, models.TaskPriorityHigh, response.Priority)
}

func TestTaskHandler_CreateTask_MemberForbidden(t *testing.T) {
	env := setupHandlerTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	member := env.createUser(t, "member@example.com", models.RoleMember)
	project := &models.Project{Name: "p", OwnerID: manager.ID}
	require.NoError(t, env.projectRepo.Create(project))

	payload := map[string]any{
		"title":      "denied",
		"project_id": project.ID,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	authorize(req, env.tokenFor(t, member))
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTaskHandler_UpdateTask_NullClearsDueDate(t *testing.T) {
	env := setupHandlerTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	project := &models.Project{Name: "p", OwnerID: manager.ID}
	require.NoError(t, env.projectRepo.Create(project))

	task := &models.Task{Title: "task", Status: models.TaskStatusBacklog, Priority: models.TaskPriorityMedium, ProjectID: project.ID}
	require.NoError(t, env.taskRepo.CreateWithLabels(task, nil))

	body := []byte(`{"due_date": null, "status": "IN_PROGRESS"}`)
	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	authorize(req, env.tokenFor(t, manager))
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.TaskDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, models.TaskStatusInProgress, response.Status)
	require.Nil(t, response.DueDate)
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	env := setupHandlerTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	project := &models.Project{Name: "p", OwnerID: manager.ID}
	require.NoError(t, env.projectRepo.Create(project))
	task := &models.Task{Title: "doomed", Status: models.TaskStatusBacklog, Priority: models.TaskPriorityMedium, ProjectID: project.ID}
	require.NoError(t, env.taskRepo.CreateWithLabels(task, nil))

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	authorize(req, env.tokenFor(t, manager))
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	getReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	authorize(getReq, env.tokenFor(t, manager))
	getW := httptest.NewRecorder()

	env.router.ServeHTTP(getW, getReq)

	require.Equal(t, http.StatusNotFound, getW.Code)
}

func TestTaskHandler_SuggestTasks_Unconfigured(t *testing.T) {
	env := setupHandlerTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	project := &models.Project{Name: "p", OwnerID: manager.ID}
	require.NoError(t, env.projectRepo.Create(project))

	payload := map[string]any{
		"text":       "ship the release by friday",
		"project_id": project.ID,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/suggest", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	authorize(req, env.tokenFor(t, manager))
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProjectHandler_ListProjects_Scoped(t *testing.T) {
	env := setupHandlerTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	other := env.createUser(t, "other@example.com", models.RoleManager)

	owned := &models.Project{Name: "owned", OwnerID: manager.ID}
	require.NoError(t, env.projectRepo.Create(owned))
	foreign := &models.Project{Name: "foreign", OwnerID: other.ID}
	require.NoError(t, env.projectRepo.Create(foreign))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	authorize(req, env.tokenFor(t, manager))
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ProjectListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, int64(1), response.TotalCount)
	require.Equal(t, "owned", response.Projects[0].Name)
}
