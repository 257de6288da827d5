package services

import (
	"testing"

	"github.com/kzmshx/taskhub/internal/models"
	"github.com/stretchr/testify/require"
)

func TestProjectService_ListProjects_Scoping(t *testing.T) {
	env := setupTestEnv(t)

	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	member := env.createUser(t, "member@example.com", models.RoleMember)
	otherManager := env.createUser(t, "other@example.com", models.RoleManager)

	env.createProject(t, "owned", manager.ID)
	foreign := env.createProject(t, "foreign", otherManager.ID)
	assignedIn := env.createProject(t, "assigned-in", otherManager.ID)

	env.createTask(t, "member task", assignedIn.ID, &member.ID)
	env.createTask(t, "manager task", foreign.ID, &manager.ID)

	// Admin sees everything
	projects, total, err := env.projectService.ListProjects(identity(admin), ListProjectsInput{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, projects, 3)

	// Manager sees owned projects plus projects with a task assigned to them
	projects, total, err = env.projectService.ListProjects(identity(manager), ListProjectsInput{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	names := map[string]bool{}
	for _, p := range projects {
		names[p.Name] = true
	}
	require.True(t, names["owned"])
	require.True(t, names["foreign"])

	// Member sees only projects containing their assigned tasks
	projects, total, err = env.projectService.ListProjects(identity(member), ListProjectsInput{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, assignedIn.ID, projects[0].ID)
}

func TestProjectService_ListProjects_EmptyScopeMatchesNothing(t *testing.T) {
	env := setupTestEnv(t)

	member := env.createUser(t, "member@example.com", models.RoleMember)
	owner := env.createUser(t, "owner@example.com", models.RoleManager)
	env.createProject(t, "p1", owner.ID)
	env.createProject(t, "p2", owner.ID)

	projects, total, err := env.projectService.ListProjects(identity(member), ListProjectsInput{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, projects)
}

func TestProjectService_GetProject_HidesOutOfScope(t *testing.T) {
	env := setupTestEnv(t)

	member := env.createUser(t, "member@example.com", models.RoleMember)
	owner := env.createUser(t, "owner@example.com", models.RoleManager)
	project := env.createProject(t, "hidden", owner.ID)

	// Out-of-scope reads surface as not found, not forbidden
	_, err := env.projectService.GetProject(identity(member), project.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)

	env.createTask(t, "assigned", project.ID, &member.ID)

	got, err := env.projectService.GetProject(identity(member), project.ID)
	require.NoError(t, err)
	require.Equal(t, project.ID, got.ID)
}

func TestProjectService_CreateProject(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	member := env.createUser(t, "member@example.com", models.RoleMember)

	project, err := env.projectService.CreateProject(identity(manager), CreateProjectInput{Name: "new project"})
	require.NoError(t, err)
	require.Equal(t, manager.ID, project.OwnerID)

	_, err = env.projectService.CreateProject(identity(member), CreateProjectInput{Name: "denied"})
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.projectService.CreateProject(identity(manager), CreateProjectInput{Name: "   "})
	require.ErrorIs(t, err, ErrInvalidProjectName)
}

func TestProjectService_UpdateProject_Ownership(t *testing.T) {
	env := setupTestEnv(t)

	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	rival := env.createUser(t, "rival@example.com", models.RoleManager)
	project := env.createProject(t, "original", manager.ID)

	name := "renamed"
	updated, err := env.projectService.UpdateProject(identity(manager), project.ID, UpdateProjectInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Name)

	// A manager who cannot even see the project gets a not-found
	_, err = env.projectService.UpdateProject(identity(rival), project.ID, UpdateProjectInput{Name: &name})
	require.ErrorIs(t, err, ErrProjectNotFound)

	// A manager who can see it but does not own it gets a denial
	env.createTask(t, "rival task", project.ID, &rival.ID)
	_, err = env.projectService.UpdateProject(identity(rival), project.ID, UpdateProjectInput{Name: &name})
	require.ErrorIs(t, err, ErrPermissionDenied)

	adminName := "admin renamed"
	updated, err = env.projectService.UpdateProject(identity(admin), project.ID, UpdateProjectInput{Name: &adminName})
	require.NoError(t, err)
	require.Equal(t, "admin renamed", updated.Name)
}

func TestProjectService_DeleteProject_Cascades(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	member := env.createUser(t, "member@example.com", models.RoleMember)
	project := env.createProject(t, "doomed", manager.ID)
	label := env.createLabel(t, "bug", project.ID)

	task := &models.Task{
		Title:     "doomed task",
		Status:    models.TaskStatusBacklog,
		Priority:  models.TaskPriorityMedium,
		ProjectID: project.ID,
	}
	require.NoError(t, env.taskRepo.CreateWithLabels(task, []uint64{label.ID}))

	comment := &models.Comment{Content: "gone soon", TaskID: task.ID, AuthorID: member.ID}
	require.NoError(t, env.commentRepo.Create(comment))

	require.NoError(t, env.projectService.DeleteProject(identity(manager), project.ID))

	var taskCount, labelCount, commentCount, linkCount int64
	env.db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&taskCount)
	env.db.Model(&models.Label{}).Where("project_id = ?", project.ID).Count(&labelCount)
	env.db.Model(&models.Comment{}).Where("task_id = ?", task.ID).Count(&commentCount)
	env.db.Table("task_labels").Where("task_id = ?", task.ID).Count(&linkCount)

	require.Zero(t, taskCount)
	require.Zero(t, labelCount)
	require.Zero(t, commentCount)
	require.Zero(t, linkCount)
}

func TestProjectService_ListLabels_InheritsVisibility(t *testing.T) {
	env := setupTestEnv(t)

	owner := env.createUser(t, "owner@example.com", models.RoleManager)
	member := env.createUser(t, "member@example.com", models.RoleMember)
	project := env.createProject(t, "p", owner.ID)
	env.createLabel(t, "bug", project.ID)

	_, err := env.projectService.ListLabels(identity(member), project.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)

	env.createTask(t, "assigned", project.ID, &member.ID)

	labels, err := env.projectService.ListLabels(identity(member), project.ID)
	require.NoError(t, err)
	require.Len(t, labels, 1)
}
