package services

import (
	"testing"
	"time"

	"github.com/kzmshx/taskhub/internal/constants"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_GetStats_ScopedPerRole(t *testing.T) {
	env := setupTestEnv(t)

	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	member := env.createUser(t, "member@example.com", models.RoleMember)

	owned := env.createProject(t, "owned", manager.ID)
	foreign := env.createProject(t, "foreign", admin.ID)

	yesterday := time.Now().AddDate(0, 0, -1)

	env.createTask(t, "open in owned", owned.ID, nil)

	doneTask := env.createTask(t, "done in owned", owned.ID, &member.ID)
	doneTask.Status = models.TaskStatusDone
	require.NoError(t, env.taskRepo.Update(doneTask))

	overdueTask := env.createTask(t, "overdue elsewhere", foreign.ID, nil)
	overdueTask.DueDate = datePtr(yesterday)
	require.NoError(t, env.taskRepo.Update(overdueTask))

	// Admin aggregates over everything
	stats, err := env.dashboardService.GetStats(identity(admin))
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalTasks)
	require.Equal(t, int64(1), stats.CompletedTasks)
	require.Equal(t, int64(1), stats.OverdueTasks)

	// Manager aggregates only over their task scope
	stats, err = env.dashboardService.GetStats(identity(manager))
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalTasks)
	require.Equal(t, int64(1), stats.CompletedTasks)
	require.Zero(t, stats.OverdueTasks)

	// Member aggregates only over assigned tasks
	stats, err = env.dashboardService.GetStats(identity(member))
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalTasks)
	require.Equal(t, int64(1), stats.CompletedTasks)
}

func TestDashboardService_TotalsMatchList(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	other := env.createUser(t, "other@example.com", models.RoleManager)
	owned := env.createProject(t, "owned", manager.ID)
	foreign := env.createProject(t, "foreign", other.ID)

	env.createTask(t, "a", owned.ID, nil)
	env.createTask(t, "b", owned.ID, nil)
	env.createTask(t, "c", foreign.ID, &manager.ID)
	env.createTask(t, "hidden", foreign.ID, nil)

	_, listTotal, err := env.taskService.ListTasks(identity(manager), ListTasksInput{Page: 1, PageSize: 10})
	require.NoError(t, err)

	stats, err := env.dashboardService.GetStats(identity(manager))
	require.NoError(t, err)

	// The dashboard counts against the same predicate as the task list
	require.Equal(t, listTotal, stats.TotalTasks)
}

func TestDashboardService_Histogram(t *testing.T) {
	env := setupTestEnv(t)

	manager := env.createUser(t, "manager@example.com", models.RoleManager)
	project := env.createProject(t, "p", manager.ID)

	done := env.createTask(t, "done today", project.ID, nil)
	done.Status = models.TaskStatusDone
	require.NoError(t, env.taskRepo.Update(done))

	stats, err := env.dashboardService.GetStats(identity(manager))
	require.NoError(t, err)
	require.Len(t, stats.CompletedByDay, constants.DashboardHistogramDays)

	today := time.Now().Format("2006-01-02")
	last := stats.CompletedByDay[len(stats.CompletedByDay)-1]
	require.Equal(t, today, last.Date)
	require.Equal(t, int64(1), last.Count)

	var sum int64
	for _, bucket := range stats.CompletedByDay {
		sum += bucket.Count
	}
	require.Equal(t, int64(1), sum)
}
