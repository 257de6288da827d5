package services

import (
	"fmt"
	"time"

	"github.com/kzmshx/taskhub/internal/authz"
	"github.com/kzmshx/taskhub/internal/constants"
	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/internal/repository"
	"github.com/kzmshx/taskhub/internal/scope"
)

// DashboardStats is the read-only aggregate over the caller's task scope.
type DashboardStats struct {
	TotalTasks     int64            `json:"total_tasks"`
	CompletedTasks int64            `json:"completed_tasks"`
	OverdueTasks   int64            `json:"overdue_tasks"`
	CompletedByDay []DailyCompleted `json:"completed_by_day"`
}

// DailyCompleted is one bucket of the completed-count histogram.
type DailyCompleted struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DashboardService computes aggregates against the same role-scoped task
// predicate as the task list, so the dashboard never reveals counts for
// tasks the caller could not otherwise list.
type DashboardService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) *DashboardService {
	return &DashboardService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

// GetStats returns the caller's dashboard aggregate.
func (s *DashboardService) GetStats(caller authz.Identity) (*DashboardStats, error) {
	if !authz.CanPerform(caller.Role, authz.ActionList, authz.ResourceTask) {
		return nil, ErrPermissionDenied
	}

	var ownedIDs []uint64
	if caller.Role == models.RoleManager {
		var err error
		ownedIDs, err = s.projectRepo.OwnedProjectIDs(caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch owned projects: %w", err)
		}
	}

	taskScope := scope.TaskScope(caller.Role, caller.UserID, ownedIDs, scope.TaskFilter{})
	now := time.Now()

	total, err := s.taskRepo.Count(taskScope)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	completed, err := s.taskRepo.Count(scope.Conj(
		taskScope,
		scope.Cond{Column: "tasks.status", Op: scope.OpEq, Value: models.TaskStatusDone},
	))
	if err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	overdue, err := s.taskRepo.Count(scope.Conj(
		taskScope,
		scope.Cond{Column: "tasks.due_date", Op: scope.OpLt, Value: now},
		scope.Cond{Column: "tasks.status", Op: scope.OpNeq, Value: models.TaskStatusDone},
	))
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue tasks: %w", err)
	}

	histogram, err := s.completedHistogram(taskScope, now)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalTasks:     total,
		CompletedTasks: completed,
		OverdueTasks:   overdue,
		CompletedByDay: histogram,
	}, nil
}

// completedHistogram buckets DONE-task completion times into the trailing
// window of whole days, oldest bucket first.
func (s *DashboardService) completedHistogram(taskScope scope.Expr, now time.Time) ([]DailyCompleted, error) {
	days := constants.DashboardHistogramDays
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	since := startOfToday.AddDate(0, 0, -(days - 1))

	times, err := s.taskRepo.CompletionTimes(taskScope, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completion times: %w", err)
	}

	counts := make(map[string]int64, days)
	for _, t := range times {
		counts[t.In(now.Location()).Format("2006-01-02")]++
	}

	histogram := make([]DailyCompleted, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		histogram = append(histogram, DailyCompleted{
			Date:  day,
			Count: counts[day],
		})
	}

	return histogram, nil
}
