package scope

import (
	"time"

	"github.com/kzmshx/taskhub/internal/models"
)

// TaskFilter holds the caller-requested filters for task lists.
type TaskFilter struct {
	ProjectID  *uint64
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	AssigneeID *uint64
	Search     string
	DueFrom    *time.Time
	DueTo      *time.Time
}

// ProjectFilter holds the caller-requested filters for project lists.
type ProjectFilter struct {
	Search string
}

// TaskScope combines the requested task filters with the role-derived
// restriction. ownedProjectIDs are the ids of projects owned by the caller,
// prefetched because the storage layer is not assumed to join transitively.
func TaskScope(role models.Role, userID uint64, ownedProjectIDs []uint64, f TaskFilter) Expr {
	exprs := []Expr{}

	if f.ProjectID != nil {
		exprs = append(exprs, Cond{Column: "tasks.project_id", Op: OpEq, Value: *f.ProjectID})
	}
	if f.Status != nil {
		exprs = append(exprs, Cond{Column: "tasks.status", Op: OpEq, Value: *f.Status})
	}
	if f.Priority != nil {
		exprs = append(exprs, Cond{Column: "tasks.priority", Op: OpEq, Value: *f.Priority})
	}
	if f.AssigneeID != nil {
		exprs = append(exprs, Cond{Column: "tasks.assignee_id", Op: OpEq, Value: *f.AssigneeID})
	}
	if f.Search != "" {
		exprs = append(exprs, Or{Exprs: []Expr{
			Cond{Column: "tasks.title", Op: OpSubstr, Value: f.Search},
			Cond{Column: "tasks.description", Op: OpSubstr, Value: f.Search},
		}})
	}
	if f.DueFrom != nil {
		exprs = append(exprs, Cond{Column: "tasks.due_date", Op: OpGte, Value: *f.DueFrom})
	}
	if f.DueTo != nil {
		exprs = append(exprs, Cond{Column: "tasks.due_date", Op: OpLt, Value: *f.DueTo})
	}

	if r := taskRestriction(role, userID, ownedProjectIDs); r != nil {
		exprs = append(exprs, r)
	}

	return Conj(exprs...)
}

func taskRestriction(role models.Role, userID uint64, ownedProjectIDs []uint64) Expr {
	switch role {
	case models.RoleAdmin:
		return nil
	case models.RoleManager:
		return Or{Exprs: []Expr{
			In{Column: "tasks.project_id", IDs: ownedProjectIDs},
			Cond{Column: "tasks.assignee_id", Op: OpEq, Value: userID},
		}}
	default:
		return Cond{Column: "tasks.assignee_id", Op: OpEq, Value: userID}
	}
}

// ProjectScope combines the requested project filters with the role-derived
// restriction. assignedProjectIDs are the distinct ids of projects containing
// a task assigned to the caller, prefetched by the caller.
func ProjectScope(role models.Role, userID uint64, assignedProjectIDs []uint64, f ProjectFilter) Expr {
	exprs := []Expr{}

	if f.Search != "" {
		exprs = append(exprs, Or{Exprs: []Expr{
			Cond{Column: "projects.name", Op: OpSubstr, Value: f.Search},
			Cond{Column: "projects.description", Op: OpSubstr, Value: f.Search},
		}})
	}

	switch role {
	case models.RoleAdmin:
	case models.RoleManager:
		exprs = append(exprs, Or{Exprs: []Expr{
			Cond{Column: "projects.owner_id", Op: OpEq, Value: userID},
			In{Column: "projects.id", IDs: assignedProjectIDs},
		}})
	default:
		exprs = append(exprs, In{Column: "projects.id", IDs: assignedProjectIDs})
	}

	return Conj(exprs...)
}
