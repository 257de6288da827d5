// Package authz is the authorization policy for the API. It is pure: the
// action gate is a static role table, and the ownership predicates decide on
// records (plus relational facts) the caller has already loaded. Query-time
// scoping lives in the scope package; both must agree, so a record invisible
// to a list is also denied here.
package authz

import (
	"github.com/kzmshx/taskhub/internal/models"
)

// Identity is the authenticated caller for one operation: an immutable
// (id, role) pair resolved from a verified credential.
type Identity struct {
	UserID uint64
	Role   models.Role
}

type Action string

const (
	ActionList   Action = "list"
	ActionGet    Action = "get"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Resource string

const (
	ResourceUser    Resource = "user"
	ResourceProject Resource = "project"
	ResourceTask    Resource = "task"
	ResourceLabel   Resource = "label"
	ResourceComment Resource = "comment"
)

// gate is the coarse role capability table. An entry here only says a role
// may ever attempt the action; row-level ownership predicates still apply
// afterwards (a MEMBER passes the task-update gate but is denied on any task
// not assigned to them).
var gate = map[Resource]map[Action][]models.Role{
	ResourceUser: {
		ActionList:   {models.RoleAdmin},
		ActionGet:    {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionCreate: {models.RoleAdmin},
		ActionUpdate: {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionDelete: {models.RoleAdmin},
	},
	ResourceProject: {
		ActionList:   {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionGet:    {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionCreate: {models.RoleAdmin, models.RoleManager},
		ActionUpdate: {models.RoleAdmin, models.RoleManager},
		ActionDelete: {models.RoleAdmin, models.RoleManager},
	},
	ResourceTask: {
		ActionList:   {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionGet:    {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionCreate: {models.RoleAdmin, models.RoleManager},
		ActionUpdate: {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionDelete: {models.RoleAdmin, models.RoleManager},
	},
	ResourceLabel: {
		ActionList:   {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionGet:    {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionCreate: {models.RoleAdmin, models.RoleManager},
		ActionUpdate: {models.RoleAdmin, models.RoleManager},
		ActionDelete: {models.RoleAdmin, models.RoleManager},
	},
	ResourceComment: {
		ActionList:   {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionGet:    {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionCreate: {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionUpdate: {models.RoleAdmin, models.RoleManager, models.RoleMember},
		ActionDelete: {models.RoleAdmin, models.RoleManager, models.RoleMember},
	},
}

// CanPerform reports whether the role may ever perform the action on the
// resource type.
func CanPerform(role models.Role, action Action, resource Resource) bool {
	actions, ok := gate[resource]
	if !ok {
		return false
	}
	for _, r := range actions[action] {
		if r == role {
			return true
		}
	}
	return false
}

// CanViewProject decides project visibility for a loaded project.
// hasAssignedTask is the relational fact "the caller has at least one task
// assigned within this project", which the caller resolves before asking.
func CanViewProject(role models.Role, userID uint64, project *models.Project, hasAssignedTask bool) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return project.OwnerID == userID || hasAssignedTask
	case models.RoleMember:
		return hasAssignedTask
	}
	return false
}

// CanManageProject decides whether the caller may update or delete a project.
func CanManageProject(role models.Role, userID uint64, project *models.Project) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return project.OwnerID == userID
	}
	return false
}

// TaskInScope decides task visibility and mutability for a loaded task.
// projectOwnerID is the owner of the task's project, resolved by the caller
// since the task row alone cannot answer the MANAGER rule.
func TaskInScope(role models.Role, userID uint64, task *models.Task, projectOwnerID uint64) bool {
	assigned := task.AssigneeID != nil && *task.AssigneeID == userID

	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return projectOwnerID == userID || assigned
	case models.RoleMember:
		return assigned
	}
	return false
}

// CanCreateTaskIn decides whether the caller may create tasks (and labels)
// under the given project. MANAGER must own the parent project.
func CanCreateTaskIn(role models.Role, userID uint64, project *models.Project) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return project.OwnerID == userID
	}
	return false
}

// CanManageLabel decides label mutability: ADMIN, or the MANAGER owning the
// label's project. Label reads inherit project visibility and are not
// checked here.
func CanManageLabel(role models.Role, userID uint64, projectOwnerID uint64) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return projectOwnerID == userID
	}
	return false
}

// CanMutateComment is author-only for every role. This is deliberate: even an
// ADMIN may not edit or delete someone else's comment.
func CanMutateComment(userID uint64, comment *models.Comment) bool {
	return comment.AuthorID == userID
}

// CanViewUser allows self-lookup for everyone and any lookup for ADMIN.
func CanViewUser(role models.Role, callerID, targetID uint64) bool {
	return role == models.RoleAdmin || callerID == targetID
}

// CanUpdateUser is self-only; role changes are not expressible through this
// API at all.
func CanUpdateUser(callerID, targetID uint64) bool {
	return callerID == targetID
}
