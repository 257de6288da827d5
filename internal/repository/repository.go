package repository

import (
	"time"

	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/internal/scope"
)

// ListParams carries the scoped predicate plus sort and pagination for a
// list query. Total counts are always computed from the same predicate as
// the page of results.
type ListParams struct {
	Scope    scope.Expr
	Sort     scope.Sort
	Page     int
	PageSize int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint64) (*models.User, error)
	FindByEmail(email string) (*models.User, error)

	// List retrieves users matching the search string with pagination
	List(search string, page, pageSize int) ([]models.User, int64, error)

	Update(user *models.User) error
	Delete(id uint64) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// List retrieves projects under the given scoped predicate
	List(params ListParams) ([]models.Project, int64, error)

	Update(project *models.Project) error

	// Delete removes a project and cascades to its tasks, labels, and their
	// dependents in one transaction
	Delete(id uint64) error

	// OwnedProjectIDs returns the ids of projects owned by the user
	OwnedProjectIDs(userID uint64) ([]uint64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateWithLabels inserts a task and its label associations atomically
	CreateWithLabels(task *models.Task, labelIDs []uint64) error

	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks under the given scoped predicate
	List(params ListParams) ([]models.Task, int64, error)

	Update(task *models.Task) error

	// UpdateWithLabels saves the task's field changes and, when labelIDs is
	// non-nil, replaces the full label association set in the same
	// transaction. A failed replacement rolls the field changes back too.
	UpdateWithLabels(task *models.Task, labelIDs *[]uint64) error

	// Delete removes a task and cascades to its comments, attachments, and
	// label links in one transaction
	Delete(id uint64) error

	// AssignedProjectIDs returns the distinct ids of projects containing a
	// task assigned to the user
	AssignedProjectIDs(userID uint64) ([]uint64, error)

	// HasAssignedTaskInProject reports whether the user has at least one
	// task assigned within the project
	HasAssignedTaskInProject(projectID, userID uint64) (bool, error)

	// Count counts tasks under the given scoped predicate
	Count(e scope.Expr) (int64, error)

	// CompletionTimes returns the update timestamps of DONE tasks under the
	// scoped predicate, newest window first bounded by since
	CompletionTimes(e scope.Expr, since time.Time) ([]time.Time, error)
}

// LabelRepository defines the interface for label data access
type LabelRepository interface {
	Create(label *models.Label) error
	FindByID(id uint64, preload ...string) (*models.Label, error)
	ListByProject(projectID uint64) ([]models.Label, error)

	// CountInProject counts how many of the given label ids belong to the project
	CountInProject(projectID uint64, labelIDs []uint64) (int64, error)

	Update(label *models.Label) error

	// Delete removes a label and its task links in one transaction
	Delete(id uint64) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	FindByID(id uint64, preload ...string) (*models.Comment, error)

	// ListByTask returns a task's comments newest first
	ListByTask(taskID uint64) ([]models.Comment, error)

	Update(comment *models.Comment) error
	Delete(id uint64) error
}

// AttachmentRepository defines the interface for attachment metadata access
type AttachmentRepository interface {
	Create(attachment *models.Attachment) error
	FindByID(id uint64) (*models.Attachment, error)

	// ListByTask returns a task's attachments newest first
	ListByTask(taskID uint64) ([]models.Attachment, error)

	Delete(id uint64) error
}
