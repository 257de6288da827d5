package repository

import (
	"time"

	"github.com/kzmshx/taskhub/internal/models"
	"github.com/kzmshx/taskhub/internal/scope"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithLabels inserts a task and its label associations atomically.
// Either the task row and every link row land together or none do.
func (r *GormTaskRepository) CreateWithLabels(task *models.Task, labelIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		if len(labelIDs) == 0 {
			return nil
		}

		labels := make([]models.Label, len(labelIDs))
		for i, id := range labelIDs {
			labels[i] = models.Label{ID: id}
		}
		return tx.Model(task).Association("Labels").Append(labels)
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks under the given scoped predicate. The total is
// counted from the same predicate as the page of results.
func (r *GormTaskRepository) List(params ListParams) ([]models.Task, int64, error) {
	query := applyScope(r.db.Model(&models.Task{}), params.Scope)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	offset := (params.Page - 1) * params.PageSize
	err := query.
		Order(orderClause(params.Sort)).
		Offset(offset).
		Limit(params.PageSize).
		Preload("Assignee").
		Preload("Project").
		Preload("Labels").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// UpdateWithLabels saves the task's fields and, when labelIDs is non-nil,
// replaces the full label association set in the same transaction. Partial
// application is never observable: a failed replacement rolls the field
// changes back with it.
func (r *GormTaskRepository) UpdateWithLabels(task *models.Task, labelIDs *[]uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}

		if labelIDs == nil {
			return nil
		}

		if err := tx.Exec("DELETE FROM task_labels WHERE task_id = ?", task.ID).Error; err != nil {
			return err
		}
		if len(*labelIDs) == 0 {
			return nil
		}

		labels := make([]models.Label, len(*labelIDs))
		for i, id := range *labelIDs {
			labels[i] = models.Label{ID: id}
		}
		return tx.Model(&models.Task{ID: task.ID}).Association("Labels").Append(labels)
	})
}

// Delete removes a task and its comments, attachments, and label links in
// one transaction
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM task_labels WHERE task_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, id).Error
	})
}

// AssignedProjectIDs returns the distinct ids of projects containing a task
// assigned to the user
func (r *GormTaskRepository) AssignedProjectIDs(userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.Task{}).
		Distinct("project_id").
		Where("assignee_id = ?", userID).
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// HasAssignedTaskInProject reports whether the user has at least one task
// assigned within the project
func (r *GormTaskRepository) HasAssignedTaskInProject(projectID, userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("project_id = ? AND assignee_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts tasks under the given scoped predicate
func (r *GormTaskRepository) Count(e scope.Expr) (int64, error) {
	var count int64
	err := applyScope(r.db.Model(&models.Task{}), e).Count(&count).Error
	return count, err
}

// CompletionTimes returns the update timestamps of DONE tasks under the
// scoped predicate since the given time
func (r *GormTaskRepository) CompletionTimes(e scope.Expr, since time.Time) ([]time.Time, error) {
	done := scope.Conj(
		e,
		scope.Cond{Column: "tasks.status", Op: scope.OpEq, Value: models.TaskStatusDone},
		scope.Cond{Column: "tasks.updated_at", Op: scope.OpGte, Value: since},
	)

	var times []time.Time
	err := applyScope(r.db.Model(&models.Task{}), done).
		Pluck("updated_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}
