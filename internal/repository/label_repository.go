package repository

import (
	"github.com/kzmshx/taskhub/internal/models"
	"gorm.io/gorm"
)

// GormLabelRepository is a GORM implementation of LabelRepository
type GormLabelRepository struct {
	db *gorm.DB
}

// NewLabelRepository creates a new LabelRepository
func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &GormLabelRepository{db: db}
}

// Create creates a new label
func (r *GormLabelRepository) Create(label *models.Label) error {
	return r.db.Create(label).Error
}

// FindByID finds a label by ID with optional preloading
func (r *GormLabelRepository) FindByID(id uint64, preload ...string) (*models.Label, error) {
	var label models.Label
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&label, id).Error; err != nil {
		return nil, err
	}

	return &label, nil
}

// ListByProject returns all labels of a project
func (r *GormLabelRepository) ListByProject(projectID uint64) ([]models.Label, error) {
	var labels []models.Label
	err := r.db.Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&labels).Error
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// CountInProject counts how many of the given label ids belong to the project
func (r *GormLabelRepository) CountInProject(projectID uint64, labelIDs []uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Label{}).
		Where("project_id = ? AND id IN ?", projectID, labelIDs).
		Count(&count).Error
	return count, err
}

// Update updates a label
func (r *GormLabelRepository) Update(label *models.Label) error {
	return r.db.Save(label).Error
}

// Delete removes a label and its task links in one transaction
func (r *GormLabelRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_labels WHERE label_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Label{}, id).Error
	})
}
