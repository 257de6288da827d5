package models

import (
	"time"
)

type Attachment struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"file_name"`
	OriginalName string    `gorm:"type:varchar(255);not null" json:"original_name"`
	MimeType     string    `gorm:"type:varchar(127);not null" json:"mime_type"`
	Size         int64     `gorm:"not null" json:"size"`
	TaskID       uint64    `gorm:"not null;index" json:"task_id"`
	UploaderID   uint64    `gorm:"not null" json:"uploader_id"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Task     Task `gorm:"foreignKey:TaskID" json:"-"`
	Uploader User `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
}
