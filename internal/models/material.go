package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Material struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`
	Subject     *string `json:"subject" gorm:"size:100;index"`
	Content     *string `json:"content" gorm:"type:text"`

	// Arbitrary publisher-provided attributes (grade level, language, ...).
	Metadata datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`

	// Attached file, set only by a successful upload.
	FileURL  *string `json:"file_url" gorm:"size:500"`
	FileType *string `json:"file_type" gorm:"size:20"`

	// Ownership
	UserID uint `json:"user_id" gorm:"not null;index"`
	Owner  User `json:"-" gorm:"foreignKey:UserID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Material) TableName() string {
	return "materials"
}

// HasFile reports whether an upload has been attached.
func (m *Material) HasFile() bool {
	return m.FileURL != nil && *m.FileURL != ""
}
