package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/materials-service/internal/models"
)

// MaterialRepository defines persistence operations for materials.
type MaterialRepository interface {
	// Basic CRUD
	Create(ctx context.Context, tx *gorm.DB, material *models.Material) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Material, error)
	GetByIDWithOwner(ctx context.Context, tx *gorm.DB, id uint) (*models.Material, error)
	Update(ctx context.Context, tx *gorm.DB, material *models.Material) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// File attachment metadata
	UpdateFile(ctx context.Context, tx *gorm.DB, id uint, fileURL, fileType string) error

	// Query operations. Owner-scoped reads go through List with
	// MaterialFilters.OwnerID set.
	List(ctx context.Context, tx *gorm.DB, filters MaterialFilters) ([]*models.Material, int64, error)

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)

	// Statistics
	GetStats(ctx context.Context, tx *gorm.DB) (*MaterialStats, error)
}
