package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/materials-service/internal/cache"
	"github.com/SAP-F-2025/materials-service/internal/models"
	"github.com/SAP-F-2025/materials-service/internal/repositories"
)

type MaterialPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewMaterialPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.MaterialRepository {
	return &MaterialPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (r *MaterialPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts a new material and invalidates list caches
func (r *MaterialPostgreSQL) Create(ctx context.Context, tx *gorm.DB, material *models.Material) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(material).Error; err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, r.cacheManager.Material, fmt.Sprintf("owner:%d:*", material.UserID))
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Material, "list:*")
	return nil
}

// GetByID retrieves a material by ID with caching
func (r *MaterialPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Material, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var material models.Material

	err := r.cacheManager.Material.CacheOrExecute(ctx, cacheKey, &material, cache.MaterialCacheConfig.TTL, func() (interface{}, error) {
		var dbMaterial models.Material
		if err := r.getDB(tx).WithContext(ctx).First(&dbMaterial, id).Error; err != nil {
			return nil, err
		}
		return &dbMaterial, nil
	})
	if err != nil {
		return nil, err
	}

	return &material, nil
}

// GetByIDWithOwner retrieves a material joined with a minimal owner
// projection. The cache stores an entry type because Material.Owner is
// excluded from the model's JSON.
func (r *MaterialPostgreSQL) GetByIDWithOwner(ctx context.Context, tx *gorm.DB, id uint) (*models.Material, error) {
	cacheKey := fmt.Sprintf("owner_view:%d", id)
	var entry materialOwnerViewEntry

	err := r.cacheManager.Material.CacheOrExecute(ctx, cacheKey, &entry, cache.MaterialCacheConfig.TTL, func() (interface{}, error) {
		var dbMaterial models.Material
		err := r.getDB(tx).WithContext(ctx).
			Preload("Owner", func(db *gorm.DB) *gorm.DB {
				return db.Select("id", "name")
			}).
			First(&dbMaterial, id).Error
		if err != nil {
			return nil, err
		}
		return newMaterialOwnerViewEntry(&dbMaterial), nil
	})
	if err != nil {
		return nil, err
	}

	return entry.material(), nil
}

// Update saves the full record and invalidates caches
func (r *MaterialPostgreSQL) Update(ctx context.Context, tx *gorm.DB, material *models.Material) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(material).Error; err != nil {
		return fmt.Errorf("failed to update material: %w", err)
	}

	cache.InvalidateMaterialCache(ctx, r.cacheManager, material.ID, material.UserID)
	return nil
}

// UpdateFields applies a partial update and invalidates caches
func (r *MaterialPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	db := r.getDB(tx)
	result := db.WithContext(ctx).Model(&models.Material{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update material fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.SafeDelete(ctx, r.cacheManager.Material,
		fmt.Sprintf("id:%d", id),
		fmt.Sprintf("owner_view:%d", id))
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Material, "list:*")
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Material, "owner:*")
	return nil
}

// Delete soft-deletes a material and invalidates caches
func (r *MaterialPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Material{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete material: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.SafeDelete(ctx, r.cacheManager.Material,
		fmt.Sprintf("id:%d", id),
		fmt.Sprintf("owner_view:%d", id))
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Material, "list:*")
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Material, "owner:*")
	cache.SafeDelete(ctx, r.cacheManager.Exists, fmt.Sprintf("material:%d", id))
	return nil
}

// UpdateFile persists attachment metadata after a successful upload
func (r *MaterialPostgreSQL) UpdateFile(ctx context.Context, tx *gorm.DB, id uint, fileURL, fileType string) error {
	return r.UpdateFields(ctx, tx, id, map[string]interface{}{
		"file_url":  fileURL,
		"file_type": fileType,
	})
}

// List returns materials matching the filters with a total count
func (r *MaterialPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.MaterialFilters) ([]*models.Material, int64, error) {
	db := r.getDB(tx)
	var materials []*models.Material
	var total int64

	query := db.WithContext(ctx).Model(&models.Material{}).
		Preload("Owner", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		})

	query = r.helpers.ApplyMaterialFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count materials: %w", err)
	}

	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&materials).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list materials: %w", err)
	}

	return materials, total, nil
}

// ExistsByID checks material existence with a short-lived cache
func (r *MaterialPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	cacheKey := fmt.Sprintf("material:%d", id)
	var exists bool

	err := r.cacheManager.Exists.CacheOrExecute(ctx, cacheKey, &exists, cache.ExistsCacheConfig.TTL, func() (interface{}, error) {
		var count int64
		err := r.getDB(tx).WithContext(ctx).
			Model(&models.Material{}).
			Where("id = ?", id).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check material existence: %w", err)
		}
		return count > 0, nil
	})
	if err != nil {
		return false, err
	}

	return exists, nil
}

// GetStats returns aggregate counts for reporting
func (r *MaterialPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB) (*repositories.MaterialStats, error) {
	db := r.getDB(tx)
	stats := &repositories.MaterialStats{}

	if err := db.WithContext(ctx).Model(&models.Material{}).Count(&stats.TotalMaterials).Error; err != nil {
		return nil, fmt.Errorf("failed to count materials: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Material{}).Where("file_url IS NOT NULL").Count(&stats.WithFile).Error; err != nil {
		return nil, fmt.Errorf("failed to count materials with files: %w", err)
	}
	if err := db.WithContext(ctx).Model(&models.Material{}).Distinct("user_id").Count(&stats.OwnerCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count material owners: %w", err)
	}

	return stats, nil
}
