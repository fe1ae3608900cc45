package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/materials-service/internal/cache"
	"github.com/SAP-F-2025/materials-service/internal/models"
	"github.com/SAP-F-2025/materials-service/internal/repositories"
)

type UserPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts a new user. Email is expected lowercase by this point;
// the unique index is the last line of defense.
func (r *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, r.cacheManager.User, "list:*")
	return nil
}

// GetByID retrieves a user by ID with caching. Loaded on every
// authenticated request, so the cache matters here. The cache stores an
// entry type so the password hash and reset token survive the round trip.
func (r *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var entry userEntry

	err := r.cacheManager.User.CacheOrExecute(ctx, cacheKey, &entry, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := r.getDB(tx).WithContext(ctx).First(&dbUser, id).Error; err != nil {
			return nil, err
		}
		return newUserEntry(&dbUser), nil
	})
	if err != nil {
		return nil, err
	}

	return entry.user(), nil
}

// GetByEmail retrieves a user by email, matching the lowercase invariant.
func (r *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := r.getDB(tx)
	var user models.User

	err := db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Update saves the full user record and invalidates cached lookups
func (r *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	cache.InvalidateUserCache(ctx, r.cacheManager, user.ID, user.Email)
	return nil
}

// UpdateLastLogin records a successful authentication
func (r *UserPostgreSQL) UpdateLastLogin(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error {
	db := r.getDB(tx)
	err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", at).Error
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	cache.SafeDelete(ctx, r.cacheManager.User, fmt.Sprintf("id:%d", id))
	return nil
}

// SetResetPasswordToken stores the reset token and its expiry
func (r *UserPostgreSQL) SetResetPasswordToken(ctx context.Context, tx *gorm.DB, id uint, token string, expire time.Time) error {
	db := r.getDB(tx)
	err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reset_password_token":  token,
			"reset_password_expire": expire,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set reset password token: %w", err)
	}

	cache.SafeDelete(ctx, r.cacheManager.User, fmt.Sprintf("id:%d", id))
	return nil
}

// GetByResetPasswordToken finds the user holding an unexpired reset token
func (r *UserPostgreSQL) GetByResetPasswordToken(ctx context.Context, tx *gorm.DB, token string) (*models.User, error) {
	db := r.getDB(tx)
	var user models.User

	err := db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expire > ?", token, time.Now()).
		First(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// List returns users matching the filters with a total count
func (r *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := r.getDB(tx)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})
	query = r.helpers.ApplyUserFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query = r.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)

	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// Search returns users whose name or email matches the query
func (r *UserPostgreSQL) Search(ctx context.Context, tx *gorm.DB, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	filters.Query = query
	return r.List(ctx, tx, filters)
}

// ExistsByID checks user existence
func (r *UserPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := r.getDB(tx)
	var count int64

	err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return count > 0, nil
}

// ExistsByEmail checks whether the lowercase email is already taken
func (r *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	db := r.getDB(tx)
	var count int64

	err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return count > 0, nil
}
