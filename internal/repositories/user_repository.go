package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/materials-service/internal/models"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Basic CRUD
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error

	// Auth bookkeeping. A consumed reset token is cleared through Update,
	// which saves the nil token fields along with the new password hash.
	UpdateLastLogin(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error
	SetResetPasswordToken(ctx context.Context, tx *gorm.DB, id uint, token string, expire time.Time) error
	GetByResetPasswordToken(ctx context.Context, tx *gorm.DB, token string) (*models.User, error)

	// List and search operations
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	Search(ctx context.Context, tx *gorm.DB, query string, filters UserFilters) ([]*models.User, int64, error)

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}
