package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/materials-service/internal/models"
	"github.com/SAP-F-2025/materials-service/internal/repositories"
)

// fakeUserRepo is an in-memory UserRepository for service tests.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User

	failUpdateLastLogin bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		nextID: 1,
		users:  make(map[uint]*models.User),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error {
	if r.failUpdateLastLogin {
		return fmt.Errorf("update last login failed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.LastLogin = &at
	return nil
}

func (r *fakeUserRepo) SetResetPasswordToken(ctx context.Context, tx *gorm.DB, id uint, token string, expire time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.ResetPasswordToken = &token
	user.ResetPasswordExpire = &expire
	return nil
}

func (r *fakeUserRepo) GetByResetPasswordToken(ctx context.Context, tx *gorm.DB, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, user := range r.users {
		if user.ResetPasswordToken != nil && *user.ResetPasswordToken == token &&
			user.ResetPasswordExpire != nil && user.ResetPasswordExpire.After(now) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, user := range r.users {
		copied := *user
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Search(ctx context.Context, tx *gorm.DB, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return r.List(ctx, tx, filters)
}

func (r *fakeUserRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, tx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// fakeMaterialRepo is an in-memory MaterialRepository for service tests.
type fakeMaterialRepo struct {
	mu        sync.Mutex
	nextID    uint
	materials map[uint]*models.Material
	owners    map[uint]*models.User

	failUpdateFile bool
}

func newFakeMaterialRepo() *fakeMaterialRepo {
	return &fakeMaterialRepo{
		nextID:    1,
		materials: make(map[uint]*models.Material),
		owners:    make(map[uint]*models.User),
	}
}

func (r *fakeMaterialRepo) Create(ctx context.Context, tx *gorm.DB, material *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	material.ID = r.nextID
	r.nextID++
	material.CreatedAt = time.Now()
	material.UpdatedAt = time.Now()
	copied := *material
	r.materials[material.ID] = &copied
	return nil
}

func (r *fakeMaterialRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	material, ok := r.materials[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *material
	return &copied, nil
}

func (r *fakeMaterialRepo) GetByIDWithOwner(ctx context.Context, tx *gorm.DB, id uint) (*models.Material, error) {
	material, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.owners[material.UserID]; ok {
		material.Owner = *owner
	}
	return material, nil
}

func (r *fakeMaterialRepo) Update(ctx context.Context, tx *gorm.DB, material *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.materials[material.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *material
	r.materials[material.ID] = &copied
	return nil
}

func (r *fakeMaterialRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	material, ok := r.materials[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			material.Title = v.(string)
		case "description":
			s := v.(string)
			material.Description = &s
		case "subject":
			s := v.(string)
			material.Subject = &s
		case "content":
			s := v.(string)
			material.Content = &s
		}
	}
	material.UpdatedAt = time.Now()
	return nil
}

func (r *fakeMaterialRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.materials[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.materials, id)
	return nil
}

func (r *fakeMaterialRepo) UpdateFile(ctx context.Context, tx *gorm.DB, id uint, fileURL, fileType string) error {
	if r.failUpdateFile {
		return fmt.Errorf("update file failed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	material, ok := r.materials[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	material.FileURL = &fileURL
	material.FileType = &fileType
	return nil
}

func (r *fakeMaterialRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.MaterialFilters) ([]*models.Material, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Material
	for _, material := range r.materials {
		if filters.Subject != nil && (material.Subject == nil || *material.Subject != *filters.Subject) {
			continue
		}
		if filters.OwnerID != nil && material.UserID != *filters.OwnerID {
			continue
		}
		copied := *material
		out = append(out, &copied)
	}
	total := int64(len(out))
	if filters.Offset > 0 && filters.Offset < len(out) {
		out = out[filters.Offset:]
	} else if filters.Offset >= len(out) {
		out = nil
	}
	if filters.Limit > 0 && filters.Limit < len(out) {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func (r *fakeMaterialRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.materials[id]
	return ok, nil
}

func (r *fakeMaterialRepo) GetStats(ctx context.Context, tx *gorm.DB) (*repositories.MaterialStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &repositories.MaterialStats{TotalMaterials: int64(len(r.materials))}
	owners := make(map[uint]struct{})
	for _, m := range r.materials {
		if m.HasFile() {
			stats.WithFile++
		}
		owners[m.UserID] = struct{}{}
	}
	stats.OwnerCount = int64(len(owners))
	return stats, nil
}

// fakeRepository aggregates the fakes behind the Repository interface.
type fakeRepository struct {
	materials *fakeMaterialRepo
	users     *fakeUserRepo
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		materials: newFakeMaterialRepo(),
		users:     newFakeUserRepo(),
	}
}

func (r *fakeRepository) Material() repositories.MaterialRepository { return r.materials }
func (r *fakeRepository) User() repositories.UserRepository         { return r.users }

func (r *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *fakeRepository) Ping(ctx context.Context) error { return nil }
func (r *fakeRepository) Close() error                   { return nil }

// fakeFileStore records saves and removes.
type fakeFileStore struct {
	mu      sync.Mutex
	saved   []string
	removed []string

	failSave bool
}

func (s *fakeFileStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if s.failSave {
		return "", fmt.Errorf("save failed")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, name)
	return "/uploads/" + name, nil
}

func (s *fakeFileStore) Remove(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, name)
	return nil
}
