package services

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/SAP-F-2025/materials-service/internal/models"
	"github.com/SAP-F-2025/materials-service/internal/repositories"
	"github.com/SAP-F-2025/materials-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type ForgotPasswordRequest = validator.ForgotPasswordRequest
type ResetPasswordRequest = validator.ResetPasswordRequest
type CreateMaterialRequest = validator.MaterialCreateRequest
type UpdateMaterialRequest = validator.MaterialUpdateRequest

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
	User      *models.User `json:"user"`
}

type MaterialResponse struct {
	*models.Material
	Owner     *models.OwnerInfo `json:"owner,omitempty"`
	CanEdit   bool              `json:"can_edit"`
	CanDelete bool              `json:"can_delete"`
}

type MaterialListResponse struct {
	Materials []*MaterialResponse `json:"materials"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Size      int                 `json:"size"`
}

// UploadedFile is the slice of a multipart upload the service needs.
type UploadedFile struct {
	Filename string
	MimeType string
	Size     int64
	Open     func() (multipart.File, error)
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) (string, error)
	ResetPassword(ctx context.Context, token string, req *ResetPasswordRequest) (*AuthResponse, error)
}

type MaterialService interface {
	Create(ctx context.Context, req *CreateMaterialRequest, creator *models.User) (*MaterialResponse, error)
	GetByID(ctx context.Context, id uint, requester *models.User) (*MaterialResponse, error)
	Update(ctx context.Context, id uint, req *UpdateMaterialRequest, requester *models.User) (*MaterialResponse, error)
	Delete(ctx context.Context, id uint, requester *models.User) error
	List(ctx context.Context, filters repositories.MaterialFilters, requester *models.User) (*MaterialListResponse, error)
	AttachFile(ctx context.Context, id uint, file *UploadedFile, requester *models.User) (*MaterialResponse, error)
}

type NotificationEventService interface {
	MaterialCreated(ctx context.Context, material *models.Material) error
	MaterialUpdated(ctx context.Context, material *models.Material) error
	MaterialDeleted(ctx context.Context, materialID, ownerID uint) error
	MaterialFileAttached(ctx context.Context, material *models.Material) error
	UserRegistered(ctx context.Context, user *models.User) error
}

type ImportExportService interface {
	// ExportMaterials writes an xlsx report of materials matching the
	// filters to w.
	ExportMaterials(ctx context.Context, w io.Writer, filters repositories.MaterialFilters) error
}

// ServiceManager provides access to all services and owns their lifecycle.
type ServiceManager interface {
	Auth() AuthService
	Material() MaterialService
	Notification() NotificationEventService
	ImportExport() ImportExportService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}
