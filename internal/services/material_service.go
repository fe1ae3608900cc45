package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/materials-service/internal/models"
	"github.com/SAP-F-2025/materials-service/internal/repositories"
	"github.com/SAP-F-2025/materials-service/internal/storage"
	"github.com/SAP-F-2025/materials-service/internal/validator"
)

type materialService struct {
	repo        repositories.Repository
	db          *gorm.DB
	files       storage.FileStore
	events      NotificationEventService
	logger      *slog.Logger
	validator   *validator.Validator
	maxFileSize int64
}

func NewMaterialService(
	repo repositories.Repository,
	db *gorm.DB,
	files storage.FileStore,
	events NotificationEventService,
	logger *slog.Logger,
	validator *validator.Validator,
	maxFileSize int64,
) MaterialService {
	return &materialService{
		repo:        repo,
		db:          db,
		files:       files,
		events:      events,
		logger:      logger,
		validator:   validator,
		maxFileSize: maxFileSize,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *materialService) Create(ctx context.Context, req *CreateMaterialRequest, creator *models.User) (*MaterialResponse, error) {
	if creator == nil {
		return nil, ErrUnauthorized
	}

	s.logger.Info("Creating material", "creator_id", creator.ID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidateMaterialCreate(req); len(errs) > 0 {
		return nil, errs
	}

	material := &models.Material{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Subject:     req.Subject,
		Content:     req.Content,
		UserID:      creator.ID,
	}
	if req.Metadata != nil {
		material.Metadata = datatypes.JSONMap(req.Metadata)
	}

	err := s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		return r.Material().Create(ctx, nil, material)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	s.logger.Info("Material created", "material_id", material.ID, "owner_id", material.UserID)

	if err := s.events.MaterialCreated(ctx, material); err != nil {
		s.logger.Error("Failed to publish material created event", "error", err, "material_id", material.ID)
	}

	material.Owner = *creator
	return s.toResponse(material, creator), nil
}

func (s *materialService) GetByID(ctx context.Context, id uint, requester *models.User) (*MaterialResponse, error) {
	material, err := s.getMaterialWithOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.toResponse(material, requester), nil
}

func (s *materialService) Update(ctx context.Context, id uint, req *UpdateMaterialRequest, requester *models.User) (*MaterialResponse, error) {
	material, err := s.getMaterialWithOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canModify(material, requester) {
		return nil, NewPermissionError(requesterID(requester), id, "material", "update", "not owner or admin")
	}

	if errs := s.validator.GetBusinessValidator().ValidateMaterialUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	fields := s.buildUpdateFields(req)
	if err := s.repo.Material().UpdateFields(ctx, nil, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to update material: %w", err)
	}

	updated, err := s.getMaterialWithOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Material updated", "material_id", id, "requester_id", requesterID(requester))

	if err := s.events.MaterialUpdated(ctx, updated); err != nil {
		s.logger.Error("Failed to publish material updated event", "error", err, "material_id", id)
	}

	return s.toResponse(updated, requester), nil
}

func (s *materialService) Delete(ctx context.Context, id uint, requester *models.User) error {
	material, err := s.getMaterialWithOwner(ctx, id)
	if err != nil {
		return err
	}

	if !s.canModify(material, requester) {
		return NewPermissionError(requesterID(requester), id, "material", "delete", "not owner or admin")
	}

	if err := s.repo.Material().Delete(ctx, nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMaterialNotFound
		}
		return fmt.Errorf("failed to delete material: %w", err)
	}

	s.logger.Info("Material deleted", "material_id", id, "requester_id", requesterID(requester))

	if err := s.events.MaterialDeleted(ctx, id, material.UserID); err != nil {
		s.logger.Error("Failed to publish material deleted event", "error", err, "material_id", id)
	}

	return nil
}

func (s *materialService) List(ctx context.Context, filters repositories.MaterialFilters, requester *models.User) (*MaterialListResponse, error) {
	// Public listing: no ownership filtering beyond explicit filters.
	materials, total, err := s.repo.Material().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	responses := make([]*MaterialResponse, 0, len(materials))
	for _, m := range materials {
		responses = append(responses, s.toResponse(m, requester))
	}

	size := filters.Limit
	if size <= 0 {
		size = len(responses)
	}
	page := 1
	if size > 0 {
		page = (filters.Offset / size) + 1
	}

	return &MaterialListResponse{
		Materials: responses,
		Total:     total,
		Page:      page,
		Size:      size,
	}, nil
}

// ===== FILE ATTACHMENT =====

func (s *materialService) AttachFile(ctx context.Context, id uint, file *UploadedFile, requester *models.User) (*MaterialResponse, error) {
	material, err := s.getMaterialWithOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canModify(material, requester) {
		return nil, NewPermissionError(requesterID(requester), id, "material", "upload", "not owner or admin")
	}

	if file == nil {
		return nil, newUploadError(ErrNoFileUploaded, "Please upload a file")
	}
	if !strings.HasPrefix(file.MimeType, "application") {
		return nil, newUploadError(ErrInvalidFileType, "Please upload a valid file")
	}
	if file.Size > s.maxFileSize {
		return nil, newUploadError(ErrFileTooLarge,
			fmt.Sprintf("Please upload a file less than %d MB", s.maxFileSize/1_000_000))
	}

	// Deterministic name from the material id and the original extension.
	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("material_%d%s", id, ext)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read upload: %v", ErrInternal, err)
	}
	defer src.Close()

	fileURL, err := s.files.Save(ctx, name, src)
	if err != nil {
		s.logger.Error("File move failed", "error", err, "material_id", id, "file", name)
		return nil, fmt.Errorf("%w: problem with file upload", ErrInternal)
	}

	if err := s.repo.Material().UpdateFile(ctx, nil, id, fileURL, ext); err != nil {
		// Compensating cleanup so a failed metadata write never leaves an
		// unreferenced file behind.
		if rmErr := s.files.Remove(ctx, name); rmErr != nil {
			s.logger.Error("Orphan cleanup failed", "error", rmErr, "file", name)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to persist file metadata: %w", err)
	}

	// A previous attachment with a different extension is now unreferenced.
	if material.HasFile() && material.FileType != nil && *material.FileType != ext {
		stale := fmt.Sprintf("material_%d%s", id, *material.FileType)
		if rmErr := s.files.Remove(ctx, stale); rmErr != nil {
			s.logger.Error("Stale attachment cleanup failed", "error", rmErr, "file", stale)
		}
	}

	updated, err := s.getMaterialWithOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("File attached to material", "material_id", id, "file", name)

	if err := s.events.MaterialFileAttached(ctx, updated); err != nil {
		s.logger.Error("Failed to publish file attached event", "error", err, "material_id", id)
	}

	return s.toResponse(updated, requester), nil
}
