package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/materials-service/internal/models"
)

func (s *materialService) getMaterialWithOwner(ctx context.Context, id uint) (*models.Material, error) {
	material, err := s.repo.Material().GetByIDWithOwner(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return material, nil
}

// canModify compares the typed owner id, never string representations.
func (s *materialService) canModify(material *models.Material, requester *models.User) bool {
	if requester == nil {
		return false
	}
	if requester.IsAdmin() {
		return true
	}
	return material.UserID == requester.ID
}

func requesterID(requester *models.User) uint {
	if requester == nil {
		return 0
	}
	return requester.ID
}

func (s *materialService) toResponse(material *models.Material, requester *models.User) *MaterialResponse {
	resp := &MaterialResponse{
		Material:  material,
		CanEdit:   s.canModify(material, requester),
		CanDelete: s.canModify(material, requester),
	}
	if material.Owner.ID != 0 {
		owner := material.Owner.OwnerInfo()
		resp.Owner = &owner
	}
	return resp
}

func (s *materialService) buildUpdateFields(req *UpdateMaterialRequest) map[string]interface{} {
	fields := make(map[string]interface{})
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Subject != nil {
		fields["subject"] = *req.Subject
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if req.Metadata != nil {
		fields["metadata"] = datatypes.JSONMap(req.Metadata)
	}
	return fields
}
