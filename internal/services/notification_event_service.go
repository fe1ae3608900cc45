package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/materials-service/internal/events"
	"github.com/SAP-F-2025/materials-service/internal/models"
)

type notificationEventService struct {
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewNotificationEventService(publisher events.EventPublisher, logger *slog.Logger) NotificationEventService {
	return &notificationEventService{
		publisher: publisher,
		logger:    logger,
	}
}

func (s *notificationEventService) MaterialCreated(ctx context.Context, material *models.Material) error {
	return s.publish(ctx, events.TypeMaterialCreated, materialEventData(material))
}

func (s *notificationEventService) MaterialUpdated(ctx context.Context, material *models.Material) error {
	return s.publish(ctx, events.TypeMaterialUpdated, materialEventData(material))
}

func (s *notificationEventService) MaterialDeleted(ctx context.Context, materialID, ownerID uint) error {
	return s.publish(ctx, events.TypeMaterialDeleted, map[string]interface{}{
		"material_id": materialID,
		"owner_id":    ownerID,
	})
}

func (s *notificationEventService) MaterialFileAttached(ctx context.Context, material *models.Material) error {
	data := materialEventData(material)
	if material.FileURL != nil {
		data["file_url"] = *material.FileURL
	}
	if material.FileType != nil {
		data["file_type"] = *material.FileType
	}
	return s.publish(ctx, events.TypeMaterialFileAttached, data)
}

func (s *notificationEventService) UserRegistered(ctx context.Context, user *models.User) error {
	return s.publish(ctx, events.TypeUserRegistered, map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
	})
}

func (s *notificationEventService) publish(ctx context.Context, eventType string, data map[string]interface{}) error {
	event := &events.Event{
		Type: eventType,
		Data: data,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "error", err)
		return err
	}
	return nil
}

func materialEventData(material *models.Material) map[string]interface{} {
	return map[string]interface{}{
		"material_id": material.ID,
		"owner_id":    material.UserID,
		"title":       material.Title,
	}
}
