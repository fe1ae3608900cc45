package events

import (
	"context"
	"time"
)

// Event source for everything this service publishes.
const Source = "materials-service"

// Event types emitted on the materials stream.
const (
	TypeMaterialCreated      = "material.created"
	TypeMaterialUpdated      = "material.updated"
	TypeMaterialDeleted      = "material.deleted"
	TypeMaterialFileAttached = "material.file_attached"
	TypeUserRegistered       = "user.registered"
)

// Event is the envelope published for every domain event.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// EventPublisher publishes domain events to the configured stream.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
