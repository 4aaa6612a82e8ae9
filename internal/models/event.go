package models

import (
	"time"

	"github.com/google/uuid"
)

// Product lifecycle event types.
const (
	EventProductCreated             = "product.created"
	EventProductUpdated             = "product.updated"
	EventProductAvailabilityChanged = "product.availability_changed"
	EventProductDeleted             = "product.deleted"
)

// ProductEvent is published after a product has been mutated.
type ProductEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Product    Product   `json:"product"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewProductEvent stamps an event with a fresh ID and the current time.
func NewProductEvent(eventType string, product Product) ProductEvent {
	return ProductEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
}
