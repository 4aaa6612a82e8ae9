package services

import (
	"context"
	"fmt"
	"log"

	"productapi/internal/models"
	"productapi/internal/repositories"
)

// EventPublisher delivers product lifecycle events to other systems.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil, in which
// case no events are published.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// GetAllProducts retrieves all products, most expensive first.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct stores a new, available product.
func (s *ProductService) CreateProduct(ctx context.Context, name string, price float64) (*models.Product, error) {
	product := models.NewProduct(name, price)
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}
	s.publish(models.EventProductCreated, product)
	return &product, nil
}

// UpdateProduct merges patch onto the stored product.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := models.Merge(*existing, patch)
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to save product %d: %w", id, err)
	}
	s.publish(models.EventProductUpdated, updated)
	return &updated, nil
}

// ToggleAvailability flips the stored availability of a product.
func (s *ProductService) ToggleAvailability(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Availability = !product.Availability
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product %d: %w", id, err)
	}
	s.publish(models.EventProductAvailabilityChanged, *product)
	return product, nil
}

// DeleteProduct permanently removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(models.EventProductDeleted, *product)
	return nil
}

func (s *ProductService) publish(eventType string, product models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(models.NewProductEvent(eventType, product)); err != nil {
		log.Printf("Warning: failed to publish %s event for product %d: %v", eventType, product.ID, err)
	}
}
