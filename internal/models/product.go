package models

import "time"

// NameMaxLength is the longest product name the name column stores.
const NameMaxLength = 100

// Product represents a product in the catalog.
type Product struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Price        float64   `json:"price" gorm:"not null;check:price > 0"`
	Availability bool      `json:"availability" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// NewProduct returns a product ready to be created. New products are always available.
func NewProduct(name string, price float64) Product {
	return Product{
		Name:         name,
		Price:        price,
		Availability: true,
	}
}

// ProductPatch carries the fields supplied by an update request.
// A nil field was not supplied and must be left untouched.
type ProductPatch struct {
	Name         *string
	Price        *float64
	Availability *bool
}

// Merge returns a copy of existing with only the fields present in patch overwritten.
// The ID and timestamps are never changed by a merge.
func Merge(existing Product, patch ProductPatch) Product {
	merged := existing
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Price != nil {
		merged.Price = *patch.Price
	}
	if patch.Availability != nil {
		merged.Availability = *patch.Availability
	}
	return merged
}
