package domain

import (
	"errors"
	"time"
)

// ProductCategory groups catalog entries for the POS grid.
type ProductCategory string

const (
	CategoryFood     ProductCategory = "FOOD"
	CategoryBeverage ProductCategory = "BEVERAGE"
	CategorySnack    ProductCategory = "SNACK"
)

var ErrProductNotFound = errors.New("product not found")
var ErrInvalidProduct = errors.New("invalid product")

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c ProductCategory) bool {
	switch c {
	case CategoryFood, CategoryBeverage, CategorySnack:
		return true
	}
	return false
}

// Product is a catalog entry. Price is in points and is the authoritative
// charge amount at checkout time. Products are never deleted.
type Product struct {
	ID        string          `json:"id" bson:"_id,omitempty"`
	Name      string          `json:"name" bson:"name"`
	Price     float64         `json:"price" bson:"price"`
	Category  ProductCategory `json:"category" bson:"category"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
}
