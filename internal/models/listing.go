package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category classifies what a listing offers.
type Category string

const (
	CategoryPets         Category = "Pets"
	CategoryFood         Category = "Food"
	CategoryAccessories  Category = "Accessories"
	CategoryCareProducts Category = "Care Products"
)

// Categories lists every accepted category in display order.
var Categories = []Category{CategoryPets, CategoryFood, CategoryAccessories, CategoryCareProducts}

// IsValid reports whether c is one of the known categories. Matching is exact.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Listing is an item or pet offered for sale or adoption.
type Listing struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Category    Category           `bson:"category" json:"category"`
	Price       float64            `bson:"price" json:"price"`
	Location    string             `bson:"location" json:"location"`
	Description string             `bson:"description" json:"description"`
	Image       string             `bson:"image" json:"image"`
	Email       string             `bson:"email" json:"email"` // owner contact
	Date        time.Time          `bson:"date" json:"date"`   // pickup date
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
