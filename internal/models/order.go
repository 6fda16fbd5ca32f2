package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order is a purchase or adoption request placed against a listing.
// Orders are append-only.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ProductID       primitive.ObjectID `bson:"productId" json:"productId"` // listing id, existence not enforced
	ProductName     string             `bson:"productName" json:"productName"`
	Category        Category           `bson:"category,omitempty" json:"category,omitempty"`
	BuyerName       string             `bson:"buyerName" json:"buyerName"`
	Email           string             `bson:"email" json:"email"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	Price           float64            `bson:"price" json:"price"`
	Address         string             `bson:"address" json:"address"`
	Phone           string             `bson:"phone" json:"phone"`
	Date            time.Time          `bson:"date" json:"date"`
	AdditionalNotes string             `bson:"additionalNotes" json:"additionalNotes"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
