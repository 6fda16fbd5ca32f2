package utils

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrMalformedObjectID is returned when a string is not a 24 character hex ObjectID.
var ErrMalformedObjectID = errors.New("malformed object id")

// ParseObjectID parses the 24 character hex form of a MongoDB ObjectID.
// Only the format is checked; whether a document carries the id is up to the caller.
func ParseObjectID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, ErrMalformedObjectID
	}
	return id, nil
}

// IsValidObjectID reports whether s parses with ParseObjectID.
func IsValidObjectID(s string) bool {
	_, err := ParseObjectID(s)
	return err == nil
}
