package services

import "errors"

var (
	// ErrInvalidListingID means the id is not a well-formed ObjectID. No store call was made.
	ErrInvalidListingID = errors.New("invalid listing id")
	// ErrListingNotFound means the id was well-formed but matched no listing.
	ErrListingNotFound = errors.New("listing not found")
	// ErrOrderNotFound is only surfaced to background tasks; orders have no lookup route.
	ErrOrderNotFound = errors.New("order not found")
)

// ValidationError reports the first input field that failed validation.
// Message is safe to return to the client as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
