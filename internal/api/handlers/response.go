package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pawmart/api/internal/models"
	"pawmart/api/internal/services"
)

// Client-facing messages for the listing and order routes.
const (
	MsgInvalidListingID = "Invalid listing ID"
	MsgListingNotFound  = "Listing not found"
	MsgListingCreated   = "Listing created successfully"
	MsgListingUpdated   = "Listing updated successfully"
	MsgListingDeleted   = "Listing deleted successfully"
	MsgOrderPlaced      = "Order placed successfully"
	MsgInvalidBody      = "Request body must be a JSON object"
)

func sendData(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, models.Envelope{Success: true, Data: data, Message: message})
}

func sendMessage(c *gin.Context, status int, message string) {
	c.JSON(status, models.Envelope{Success: true, Message: message})
}

func sendFailure(c *gin.Context, status int, message string) {
	c.JSON(status, models.Envelope{Success: false, Message: message})
}

// sendServiceError maps a service error onto the status taxonomy. Anything unclassified
// is a store failure and goes out as a 500 carrying the raw error text.
func sendServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		sendFailure(c, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, services.ErrInvalidListingID):
		sendFailure(c, http.StatusBadRequest, MsgInvalidListingID)
	case errors.Is(err, services.ErrListingNotFound):
		sendFailure(c, http.StatusNotFound, MsgListingNotFound)
	default:
		_ = c.Error(err)
		sendFailure(c, http.StatusInternalServerError, err.Error())
	}
}

// bindFields decodes a JSON object body. A body that is not an object is rejected with 400.
func bindFields(c *gin.Context) (services.Fields, bool) {
	var fields services.Fields
	if err := c.ShouldBindJSON(&fields); err != nil || fields == nil {
		sendFailure(c, http.StatusBadRequest, MsgInvalidBody)
		return nil, false
	}
	return fields, true
}
