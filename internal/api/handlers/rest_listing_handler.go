package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pawmart/api/internal/services"
	"pawmart/api/internal/utils"
)

// RestListingHandler handles REST requests for listings.
type RestListingHandler struct {
	listingService services.IListingService
	recentLimit    int
}

// NewRestListingHandler creates a new RestListingHandler. recentLimit sizes GET /listings/recent;
// it can shrink the feed but never grow it past services.DefaultRecentLimit.
func NewRestListingHandler(listingService services.IListingService, recentLimit int) *RestListingHandler {
	if recentLimit <= 0 || recentLimit > services.DefaultRecentLimit {
		recentLimit = services.DefaultRecentLimit
	}
	return &RestListingHandler{
		listingService: listingService,
		recentLimit:    recentLimit,
	}
}

// ListListings handles GET /listings
func (h *RestListingHandler) ListListings(c *gin.Context) {
	listings, err := h.listingService.ListAll(c.Request.Context())
	if err != nil {
		sendServiceError(c, err)
		return
	}
	sendData(c, http.StatusOK, listings, "")
}

// ListRecentListings handles GET /listings/recent
func (h *RestListingHandler) ListRecentListings(c *gin.Context) {
	listings, err := h.listingService.ListRecent(c.Request.Context(), h.recentLimit)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	sendData(c, http.StatusOK, listings, "")
}

// ListListingsByCategory handles GET /listings/category/:category
func (h *RestListingHandler) ListListingsByCategory(c *gin.Context) {
	listings, err := h.listingService.ListByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		sendServiceError(c, err)
		return
	}
	sendData(c, http.StatusOK, listings, "")
}

// ListUserListings handles GET /listings/user/:email
func (h *RestListingHandler) ListUserListings(c *gin.Context) {
	listings, err := h.listingService.ListByOwner(c.Request.Context(), c.Param("email"))
	if err != nil {
		sendServiceError(c, err)
		return
	}
	sendData(c, http.StatusOK, listings, "")
}

// SearchListings handles GET /listings/search/:query
func (h *RestListingHandler) SearchListings(c *gin.Context) {
	listings, err := h.listingService.Search(c.Request.Context(), c.Param("query"))
	if err != nil {
		sendServiceError(c, err)
		return
	}
	sendData(c, http.StatusOK, listings, "")
}

// GetListingByID handles GET /listings/:id
func (h *RestListingHandler) GetListingByID(c *gin.Context) {
	listing, err := h.listingService.FindListingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendServiceError(c, err)
		return
	}
	sendData(c, http.StatusOK, listing, "")
}

// CreateListing handles POST /listings
func (h *RestListingHandler) CreateListing(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	listing, err := h.listingService.CreateListing(c.Request.Context(), fields)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	sendData(c, http.StatusCreated, listing, MsgListingCreated)
}

// UpdateListing handles PUT /listings/:id. The id is checked before the body is read.
func (h *RestListingHandler) UpdateListing(c *gin.Context) {
	id := c.Param("id")
	if !utils.IsValidObjectID(id) {
		sendFailure(c, http.StatusBadRequest, MsgInvalidListingID)
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	if err := h.listingService.UpdateListingUnchecked(c.Request.Context(), id, fields); err != nil {
		sendServiceError(c, err)
		return
	}
	sendMessage(c, http.StatusOK, MsgListingUpdated)
}

// DeleteListing handles DELETE /listings/:id
func (h *RestListingHandler) DeleteListing(c *gin.Context) {
	if err := h.listingService.DeleteListing(c.Request.Context(), c.Param("id")); err != nil {
		sendServiceError(c, err)
		return
	}
	sendMessage(c, http.StatusOK, MsgListingDeleted)
}
