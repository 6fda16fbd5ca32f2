package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pawmart/api/internal/models"
	"pawmart/api/internal/services"
)

const (
	// MsgServerRunning is the root endpoint greeting.
	MsgServerRunning = "PawMart Server is Running!"
	MsgHealthy       = "All dependencies are reachable"
	MsgDegraded      = "One or more dependencies are unreachable"
)

// endpointMap is the API map served at GET /.
var endpointMap = gin.H{
	"listings": gin.H{
		"all":        "GET /listings",
		"recent":     "GET /listings/recent",
		"byCategory": "GET /listings/category/:category",
		"byUser":     "GET /listings/user/:email",
		"search":     "GET /listings/search/:query",
		"single":     "GET /listings/:id",
		"create":     "POST /listings",
		"update":     "PUT /listings/:id",
		"delete":     "DELETE /listings/:id",
	},
	"orders": gin.H{
		"all":    "GET /orders",
		"byUser": "GET /orders/user/:email",
		"create": "POST /orders",
	},
	"uploads": gin.H{
		"listingImage": "POST /uploads/listing-image",
	},
	"health": "GET /health",
}

// RestMetaHandler serves the root and health endpoints.
type RestMetaHandler struct {
	healthService services.IHealthService
	databaseName  string
}

// NewRestMetaHandler creates a new RestMetaHandler.
func NewRestMetaHandler(healthService services.IHealthService, databaseName string) *RestMetaHandler {
	return &RestMetaHandler{healthService: healthService, databaseName: databaseName}
}

// Root handles GET /
func (h *RestMetaHandler) Root(c *gin.Context) {
	report := h.healthService.Check(c.Request.Context())
	sendData(c, http.StatusOK, gin.H{
		"database":  h.databaseName,
		"status":    report.Mongo,
		"endpoints": endpointMap,
	}, MsgServerRunning)
}

// Health handles GET /health. Any unreachable dependency turns the response into a 503.
func (h *RestMetaHandler) Health(c *gin.Context) {
	report := h.healthService.Check(c.Request.Context())
	if !report.Healthy {
		c.JSON(http.StatusServiceUnavailable, models.Envelope{Success: false, Data: report, Message: MsgDegraded})
		return
	}
	sendData(c, http.StatusOK, report, MsgHealthy)
}
