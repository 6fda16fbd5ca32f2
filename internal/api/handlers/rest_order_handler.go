package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pawmart/api/internal/services"
)

// RestOrderHandler handles REST requests for orders. Orders are create-only.
type RestOrderHandler struct {
	orderService services.IOrderService
}

// NewRestOrderHandler creates a new RestOrderHandler.
func NewRestOrderHandler(orderService services.IOrderService) *RestOrderHandler {
	return &RestOrderHandler{orderService: orderService}
}

// ListOrders handles GET /orders
func (h *RestOrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListAll(c.Request.Context())
	if err != nil {
		sendServiceError(c, err)
		return
	}
	sendData(c, http.StatusOK, orders, "")
}

// ListUserOrders handles GET /orders/user/:email
func (h *RestOrderHandler) ListUserOrders(c *gin.Context) {
	orders, err := h.orderService.ListByBuyer(c.Request.Context(), c.Param("email"))
	if err != nil {
		sendServiceError(c, err)
		return
	}
	sendData(c, http.StatusOK, orders, "")
}

// CreateOrder handles POST /orders
func (h *RestOrderHandler) CreateOrder(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	order, err := h.orderService.CreateOrder(c.Request.Context(), fields)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	sendData(c, http.StatusCreated, order, MsgOrderPlaced)
}
