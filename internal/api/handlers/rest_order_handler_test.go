package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pawmart/api/internal/api/handlers"
	"pawmart/api/internal/models"
	"pawmart/api/internal/services"
)

func newOrderRouter(svc services.IOrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewRestOrderHandler(svc)
	r := gin.New()
	r.GET("/orders", handler.ListOrders)
	r.GET("/orders/user/:email", handler.ListUserOrders)
	r.POST("/orders", handler.CreateOrder)
	return r
}

func TestRestOrderHandler_ListOrders(t *testing.T) {
	mockOrderSvc := new(MockOrderService)
	r := newOrderRouter(mockOrderSvc)

	orders := []models.Order{{ID: primitive.NewObjectID(), ProductName: "Dog Food", Quantity: 2}}
	mockOrderSvc.On("ListAll", mock.Anything).Return(orders, nil)
	mockOrderSvc.On("ListByBuyer", mock.Anything, "j@x.com").Return([]models.Order{}, nil)

	w := serve(r, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []models.Order
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Quantity)

	w = serve(r, http.MethodGet, "/orders/user/j@x.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", string(decodeEnvelope(t, w).Data))

	mockOrderSvc.AssertExpectations(t)
}

func TestRestOrderHandler_CreateOrder(t *testing.T) {
	mockOrderSvc := new(MockOrderService)
	r := newOrderRouter(mockOrderSvc)

	created := &models.Order{ID: primitive.NewObjectID(), ProductName: "Dog Food", BuyerName: "Jo", Quantity: 2, Price: 15}
	mockOrderSvc.On("CreateOrder", mock.Anything, mock.MatchedBy(func(f services.Fields) bool {
		return f["buyerName"] == "Jo" && f["quantity"] == 2.0
	})).Return(created, nil)

	body := `{"productId":"65a1b2c3d4e5f60718293a4b","productName":"Dog Food","buyerName":"Jo","email":"j@x.com",` +
		`"quantity":2,"price":15,"address":"1 Main","phone":"555","date":"2024-01-02"}`
	w := serve(r, http.MethodPost, "/orders", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, handlers.MsgOrderPlaced, env.Message)
	var got models.Order
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created.ID, got.ID)
	mockOrderSvc.AssertExpectations(t)
}

func TestRestOrderHandler_CreateOrder_PetQuantity(t *testing.T) {
	mockOrderSvc := new(MockOrderService)
	r := newOrderRouter(mockOrderSvc)

	mockOrderSvc.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, &services.ValidationError{Field: "quantity", Message: services.MsgPetQuantityMustBeOne})

	w := serve(r, http.MethodPost, "/orders", `{"productName":"Rex","category":"Pets","quantity":2}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "Pet adoption quantity must be 1", env.Message)
}
