package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"dispatch/internal/domain"
	"dispatch/internal/middleware"
	"dispatch/internal/service"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService *service.OrderService
	validate     *validatorv10.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validate:     newValidator(),
	}
}

// CreateOrderRequest is the HTTP request body for placing an order.
type CreateOrderRequest struct {
	RestaurantID       string       `json:"restaurant_id" validate:"required,max=64"`
	RestaurantLocation placeRequest `json:"restaurant_location"`
	DeliveryAddress    placeRequest `json:"delivery_address"`
}

// UpdateStatusRequest is the HTTP request body for an order transition.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,order_status"`
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if !bindAndValidate(c, &req, h.validate) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), service.CreateOrderRequest{
		CustomerID:         middleware.CustomerID(c),
		RestaurantID:       req.RestaurantID,
		RestaurantLocation: req.RestaurantLocation.place(),
		DeliveryAddress:    req.DeliveryAddress.place(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, order)
}

// Get handles GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, order)
}

// OrderHistoryResponse lists an order's recorded transitions.
type OrderHistoryResponse struct {
	OrderID string              `json:"order_id"`
	Events  []domain.OrderEvent `json:"events"`
}

// History handles GET /api/orders/:id/events
func (h *OrderHandler) History(c *gin.Context) {
	orderID := c.Param("id")
	events, err := h.orderService.History(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, OrderHistoryResponse{OrderID: orderID, Events: events})
}

// UpdateStatus handles PUT /api/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !bindAndValidate(c, &req, h.validate) {
		return
	}

	order, err := h.orderService.Transition(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, order)
}
