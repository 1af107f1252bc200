package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"dispatch/internal/domain"
	"dispatch/internal/middleware"
	"dispatch/internal/service"
)

// RiderHandler handles HTTP requests for riders.
type RiderHandler struct {
	riderService *service.RiderService
	validate     *validatorv10.Validate
}

// NewRiderHandler creates a new RiderHandler.
func NewRiderHandler(riderService *service.RiderService) *RiderHandler {
	return &RiderHandler{
		riderService: riderService,
		validate:     newValidator(),
	}
}

// RegisterRiderRequest is the HTTP request body for rider registration.
type RegisterRiderRequest struct {
	ID    string `json:"id" validate:"omitempty,max=64"`
	Name  string `json:"name" validate:"required,max=128"`
	Phone string `json:"phone" validate:"required,max=32"`
}

// SetAvailabilityRequest is the HTTP request body for toggling availability.
type SetAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

// LocationResponse acknowledges a location update.
type LocationResponse struct {
	Status   string          `json:"status"`
	Location domain.Location `json:"location"`
}

// AvailabilityResponse acknowledges an availability change.
type AvailabilityResponse struct {
	Status      string `json:"status"`
	RiderID     string `json:"rider_id"`
	IsAvailable bool   `json:"is_available"`
}

// Register handles POST /api/riders
func (h *RiderHandler) Register(c *gin.Context) {
	var req RegisterRiderRequest
	if !bindAndValidate(c, &req, h.validate) {
		return
	}

	rider, err := h.riderService.Register(c.Request.Context(), service.RegisterRiderRequest{
		ID:    req.ID,
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, rider)
}

// UpdateLocation handles PUT /api/riders/location
func (h *RiderHandler) UpdateLocation(c *gin.Context) {
	var req placeRequest
	if !bindAndValidate(c, &req, h.validate) {
		return
	}

	place := req.place()
	loc, err := h.riderService.UpdateLocation(c.Request.Context(), service.UpdateLocationRequest{
		RiderID:   middleware.RiderID(c),
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
		Address:   place.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, LocationResponse{Status: "ok", Location: loc})
}

// SetAvailability handles PUT /api/riders/availability
func (h *RiderHandler) SetAvailability(c *gin.Context) {
	var req SetAvailabilityRequest
	if !bindAndValidate(c, &req, h.validate) {
		return
	}

	riderID := middleware.RiderID(c)
	if err := h.riderService.SetAvailability(c.Request.Context(), riderID, *req.IsAvailable); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, AvailabilityResponse{
		Status:      "ok",
		RiderID:     riderID,
		IsAvailable: *req.IsAvailable,
	})
}

// Me handles GET /api/riders/me
func (h *RiderHandler) Me(c *gin.Context) {
	profile, err := h.riderService.Profile(c.Request.Context(), middleware.RiderID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, profile)
}

// CurrentOrder handles GET /api/rider/current-order
func (h *RiderHandler) CurrentOrder(c *gin.Context) {
	order, err := h.riderService.CurrentOrder(c.Request.Context(), middleware.RiderID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no current order"})
		return
	}

	respondJSON(c, http.StatusOK, order)
}
