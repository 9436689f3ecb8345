package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/application"
	"github.com/parkmate/service-parking/internal/pkg/auth"
	"github.com/parkmate/service-parking/internal/pkg/middleware"
	"github.com/parkmate/service-parking/internal/pkg/response"
)

// WashBookingHandler handles HTTP requests for standalone wash bookings.
type WashBookingHandler struct {
	service *application.WashBookingService
}

// NewWashBookingHandler creates a new WashBookingHandler.
func NewWashBookingHandler(service *application.WashBookingService) *WashBookingHandler {
	return &WashBookingHandler{service: service}
}

// RegisterRoutes registers all wash booking routes on the given router
// group.
func (h *WashBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	washes := r.Group("/api/v1/wash-bookings")
	washes.Use(middleware.AuthMiddleware(jwtManager))
	{
		washes.POST("", middleware.RequireRole(auth.RoleUser), h.CreateWashBooking)
		washes.GET("", h.ListWashBookings)
		washes.GET("/:id", h.GetWashBooking)
		washes.POST("/:id/verify-payment", middleware.RequireRole(auth.RoleOwner, auth.RoleAdmin), h.VerifyPayment)
		washes.POST("/:id/confirm", middleware.RequireRole(auth.RoleOwner, auth.RoleAdmin), h.ConfirmWashBooking)
		washes.PATCH("/:id/status", h.UpdateWashStatus)
	}
}

// CreateWashBooking handles POST /api/v1/wash-bookings.
func (h *WashBookingHandler) CreateWashBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateWashBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateWashBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListWashBookings handles GET /api/v1/wash-bookings. The scope follows
// the caller's role.
func (h *WashBookingHandler) ListWashBookings(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	switch {
	case actor.IsAdmin():
		result, err := h.service.ListAllWashBookings(c.Request.Context(), page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)

	case actor.IsOwner():
		result, err := h.service.GetOwnerWashBookings(c.Request.Context(), actor.AccountID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)

	default:
		result, err := h.service.GetUserWashBookings(c.Request.Context(), actor.AccountID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
	}
}

// GetWashBooking handles GET /api/v1/wash-bookings/:id.
func (h *WashBookingHandler) GetWashBooking(c *gin.Context) {
	washID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid wash booking ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetWashBooking(c.Request.Context(), actor, washID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// VerifyPayment handles POST /api/v1/wash-bookings/:id/verify-payment.
func (h *WashBookingHandler) VerifyPayment(c *gin.Context) {
	washID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid wash booking ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.VerifyPayment(c.Request.Context(), actor, washID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ConfirmWashBooking handles POST /api/v1/wash-bookings/:id/confirm.
func (h *WashBookingHandler) ConfirmWashBooking(c *gin.Context) {
	washID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid wash booking ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ConfirmWashBooking(c.Request.Context(), actor, washID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateWashStatus handles PATCH /api/v1/wash-bookings/:id/status.
func (h *WashBookingHandler) UpdateWashStatus(c *gin.Context) {
	washID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid wash booking ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateWashStatus(c.Request.Context(), actor, washID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
