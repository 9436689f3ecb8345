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

// CarwashHandler handles HTTP requests for the wash catalog and wash
// add-ons.
type CarwashHandler struct {
	service *application.CarwashService
}

// NewCarwashHandler creates a new CarwashHandler.
func NewCarwashHandler(service *application.CarwashService) *CarwashHandler {
	return &CarwashHandler{service: service}
}

// RegisterRoutes registers all carwash routes on the given router group.
func (h *CarwashHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	washTypes := r.Group("/api/v1/wash-types")
	{
		washTypes.GET("", h.ListWashTypes)
	}

	managedTypes := r.Group("/api/v1/wash-types")
	managedTypes.Use(authMW, middleware.RequireRole(auth.RoleAdmin))
	{
		managedTypes.POST("", h.CreateWashType)
		managedTypes.PUT("/:id", h.UpdateWashType)
		managedTypes.DELETE("/:id", h.DeleteWashType)
	}

	addons := r.Group("/api/v1/bookings/:id/wash")
	addons.Use(authMW)
	{
		addons.POST("", middleware.RequireRole(auth.RoleUser), h.PurchaseAddon)
		addons.GET("", h.ListBookingAddons)
	}

	status := r.Group("/api/v1/wash-addons")
	status.Use(authMW, middleware.RequireRole(auth.RoleOwner, auth.RoleAdmin))
	{
		status.PATCH("/:id/status", h.UpdateAddonStatus)
	}
}

// ListWashTypes handles GET /api/v1/wash-types.
func (h *CarwashHandler) ListWashTypes(c *gin.Context) {
	result, err := h.service.ListWashTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateWashType handles POST /api/v1/wash-types.
func (h *CarwashHandler) CreateWashType(c *gin.Context) {
	var req application.WashTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateWashType(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateWashType handles PUT /api/v1/wash-types/:id.
func (h *CarwashHandler) UpdateWashType(c *gin.Context) {
	washTypeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid wash type ID")
		return
	}

	var req application.WashTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateWashType(c.Request.Context(), washTypeID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteWashType handles DELETE /api/v1/wash-types/:id.
func (h *CarwashHandler) DeleteWashType(c *gin.Context) {
	washTypeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid wash type ID")
		return
	}

	if err := h.service.DeleteWashType(c.Request.Context(), washTypeID); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, "wash type deleted")
}

// PurchaseAddon handles POST /api/v1/bookings/:id/wash.
func (h *CarwashHandler) PurchaseAddon(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.PurchaseAddonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.PurchaseAddon(c.Request.Context(), userID, bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookingAddons handles GET /api/v1/bookings/:id/wash.
func (h *CarwashHandler) ListBookingAddons(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetBookingAddons(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateAddonStatus handles PATCH /api/v1/wash-addons/:id/status.
func (h *CarwashHandler) UpdateAddonStatus(c *gin.Context) {
	addonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid addon ID")
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

	result, err := h.service.UpdateAddonStatus(c.Request.Context(), actor, addonID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
