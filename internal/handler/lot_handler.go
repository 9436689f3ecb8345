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

// LotHandler handles HTTP requests for parking lots and slots.
type LotHandler struct {
	service *application.LotService
}

// NewLotHandler creates a new LotHandler.
func NewLotHandler(service *application.LotService) *LotHandler {
	return &LotHandler{service: service}
}

// RegisterRoutes registers all lot routes on the given router group.
// Browsing lots and slots needs no account; listing and managing does.
func (h *LotHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	lots := r.Group("/api/v1/lots")
	{
		lots.GET("", h.ListLots)
		lots.GET("/:id", h.GetLot)
		lots.GET("/:id/slots", h.ListSlots)
	}

	managed := r.Group("/api/v1/lots")
	managed.Use(authMW)
	{
		managed.POST("", middleware.RequireRole(auth.RoleOwner), h.CreateLot)
		managed.PUT("/:id", middleware.RequireRole(auth.RoleOwner, auth.RoleAdmin), h.UpdateLot)
		managed.DELETE("/:id", middleware.RequireRole(auth.RoleOwner, auth.RoleAdmin), h.DeleteLot)
		managed.POST("/:id/slots", middleware.RequireRole(auth.RoleOwner, auth.RoleAdmin), h.AddSlot)
	}

	owner := r.Group("/api/v1/owner/lots")
	owner.Use(authMW, middleware.RequireRole(auth.RoleOwner))
	{
		owner.GET("", h.ListOwnerLots)
	}
}

// CreateLot handles POST /api/v1/lots.
func (h *LotHandler) CreateLot(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateLot(c.Request.Context(), ownerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListLots handles GET /api/v1/lots, optionally filtered by city.
func (h *LotHandler) ListLots(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListPublicLots(c.Request.Context(), c.Query("city"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetLot handles GET /api/v1/lots/:id.
func (h *LotHandler) GetLot(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid lot ID")
		return
	}

	result, err := h.service.GetLot(c.Request.Context(), lotID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOwnerLots handles GET /api/v1/owner/lots.
func (h *LotHandler) ListOwnerLots(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ListOwnerLots(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateLot handles PUT /api/v1/lots/:id.
func (h *LotHandler) UpdateLot(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid lot ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.UpdateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateLot(c.Request.Context(), actor, lotID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteLot handles DELETE /api/v1/lots/:id.
func (h *LotHandler) DeleteLot(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid lot ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.DeleteLot(c.Request.Context(), actor, lotID); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, "lot deleted")
}

// AddSlot handles POST /api/v1/lots/:id/slots.
func (h *LotHandler) AddSlot(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid lot ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.AddSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddSlot(c.Request.Context(), actor, lotID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListSlots handles GET /api/v1/lots/:id/slots. Supports vehicle_type
// and available=true filters.
func (h *LotHandler) ListSlots(c *gin.Context) {
	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid lot ID")
		return
	}

	onlyAvailable := c.Query("available") == "true"
	result, err := h.service.ListSlots(c.Request.Context(), lotID, c.Query("vehicle_type"), onlyAvailable)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
