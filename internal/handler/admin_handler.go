package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parkmate/service-parking/internal/application"
	"github.com/parkmate/service-parking/internal/pkg/auth"
	"github.com/parkmate/service-parking/internal/pkg/middleware"
	"github.com/parkmate/service-parking/internal/pkg/response"
)

// AdminHandler handles admin HTTP requests: owner verification and
// platform-wide listings.
type AdminHandler struct {
	adminService   *application.AdminService
	bookingService *application.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *application.AdminService, bookingService *application.BookingService) *AdminHandler {
	return &AdminHandler{adminService: adminService, bookingService: bookingService}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/owners", h.ListOwnersForReview)
		admin.POST("/owners/:id/approve", h.ApproveOwner)
		admin.POST("/owners/:id/decline", h.DeclineOwner)
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
	}
}

// ListOwnersForReview handles GET /api/v1/admin/owners. Defaults to the
// pending verification queue; a status query selects another state.
func (h *AdminHandler) ListOwnersForReview(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.adminService.ListOwnersForReview(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ApproveOwner handles POST /api/v1/admin/owners/:id/approve.
func (h *AdminHandler) ApproveOwner(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid owner ID")
		return
	}

	result, err := h.adminService.ApproveOwner(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeclineOwner handles POST /api/v1/admin/owners/:id/decline.
func (h *AdminHandler) DeclineOwner(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid owner ID")
		return
	}

	result, err := h.adminService.DeclineOwner(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.bookingService.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookingService.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
