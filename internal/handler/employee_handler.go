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

// EmployeeHandler handles HTTP requests for wash employee pools.
type EmployeeHandler struct {
	service *application.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(service *application.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

// RegisterRoutes registers all employee routes on the given router
// group.
func (h *EmployeeHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	employees := r.Group("/api/v1/employees")
	employees.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleOwner, auth.RoleAdmin))
	{
		employees.POST("", h.CreateEmployee)
		employees.GET("", h.ListEmployees)
		employees.GET("/:id", h.GetEmployee)
		employees.PUT("/:id", h.UpdateEmployee)
		employees.DELETE("/:id", h.DeleteEmployee)
		employees.POST("/:id/reassign", middleware.RequireRole(auth.RoleAdmin), h.ReassignEmployee)
		employees.POST("/:id/recalculate", h.RecalculateWorkload)
	}
}

// CreateEmployee handles POST /api/v1/employees.
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateEmployee(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListEmployees handles GET /api/v1/employees. Owners see their pool,
// admins see everyone.
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if actor.IsAdmin() {
		page, limit := parsePagination(c)
		result, err := h.service.ListAllEmployees(c.Request.Context(), page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
		return
	}

	result, err := h.service.ListOwnerEmployees(c.Request.Context(), actor.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetEmployee handles GET /api/v1/employees/:id.
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid employee ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetEmployee(c.Request.Context(), actor, employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateEmployee handles PUT /api/v1/employees/:id.
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid employee ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateEmployee(c.Request.Context(), actor, employeeID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteEmployee handles DELETE /api/v1/employees/:id.
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid employee ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.DeleteEmployee(c.Request.Context(), actor, employeeID); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, "employee deleted")
}

// ReassignEmployee handles POST /api/v1/employees/:id/reassign.
func (h *EmployeeHandler) ReassignEmployee(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid employee ID")
		return
	}

	var req application.ReassignEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ReassignEmployee(c.Request.Context(), employeeID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RecalculateWorkload handles POST /api/v1/employees/:id/recalculate.
func (h *EmployeeHandler) RecalculateWorkload(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid employee ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.RecalculateWorkload(c.Request.Context(), actor, employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
