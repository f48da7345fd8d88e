package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vehiclebooking/service-booking/internal/application"
	"github.com/vehiclebooking/service-booking/pkg/auth"
	"github.com/vehiclebooking/service-booking/pkg/middleware"
	"github.com/vehiclebooking/service-booking/pkg/response"
)

// AdminHandler handles admin HTTP requests for booking management and the
// analytics dashboard.
type AdminHandler struct {
	bookings  *application.BookingService
	analytics *application.AnalyticsService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, analytics *application.AnalyticsService) *AdminHandler {
	return &AdminHandler{bookings: bookings, analytics: analytics}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/bookings/status/:status", h.BookingsByStatus)
		admin.DELETE("/bookings", h.DeleteAllBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/analytics/routes", h.PopularRoutes)
		admin.GET("/analytics/trends", h.MonthlyTrend)
		admin.GET("/analytics/weekdays", h.WeeklyPattern)
		admin.GET("/analytics/searches", h.RecentSearches)
		admin.GET("/analytics/searches/:phone", h.SearchesByPhone)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// BookingsByStatus handles GET /api/v1/admin/bookings/status/:status.
func (h *AdminHandler) BookingsByStatus(c *gin.Context) {
	result, err := h.bookings.GetBookingsByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteAllBookings handles DELETE /api/v1/admin/bookings.
func (h *AdminHandler) DeleteAllBookings(c *gin.Context) {
	if err := h.bookings.DeleteAllBookings(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// PopularRoutes handles GET /api/v1/admin/analytics/routes. With ?live=true
// the event-driven Redis counters are returned instead of the SQL aggregation.
func (h *AdminHandler) PopularRoutes(c *gin.Context) {
	limit := parseLimit(c, 10)

	if c.Query("live") == "true" {
		routes, err := h.analytics.LiveRoutePopularity(c.Request.Context(), limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, routes)
		return
	}

	routes, err := h.analytics.PopularRoutes(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, routes)
}

// MonthlyTrend handles GET /api/v1/admin/analytics/trends.
func (h *AdminHandler) MonthlyTrend(c *gin.Context) {
	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))

	trend, err := h.analytics.MonthlyTrend(c.Request.Context(), months)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, trend)
}

// WeeklyPattern handles GET /api/v1/admin/analytics/weekdays.
func (h *AdminHandler) WeeklyPattern(c *gin.Context) {
	pattern, err := h.analytics.WeeklyPattern(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, pattern)
}

// RecentSearches handles GET /api/v1/admin/analytics/searches.
func (h *AdminHandler) RecentSearches(c *gin.Context) {
	searches, err := h.analytics.RecentSearches(c.Request.Context(), parseLimit(c, 50))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, searches)
}

// SearchesByPhone handles GET /api/v1/admin/analytics/searches/:phone.
func (h *AdminHandler) SearchesByPhone(c *gin.Context) {
	searches, err := h.analytics.SearchesByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, searches)
}

func parseLimit(c *gin.Context, def int) int {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if limit < 1 || limit > 100 {
		limit = def
	}
	return limit
}
