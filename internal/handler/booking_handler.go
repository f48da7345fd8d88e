package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vehiclebooking/service-booking/internal/application"
	"github.com/vehiclebooking/service-booking/pkg/auth"
	"github.com/vehiclebooking/service-booking/pkg/middleware"
	"github.com/vehiclebooking/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	bookings  *application.BookingService
	analytics *application.AnalyticsService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings *application.BookingService, analytics *application.AnalyticsService) *BookingHandler {
	return &BookingHandler{bookings: bookings, analytics: analytics}
}

// RegisterRoutes registers all customer-facing routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleCustomer), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/modify", middleware.RequireRole(auth.RoleCustomer), h.ModifyBooking)
		bookings.POST("/:id/status", middleware.RequireRole(auth.RoleAdmin, auth.RoleDriver), h.TransitionStatus)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/reminder", h.ScheduleReminder)
		bookings.GET("/:id/reminder", h.GetReminder)
	}

	searches := r.Group("/api/v1/searches")
	searches.Use(authMW)
	{
		searches.POST("", h.RecordSearch)
		searches.POST("/interest", h.AddVehicleInterest)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Customers see their own bookings;
// the phone number comes from the token, never from the query string.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	phone, ok := middleware.GetUserPhone(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)
	result, err := h.bookings.GetCustomerBookings(c.Request.Context(), phone, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	result, err := h.bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ModifyBooking handles POST /api/v1/bookings/:id/modify.
func (h *BookingHandler) ModifyBooking(c *gin.Context) {
	phone, ok := middleware.GetUserPhone(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.ModifyBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.ModifyBooking(c.Request.Context(), c.Param("id"), phone, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// TransitionStatus handles POST /api/v1/bookings/:id/status.
func (h *BookingHandler) TransitionStatus(c *gin.Context) {
	var body struct {
		Target string `json:"target" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.TransitionStatus(c.Request.Context(), c.Param("id"), body.Target, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.bookings.CancelBooking(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ScheduleReminder handles POST /api/v1/bookings/:id/reminder.
func (h *BookingHandler) ScheduleReminder(c *gin.Context) {
	var body struct {
		RemindAt time.Time `json:"remind_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.bookings.ScheduleReminder(c.Request.Context(), c.Param("id"), body.RemindAt); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"booking_id": c.Param("id"), "remind_at": body.RemindAt.UTC()})
}

// GetReminder handles GET /api/v1/bookings/:id/reminder.
func (h *BookingHandler) GetReminder(c *gin.Context) {
	remindAt, err := h.bookings.GetReminder(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"booking_id": c.Param("id"), "remind_at": remindAt})
}

// RecordSearch handles POST /api/v1/searches.
func (h *BookingHandler) RecordSearch(c *gin.Context) {
	var req application.RecordSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.analytics.RecordSearch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// AddVehicleInterest handles POST /api/v1/searches/interest.
func (h *BookingHandler) AddVehicleInterest(c *gin.Context) {
	phone, ok := middleware.GetUserPhone(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body struct {
		VehicleType string `json:"vehicle_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.analytics.AddVehicleInterest(c.Request.Context(), phone, body.VehicleType)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
