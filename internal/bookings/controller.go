package bookings

import (
	"errors"
	"net/http"

	"buslane/internal/seatmap"
	"buslane/internal/shared/middleware"
	"buslane/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Checkout godoc
// @Summary Submit a seat selection as a pending booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CheckoutRequest true "selection"
// @Success 201 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /bookings/checkout [post]
func (c *Controller) Checkout(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	booking, err := c.service.Checkout(ctx.Request.Context(), userID, &req)
	if err != nil {
		RespondCheckoutError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created successfully", booking, nil)
}

// GetBooking godoc
// @Summary Get a booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "booking id"
// @Success 200 {object} response.StandardApiResponse
// @Router /bookings/{id} [get]
func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, _ := middleware.GetUserID(ctx)

	booking, err := c.service.GetBooking(ctx.Request.Context(), ctx.Param("id"), userID, middleware.IsAdmin(ctx))
	if err != nil {
		respondError(ctx, "Failed to get booking", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// GetMyBookings godoc
// @Summary List the caller's bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, booked or cancelled"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} response.StandardApiResponse
// @Router /bookings/me [get]
func (c *Controller) GetMyBookings(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := c.service.ListUserBookings(ctx.Request.Context(), userID, query)
	if err != nil {
		respondError(ctx, "Failed to get bookings", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", result, nil)
}

// CancelBooking godoc
// @Summary Cancel one of the caller's bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "booking id"
// @Success 200 {object} response.StandardApiResponse
// @Router /bookings/{id}/cancel [post]
func (c *Controller) CancelBooking(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	booking, err := c.service.CancelBooking(ctx.Request.Context(), ctx.Param("id"), userID)
	if err != nil {
		respondError(ctx, "Failed to cancel booking", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking cancelled successfully", booking, nil)
}

// GetScheduleBookings godoc
// @Summary List the bookings of a schedule
// @Tags admin-bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "schedule id"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/schedules/{id}/bookings [get]
func (c *Controller) GetScheduleBookings(ctx *gin.Context) {
	bookings, err := c.service.ListScheduleBookings(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, "Failed to get bookings", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", bookings, nil)
}

// UpdateStatus godoc
// @Summary Change the status of a booking
// @Tags admin-bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "booking id"
// @Param body body UpdateStatusRequest true "new status"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/bookings/{id}/status [patch]
func (c *Controller) UpdateStatus(ctx *gin.Context) {
	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	booking, err := c.service.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), req.Status)
	if err != nil {
		respondError(ctx, "Failed to update booking status", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking status updated successfully", booking, nil)
}

// RespondCheckoutError maps checkout failures to HTTP answers. The selection
// checkout endpoint shares it.
func RespondCheckoutError(ctx *gin.Context, err error) {
	respondError(ctx, "Checkout failed", err)
}

func respondError(ctx *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrScheduleNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, ErrSeatAlreadyBooked),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrStatusConflict):
		status = http.StatusConflict
	case errors.Is(err, seatmap.ErrNoSeatsSelected),
		errors.Is(err, ErrDuplicateSeat),
		errors.Is(err, ErrUnknownSeat),
		errors.Is(err, ErrPriceMismatch),
		errors.Is(err, ErrScheduleDeparted),
		errors.Is(err, ErrInvalidStatus):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		response.RespondJSON(ctx, "error", status, message, nil, nil)
		return
	}

	var details interface{}
	var conflict *SeatConflictError
	if errors.As(err, &conflict) {
		details = gin.H{"seats": conflict.Seats}
	}
	response.RespondJSON(ctx, "error", status, err.Error(), nil, details)
}
