package selection

import (
	"errors"
	"net/http"

	"buslane/internal/bookings"
	"buslane/internal/schedules"
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

// OpenSelection godoc
// @Summary Start selecting seats on a schedule
// @Tags selections
// @Produce json
// @Security BearerAuth
// @Param id path string true "schedule id"
// @Success 201 {object} response.StandardApiResponse
// @Router /schedules/{id}/selections [post]
func (c *Controller) OpenSelection(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	sel, err := c.service.Open(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, "Failed to open selection", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Selection opened", sel, nil)
}

// GetSelection godoc
// @Summary Current selection, fare and state
// @Tags selections
// @Produce json
// @Security BearerAuth
// @Param id path string true "selection id"
// @Success 200 {object} response.StandardApiResponse
// @Router /selections/{id} [get]
func (c *Controller) GetSelection(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	sel, err := c.service.Get(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, "Failed to get selection", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Selection retrieved successfully", sel, nil)
}

// ToggleSeat godoc
// @Summary Select or deselect one seat
// @Description A refused click answers 409 with the unchanged selection.
// @Tags selections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "selection id"
// @Param body body ToggleRequest true "seat label"
// @Success 200 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /selections/{id}/toggle [post]
func (c *Controller) ToggleSeat(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req ToggleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.Toggle(ctx.Request.Context(), userID, ctx.Param("id"), req.Seat)
	if err != nil {
		var seatErr *seatmap.SeatError
		if errors.As(err, &seatErr) {
			status := http.StatusConflict
			if errors.Is(err, seatmap.ErrNotASeat) {
				status = http.StatusBadRequest
			}
			response.RespondJSON(ctx, "error", status, seatErr.Error(), result, nil)
			return
		}
		respondError(ctx, "Failed to toggle seat", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Selection updated", result, nil)
}

// RefreshSelection godoc
// @Summary Reload seat statuses and release seats booked meanwhile
// @Tags selections
// @Produce json
// @Security BearerAuth
// @Param id path string true "selection id"
// @Success 200 {object} response.StandardApiResponse
// @Router /selections/{id}/refresh [post]
func (c *Controller) RefreshSelection(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	sel, err := c.service.Refresh(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, "Failed to refresh selection", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Selection refreshed", sel, nil)
}

// CheckoutSelection godoc
// @Summary Book the selected seats
// @Tags selections
// @Produce json
// @Security BearerAuth
// @Param id path string true "selection id"
// @Success 201 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /selections/{id}/checkout [post]
func (c *Controller) CheckoutSelection(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	booking, err := c.service.Checkout(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, "Checkout failed", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created successfully", booking, nil)
}

// DiscardSelection godoc
// @Summary Drop a selection
// @Tags selections
// @Produce json
// @Security BearerAuth
// @Param id path string true "selection id"
// @Success 200 {object} response.StandardApiResponse
// @Router /selections/{id} [delete]
func (c *Controller) DiscardSelection(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	if err := c.service.Discard(ctx.Request.Context(), userID, ctx.Param("id")); err != nil {
		respondError(ctx, "Failed to discard selection", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Selection discarded", nil, nil)
}

func respondError(ctx *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, ErrSelectionNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, message, nil, err.Error())
	case errors.Is(err, ErrSelectionBusy):
		response.RespondJSON(ctx, "error", http.StatusConflict, message, nil, err.Error())
	case errors.Is(err, seatmap.ErrNoSeatsSelected):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, err.Error(), nil, nil)
	case errors.Is(err, schedules.ErrLayoutFetchFailed), errors.Is(err, schedules.ErrBookingsFetchFailed):
		response.RespondJSON(ctx, "error", http.StatusBadGateway, message, nil, err.Error())
	default:
		// schedule and booking failures share the checkout error mapping
		bookings.RespondCheckoutError(ctx, err)
	}
}
