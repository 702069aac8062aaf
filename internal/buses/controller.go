package buses

import (
	"errors"
	"net/http"

	"buslane/internal/seatmap"
	"buslane/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// CreateBus godoc
// @Summary Register a bus, optionally with its seat layout
// @Tags admin-buses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateBusRequest true "bus"
// @Success 201 {object} response.StandardApiResponse
// @Router /admin/buses [post]
func (c *Controller) CreateBus(ctx *gin.Context) {
	var req CreateBusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	bus, err := c.service.CreateBus(ctx.Request.Context(), &req)
	if err != nil {
		c.respondError(ctx, "Failed to create bus", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Bus created successfully", bus, nil)
}

// ListBuses godoc
// @Summary List buses
// @Tags admin-buses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/buses [get]
func (c *Controller) ListBuses(ctx *gin.Context) {
	buses, err := c.service.ListBuses(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get buses", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Buses retrieved successfully", buses, nil)
}

// GetBus godoc
// @Summary Get a bus
// @Tags admin-buses
// @Produce json
// @Security BearerAuth
// @Param id path string true "bus id"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/buses/{id} [get]
func (c *Controller) GetBus(ctx *gin.Context) {
	bus, err := c.service.GetBus(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, "Failed to get bus", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bus retrieved successfully", bus, nil)
}

// PreviewLayout godoc
// @Summary Generate a layout grid with every seat included
// @Tags admin-buses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LayoutSpecRequest true "layout parameters"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/buses/layout/preview [post]
func (c *Controller) PreviewLayout(ctx *gin.Context) {
	var req LayoutSpecRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	layout, err := c.service.PreviewLayout(req.Spec())
	if err != nil {
		c.respondError(ctx, "Failed to generate layout", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Layout generated successfully", layout, nil)
}

// GetLayout godoc
// @Summary Load the layout editor state of a bus
// @Tags admin-buses
// @Produce json
// @Security BearerAuth
// @Param id path string true "bus id"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/buses/{id}/layout [get]
func (c *Controller) GetLayout(ctx *gin.Context) {
	layout, err := c.service.GetLayout(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, "Failed to get layout", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Layout retrieved successfully", layout, nil)
}

// UpdateLayout godoc
// @Summary Persist a layout edit
// @Tags admin-buses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "bus id"
// @Param body body UpdateLayoutRequest true "layout"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/buses/{id}/layout [put]
func (c *Controller) UpdateLayout(ctx *gin.Context) {
	var req UpdateLayoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	layout, err := c.service.UpdateLayout(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		c.respondError(ctx, "Failed to update layout", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Layout updated successfully", layout, nil)
}

func (c *Controller) respondError(ctx *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrBusNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrBusNumberTaken):
		status = http.StatusConflict
	case errors.Is(err, ErrLayoutNotConfigured):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidBusType),
		errors.Is(err, ErrTotalSeatsMismatch),
		errors.Is(err, seatmap.ErrInvalidLayoutSpec),
		errors.Is(err, seatmap.ErrInvalidSeatLayout):
		status = http.StatusBadRequest
	}
	response.RespondJSON(ctx, "error", status, message, nil, err.Error())
}
