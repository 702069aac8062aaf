package schedules

import (
	"errors"
	"net/http"

	"buslane/internal/buses"
	"buslane/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateRoute godoc
// @Summary Create a route
// @Tags admin-schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRouteRequest true "route"
// @Success 201 {object} response.StandardApiResponse
// @Router /admin/routes [post]
func (c *Controller) CreateRoute(ctx *gin.Context) {
	var req CreateRouteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	route, err := c.service.CreateRoute(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, "Failed to create route", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Route created successfully", route, nil)
}

// ListRoutes godoc
// @Summary List routes
// @Tags schedules
// @Produce json
// @Success 200 {object} response.StandardApiResponse
// @Router /routes [get]
func (c *Controller) ListRoutes(ctx *gin.Context) {
	routes, err := c.service.ListRoutes(ctx.Request.Context())
	if err != nil {
		respondError(ctx, "Failed to get routes", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Routes retrieved successfully", routes, nil)
}

// CreateSchedule godoc
// @Summary Schedule a bus on a route
// @Tags admin-schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateScheduleRequest true "schedule"
// @Success 201 {object} response.StandardApiResponse
// @Router /admin/schedules [post]
func (c *Controller) CreateSchedule(ctx *gin.Context) {
	var req CreateScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	schedule, err := c.service.CreateSchedule(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, "Failed to create schedule", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Schedule created successfully", schedule, nil)
}

// SearchSchedules godoc
// @Summary Search schedules by route and day
// @Tags schedules
// @Produce json
// @Param source query string false "source city"
// @Param destination query string false "destination city"
// @Param date query string false "departure day, YYYY-MM-DD"
// @Success 200 {object} response.StandardApiResponse
// @Router /schedules [get]
func (c *Controller) SearchSchedules(ctx *gin.Context) {
	var query SearchQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	schedules, err := c.service.SearchSchedules(ctx.Request.Context(), &query)
	if err != nil {
		respondError(ctx, "Failed to search schedules", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Schedules retrieved successfully", schedules, nil)
}

// GetSchedule godoc
// @Summary Get a schedule
// @Tags schedules
// @Produce json
// @Param id path string true "schedule id"
// @Success 200 {object} response.StandardApiResponse
// @Router /schedules/{id} [get]
func (c *Controller) GetSchedule(ctx *gin.Context) {
	schedule, err := c.service.GetSchedule(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, "Failed to get schedule", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Schedule retrieved successfully", schedule, nil)
}

// GetSeatMap godoc
// @Summary Seat picker data for a schedule
// @Description Layout grid with each included seat marked available or booked. Never cached.
// @Tags schedules
// @Produce json
// @Param id path string true "schedule id"
// @Success 200 {object} response.StandardApiResponse
// @Failure 502 {object} response.StandardApiResponse
// @Router /schedules/{id}/seat-map [get]
func (c *Controller) GetSeatMap(ctx *gin.Context) {
	ctx.Header("Cache-Control", "no-store")

	seatMap, err := c.service.SeatMap(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, "Failed to load seat map", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map retrieved successfully", seatMap, nil)
}

// GetOccupancy godoc
// @Summary Admin occupancy view for a schedule
// @Tags admin-schedules
// @Produce json
// @Security BearerAuth
// @Param id path string true "schedule id"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/schedules/{id}/occupancy [get]
func (c *Controller) GetOccupancy(ctx *gin.Context) {
	ctx.Header("Cache-Control", "no-store")

	occupancy, err := c.service.Occupancy(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, "Failed to load occupancy", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Occupancy retrieved successfully", occupancy, nil)
}

func respondError(ctx *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrScheduleNotFound),
		errors.Is(err, ErrRouteNotFound),
		errors.Is(err, buses.ErrBusNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrRouteExists):
		status = http.StatusConflict
	case errors.Is(err, ErrInvalidSchedule),
		errors.Is(err, ErrInvalidSearchDate),
		errors.Is(err, buses.ErrLayoutNotConfigured):
		status = http.StatusBadRequest
	case errors.Is(err, ErrLayoutFetchFailed),
		errors.Is(err, ErrBookingsFetchFailed):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		response.RespondJSON(ctx, "error", status, message, nil, nil)
		return
	}
	response.RespondJSON(ctx, "error", status, message, nil, err.Error())
}
