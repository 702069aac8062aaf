package bookings

import (
	"buslane/internal/shared/config"
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRoles("USER", "ADMIN"))
	{
		bookings.POST("/checkout", controller.Checkout)        // POST /api/v1/bookings/checkout
		bookings.GET("/me", controller.GetMyBookings)          // GET /api/v1/bookings/me
		bookings.GET("/:id", controller.GetBooking)            // GET /api/v1/bookings/:id
		bookings.POST("/:id/cancel", controller.CancelBooking) // POST /api/v1/bookings/:id/cancel
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireAdmin())
	{
		admin.GET("/schedules/:id/bookings", controller.GetScheduleBookings) // GET /api/v1/admin/schedules/:id/bookings
		admin.PATCH("/bookings/:id/status", controller.UpdateStatus)         // PATCH /api/v1/admin/bookings/:id/status
	}
}
