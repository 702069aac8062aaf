package schedules

import (
	"buslane/internal/shared/config"
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupScheduleRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	rg.GET("/routes", controller.ListRoutes) // GET /api/v1/routes

	public := rg.Group("/schedules")
	{
		public.GET("", controller.SearchSchedules)         // GET /api/v1/schedules
		public.GET("/:id", controller.GetSchedule)         // GET /api/v1/schedules/:id
		public.GET("/:id/seat-map", controller.GetSeatMap) // GET /api/v1/schedules/:id/seat-map
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireAdmin())
	{
		admin.POST("/routes", controller.CreateRoute)                  // POST /api/v1/admin/routes
		admin.POST("/schedules", controller.CreateSchedule)            // POST /api/v1/admin/schedules
		admin.GET("/schedules/:id/occupancy", controller.GetOccupancy) // GET /api/v1/admin/schedules/:id/occupancy
	}
}
