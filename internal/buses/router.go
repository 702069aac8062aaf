package buses

import (
	"buslane/internal/shared/config"
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBusRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	admin := rg.Group("/admin/buses")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireAdmin())
	{
		admin.POST("", controller.CreateBus)                    // POST /api/v1/admin/buses
		admin.GET("", controller.ListBuses)                     // GET /api/v1/admin/buses
		admin.POST("/layout/preview", controller.PreviewLayout) // POST /api/v1/admin/buses/layout/preview
		admin.GET("/:id", controller.GetBus)                    // GET /api/v1/admin/buses/:id
		admin.GET("/:id/layout", controller.GetLayout)          // GET /api/v1/admin/buses/:id/layout
		admin.PUT("/:id/layout", controller.UpdateLayout)       // PUT /api/v1/admin/buses/:id/layout
	}
}
