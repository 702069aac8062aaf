package selection

import (
	"buslane/internal/shared/config"
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSelectionRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	auth := []gin.HandlerFunc{middleware.JWTAuthWithConfig(cfg), middleware.RequireRoles("USER", "ADMIN")}

	rg.POST("/schedules/:id/selections", append(auth, controller.OpenSelection)...) // POST /api/v1/schedules/:id/selections

	selections := rg.Group("/selections")
	selections.Use(auth...)
	{
		selections.GET("/:id", controller.GetSelection)                // GET /api/v1/selections/:id
		selections.DELETE("/:id", controller.DiscardSelection)         // DELETE /api/v1/selections/:id
		selections.POST("/:id/toggle", controller.ToggleSeat)          // POST /api/v1/selections/:id/toggle
		selections.POST("/:id/refresh", controller.RefreshSelection)   // POST /api/v1/selections/:id/refresh
		selections.POST("/:id/checkout", controller.CheckoutSelection) // POST /api/v1/selections/:id/checkout
	}
}
