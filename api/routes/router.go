// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"buslane/internal/auth"
	"buslane/internal/bookings"
	"buslane/internal/buses"
	"buslane/internal/notifications"
	"buslane/internal/schedules"
	"buslane/internal/selection"
	"buslane/internal/shared/config"
	"buslane/internal/shared/database"
	"buslane/pkg/cache"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	cache     cache.Service
	publisher notifications.Publisher
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		cache:     cache.NewService(db.GetRedisClient()),
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	if r.config.IsDevelopment() {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := engine.Group(r.config.GetAPIBasePath())
	{
		pg := r.db.GetPostgreSQL()

		// auth
		authRepo := auth.NewRepository(pg)
		authService := auth.NewService(authRepo, r.config, r.cache)
		auth.NewRouter(auth.NewController(authService), r.config).SetupRoutes(api)
		holders := auth.NewHolderDirectory(authRepo)

		// buses and their layouts
		busService := buses.NewService(buses.NewRepository(pg), r.cache)
		buses.SetupBusRoutes(api, buses.NewController(busService), r.config)

		// schedules read bookings through the record source; checkout reads
		// schedules through the seat plan
		bookingRepo := bookings.NewRepository(pg)
		scheduleService := schedules.NewService(
			schedules.NewRepository(pg),
			busService,
			bookings.NewRecordSource(bookingRepo, holders),
			r.cache,
		)
		schedules.SetupScheduleRoutes(api, schedules.NewController(scheduleService), r.config)

		bookingService := bookings.NewService(bookingRepo, scheduleService, holders, r.publisher)
		bookings.SetupBookingRoutes(api, bookings.NewController(bookingService), r.config)

		// server-held seat selection
		selectionService := selection.NewService(
			selection.NewRedisStore(r.db.GetRedisClient()),
			scheduleService,
			bookingService,
			r.config.Selection,
		)
		selection.SetupSelectionRoutes(api, selection.NewController(selectionService), r.config)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "buslane-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "buslane-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "operational",
			"api_version":  r.config.APIVersion,
			"event_broker": r.config.Broker.Kind,
			"timestamp":    time.Now(),
		})
	})
}
