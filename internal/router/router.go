package router

import (
	"github.com/gin-gonic/gin"
	"github.com/venuebook/venuebook-backend/config"
	"github.com/venuebook/venuebook-backend/internal/app/controller"
	"github.com/venuebook/venuebook-backend/internal/middleware"
)

type Router struct {
	authController   *controller.AuthController
	venueController  *controller.VenueController
	reviewController *controller.ReviewController
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	venueController *controller.VenueController,
	reviewController *controller.ReviewController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		venueController:  venueController,
		reviewController: reviewController,
		authMiddleware:   authMiddleware,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "VENUEBOOK API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
		}

		// Public search surface. Optional auth lets admins widen status
		// filters; everyone else gets the visibility clamp.
		venues := v1.Group("/venues")
		venues.Use(r.authMiddleware.OptionalAuthenticate())
		{
			venues.GET("", r.venueController.SearchVenues)
			venues.GET("/:id", r.venueController.GetVenueByID)
			venues.GET("/:id/reviews", r.reviewController.ListVenueReviews)
			venues.POST("/:id/reviews",
				r.authMiddleware.Authenticate(),
				r.reviewController.CreateReview,
			)
		}

		reviews := v1.Group("/reviews")
		reviews.Use(r.authMiddleware.Authenticate())
		{
			reviews.DELETE("/:id", r.reviewController.DeleteReview)
			reviews.POST("/:id/reply",
				r.authMiddleware.RequireRole("vendor", "admin"),
				r.reviewController.ReplyToReview,
			)
		}

		vendor := v1.Group("/vendor")
		vendor.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("vendor", "admin"))
		{
			vendor.GET("/venues", r.venueController.MyVenues)
			vendor.POST("/venues", r.venueController.CreateVenue)
			vendor.PUT("/venues/:id", r.venueController.UpdateVenue)
			vendor.DELETE("/venues/:id", r.venueController.DeleteVenue)
			vendor.PATCH("/venues/:id/visibility", r.venueController.SetVisibility)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			admin.PATCH("/venues/:id/status", r.venueController.UpdateStatus)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
