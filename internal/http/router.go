package api

import (
	"log/slog"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "carpool/internal/config"
	"carpool/internal/domain"
	"carpool/internal/http/handlers"
	"carpool/internal/http/middleware"
)

func NewRouter(env intconfig.Env, h *handlers.Handler, tokens middleware.TokenParser) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(env.CORSOrigins),
		middleware.Authenticate(tokens),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		slog.Warn("failed to set trusted proxies", "error", err)
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route not found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		mountRoutes(api.Group("/routes"), h)
		mountBookings(api.Group("/bookings"), h)
		mountProfiles(api.Group("/profiles"), h)
		mountSettings(api.Group("/settings"), h)

		api.GET("/owners/me/routes", middleware.RequireRoles(domain.RoleOwner, domain.RoleAdmin), h.MyRoutes)

		// Signed links sent to owners; the token authorizes the call.
		api.GET("/booking-response", h.BookingResponse)
	}

	return r
}

func mountRoutes(g *gin.RouterGroup, h *handlers.Handler) {
	owner := middleware.RequireRoles(domain.RoleOwner, domain.RoleAdmin)

	g.GET("", h.SearchRoutes)
	g.GET("/:id", h.GetRoute)
	g.GET("/:id/availability", h.RouteAvailability)
	g.POST("", owner, h.CreateRoute)
	g.PUT("/:id", owner, h.UpdateRoute)
	g.PUT("/:id/promote", middleware.RequireRoles(domain.RoleAdmin), h.PromoteRoute)
	g.GET("/:id/bookings", owner, h.RouteBookings)
	g.POST("/:id/bookings", middleware.RequireAuth(), h.BookRoute)
}

func mountBookings(g *gin.RouterGroup, h *handlers.Handler) {
	g.Use(middleware.RequireAuth())

	g.GET("/me", h.MyBookings)
	g.GET("/:id", h.GetBooking)
	g.POST("/:id/top-up", h.TopUpBooking)
	g.POST("/:id/cancel", h.CancelBooking)
	g.POST("/:id/complete", middleware.RequireRoles(domain.RoleOwner, domain.RoleAdmin), h.CompleteBooking)
	g.PUT("/:id/payment", h.UpdatePayment)
	g.PUT("/:id/report", h.UpdateReport)
	g.GET("/:id/receipt", h.BookingReceipt)

	g.PUT("/:id/location", h.UpdateLocation)
	g.GET("/:id/live", h.LiveBooking)
	g.GET("/:id/messages", h.ListMessages)
	g.POST("/:id/messages", h.PostMessage)
}

func mountProfiles(g *gin.RouterGroup, h *handlers.Handler) {
	g.Use(middleware.RequireAuth())
	admin := middleware.RequireRoles(domain.RoleAdmin)

	g.GET("/me", h.GetMyProfile)
	g.PUT("/me", h.UpsertMyProfile)
	g.POST("/me/verify-mobile", h.VerifyMobile)
	g.POST("/me/referral", h.ApplyReferral)

	g.GET("", admin, h.ListProfiles)
	g.PUT("/:email/role", admin, h.SetProfileRole)
	g.PUT("/:email/plan", admin, h.SetProfilePlan)
}

func mountSettings(g *gin.RouterGroup, h *handlers.Handler) {
	g.GET("", h.GetSettings)
	g.PUT("", middleware.RequireRoles(domain.RoleAdmin), h.UpdateSettings)
	g.POST("/visit", h.RecordVisit)
	g.GET("/visitors", middleware.RequireRoles(domain.RoleAdmin), h.Visitors)
}
