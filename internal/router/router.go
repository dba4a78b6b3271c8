package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/court-slot-reservation/internal/config"
	"github.com/iliyamo/court-slot-reservation/internal/handler"
	"github.com/iliyamo/court-slot-reservation/internal/middleware"
)

// Handlers bundles the handler set the routes dispatch to.
type Handlers struct {
	Availability *handler.AvailabilityHandler
	Locks        *handler.LockHandler
	Prices       *handler.PriceHandler
}

// Register wires every route of the service onto the Echo instance.
//
// Public availability reads are unauthenticated and go through the Redis
// response cache.  Everything that writes or exposes merchant data lives in
// a group behind the merchant JWT and a shared token bucket.
func Register(e *echo.Echo, h Handlers, db *sql.DB, rdb *redis.Client, jwtSecret string) {
	// Liveness probe for load balancers; never cached, never authenticated.
	e.GET("/healthz", handler.Health(db))

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Public browse endpoints. Guests query court and venue availability
	// before authenticating anywhere.
	pub := e.Group("/v1", limiter, cache)
	pub.GET("/courts/:id/availability", h.Availability.GetCourtAvailability)
	pub.GET("/venues/:id/availability", h.Availability.GetVenueAvailability)

	// Merchant endpoints. Ownership of the targeted venue/court/template is
	// enforced again in the service layer; the middleware only authenticates.
	m := e.Group("/v1", limiter, middleware.MerchantAuth(jwtSecret))

	m.POST("/slots/lock", h.Locks.LockSlot)
	m.POST("/slots/lock-batch", h.Locks.LockSlotBatch)
	m.POST("/slots/unlock", h.Locks.UnlockSlot)
	m.POST("/slots/unlock-batch", h.Locks.UnlockSlotBatch)
	m.GET("/slots/locked", h.Locks.ListLockedSlots)

	m.POST("/courts/:id/slots/generate", h.Availability.GenerateSlots)
	m.POST("/courts/:id/slots/generate-range", h.Availability.GenerateSlotsRange)

	m.POST("/price-templates", h.Prices.CreateTemplate)
	m.GET("/price-templates", h.Prices.ListTemplates)
	m.GET("/price-templates/:id", h.Prices.GetTemplate)
	m.PUT("/price-templates/:id", h.Prices.UpdateTemplate)
	m.DELETE("/price-templates/:id", h.Prices.DeleteTemplate)
	m.POST("/price-templates/:id/default", h.Prices.SetDefaultTemplate)
	m.POST("/venues/:id/price-template", h.Prices.BindVenueTemplate)
}
