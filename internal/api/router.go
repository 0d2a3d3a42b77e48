package api

import (
	"sync"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"homebase/config"
	"homebase/internal/mw"
	"homebase/internal/store"
	"homebase/internal/validate"
)

var registerOnce sync.Once

// registerValidation teaches gin's binding engine the project's custom types.
func registerValidation() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validate.Register(v)
		}
	})
}

// NewRouter creates and configures a new Gin router. metrics may be nil.
func NewRouter(s store.Store, webpushOptions *webpush.Options, serverCfg config.ServerConfig, metrics *mw.Metrics) *gin.Engine {
	registerValidation()

	r := gin.Default()
	if serverCfg.RequestIPHeader != "" {
		r.TrustedPlatform = serverCfg.RequestIPHeader
	}
	if metrics != nil {
		r.Use(metrics.Middleware())
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	handler := NewHandler(s, webpushOptions)
	r.GET("/health", handler.Health)

	api := r.Group("/api")
	if serverCfg.RateLimitPerSec > 0 {
		burst := int(serverCfg.RateLimitPerSec)
		if burst < 1 {
			burst = 1
		}
		api.Use(mw.RateLimiter(mw.NewIPRateLimiter(rate.Limit(serverCfg.RateLimitPerSec), burst, mw.DefaultLimiterIdle)))
	}

	// Entity routes share one response cache that any successful write flushes.
	data := api.Group("")
	if serverCfg.CacheTTLSeconds > 0 {
		ttl := time.Duration(serverCfg.CacheTTLSeconds) * time.Second
		data.Use(mw.Cache(cache.New(ttl, 2*ttl), ttl))
	}
	{
		data.GET("/appliances", handler.ListAppliances)
		data.POST("/appliances", handler.CreateAppliance)
		data.GET("/appliances/stats", handler.GetApplianceStats)
		data.GET("/appliances/:id", handler.GetAppliance)
		data.PUT("/appliances/:id", handler.UpdateAppliance)
		data.DELETE("/appliances/:id", handler.DeleteAppliance)

		data.GET("/maintenance", handler.ListMaintenance)
		data.POST("/maintenance", handler.CreateMaintenance)
		data.GET("/maintenance/upcoming", handler.GetUpcomingMaintenance)
		data.GET("/maintenance/:id", handler.GetMaintenance)
		data.PUT("/maintenance/:id", handler.UpdateMaintenance)
		data.DELETE("/maintenance/:id", handler.DeleteMaintenance)

		data.GET("/contacts", handler.ListContacts)
		data.POST("/contacts", handler.CreateContact)
		data.GET("/contacts/:id", handler.GetContact)
		data.PUT("/contacts/:id", handler.UpdateContact)
		data.DELETE("/contacts/:id", handler.DeleteContact)
	}

	api.GET("/subscriptions", handler.GetSubscription)
	api.PUT("/subscriptions", handler.PutSubscription)
	api.DELETE("/subscriptions", handler.DeleteSubscription)
	api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

	return r
}
