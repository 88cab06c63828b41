package router

import (
	"net/http"

	"github.com/asanorder/backend/internal/infrastructure/config"
	"github.com/asanorder/backend/internal/infrastructure/logger"
	"github.com/asanorder/backend/internal/interfaces/http/dto"
	"github.com/asanorder/backend/internal/interfaces/http/handler"
	"github.com/asanorder/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers served by the engine
type Handlers struct {
	Orders  *handler.OrderHandler
	Returns *handler.OrderReturnHandler
	System  *handler.SystemHandler
}

// NewEngine builds the gin engine with the middleware chain and every route.
// Health probes sit outside /api and skip tenant resolution.
func NewEngine(cfg *config.Config, log *zap.Logger, h Handlers) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
			_ = engine.SetTrustedProxies(nil)
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	tenantCfg := middleware.DefaultTenantConfig()
	tenantCfg.Logger = log

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.WriteTimeout),
		middleware.TenantMiddlewareWithConfig(tenantCfg),
		middleware.IdempotencyKey(),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeBadRequest, "Method not allowed", middleware.GetRequestID(c)))
	})

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.GET("/health/ready", h.System.Ready)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	for _, group := range apiGroups(h) {
		r.Register(group)
	}
	r.Setup()

	return engine
}

func apiGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.Orders != nil {
		orders := NewDomainGroup("orders", "/orders")
		orders.POST("", h.Orders.Create).
			GET("", h.Orders.List).
			POST("/legacy", h.Orders.CreateLegacy).
			GET("/:id", h.Orders.GetByID).
			POST("/:id/confirm", h.Orders.Confirm).
			POST("/:id/dispatch", h.Orders.Dispatch).
			POST("/:id/complete", h.Orders.Complete).
			POST("/:id/cancel", h.Orders.Cancel).
			POST("/:id/payments", h.Orders.RecordPayment).
			GET("/:id/payment-status", h.Orders.GetPaymentStatus).
			GET("/:id/totals", h.Orders.GetTotals)
		if h.Returns != nil {
			orders.POST("/:id/returns/preview", h.Returns.Preview).
				POST("/:id/returns", h.Returns.Create).
				GET("/:id/returns", h.Returns.ListByOrder)
		}
		groups = append(groups, orders)
	}

	if h.Returns != nil {
		returns := NewDomainGroup("returns", "/returns")
		returns.GET("/:id", h.Returns.GetByID).
			POST("/:id/approve", h.Returns.Approve).
			POST("/:id/reject", h.Returns.Reject).
			POST("/:id/refund", h.Returns.MarkRefunded)
		groups = append(groups, returns)
	}

	if h.System != nil {
		system := NewDomainGroup("system", "/system")
		system.GET("/info", h.System.GetSystemInfo)
		groups = append(groups, system)
	}

	return groups
}
