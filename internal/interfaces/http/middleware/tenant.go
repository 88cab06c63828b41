package middleware

import (
	"net/http"
	"strings"

	"github.com/asanorder/backend/internal/infrastructure/logger"
	"github.com/asanorder/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
	UserIDKey       = "user_id"
	UserHeaderKey   = "X-User-ID"
)

// DefaultTenantID is the tenant used when a request does not name one.
// Single-shop deployments never send the header.
var DefaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// DefaultTenant is used when the header is absent. uuid.Nil makes the header mandatory.
	DefaultTenant uuid.UUID
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		DefaultTenant: DefaultTenantID,
		SkipPaths:     []string{"/health", "/api/v1/health"},
	}
}

// TenantMiddleware resolves the tenant and actor of a request with default configuration
func TenantMiddleware() gin.HandlerFunc {
	return TenantMiddlewareWithConfig(DefaultTenantConfig())
}

// TenantMiddlewareWithConfig resolves the tenant from the X-Tenant-ID header and
// the acting user from X-User-ID, storing both in the gin and request contexts.
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		tenantID := cfg.DefaultTenant
		if header := strings.TrimSpace(c.GetHeader(TenantHeaderKey)); header != "" {
			parsed, err := uuid.Parse(header)
			if err != nil {
				respondBadHeader(c, "INVALID_TENANT_ID", "Invalid tenant ID format")
				return
			}
			tenantID = parsed
		}
		if tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				"UNAUTHORIZED", "Tenant identification required", GetRequestID(c)))
			return
		}

		if header := strings.TrimSpace(c.GetHeader(UserHeaderKey)); header != "" {
			userID, err := uuid.Parse(header)
			if err != nil {
				respondBadHeader(c, "INVALID_USER_ID", "Invalid user ID format")
				return
			}
			c.Set(UserIDKey, userID)
		}

		c.Set(TenantIDKey, tenantID)
		ctx := logger.WithTenantID(c.Request.Context(), tenantID.String())
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Tenant identified", zap.String("tenant_id", tenantID.String()))
		}

		c.Next()
	}
}

func respondBadHeader(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetTenantUUID retrieves the tenant ID resolved by TenantMiddleware
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(TenantIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetUserUUID retrieves the acting user ID, if the request carried one
func GetUserUUID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
