package middleware

import (
	"strings"

	"github.com/asanorder/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	idempotencyKeyCtxKey = "idempotency_key"
	maxIdempotencyKeyLen = 255
)

// IdempotencyKey reads the Idempotency-Key header of a request and stores it in
// the gin context. Requests without the header pass through untouched.
func IdempotencyKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if len(key) > maxIdempotencyKeyLen {
			respondBadHeader(c, dto.ErrCodeBadRequest, "Idempotency-Key must be at most 255 characters")
			return
		}
		if key != "" {
			c.Set(idempotencyKeyCtxKey, key)
		}
		c.Next()
	}
}

// GetIdempotencyKey returns the key stored by IdempotencyKey, or the raw header
// when the middleware is not installed.
func GetIdempotencyKey(c *gin.Context) string {
	if key := c.GetString(idempotencyKeyCtxKey); key != "" {
		return key
	}
	return strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
}
