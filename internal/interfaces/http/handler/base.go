package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/asanorder/backend/internal/domain/shared"
	"github.com/asanorder/backend/internal/infrastructure/logger"
	"github.com/asanorder/backend/internal/interfaces/http/dto"
	"github.com/asanorder/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// getTenantID returns the tenant resolved by the tenant middleware.
// Handlers mounted without it read the header directly, falling back to the
// development tenant.
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	if id, ok := middleware.GetTenantUUID(c); ok {
		return id, nil
	}
	header := strings.TrimSpace(c.GetHeader(middleware.TenantHeaderKey))
	if header == "" {
		return middleware.DefaultTenantID, nil
	}
	return uuid.Parse(header)
}

// getUserID returns the acting user, uuid.Nil when the request names none
func getUserID(c *gin.Context) (uuid.UUID, error) {
	if id, ok := middleware.GetUserUUID(c); ok {
		return id, nil
	}
	header := strings.TrimSpace(c.GetHeader(middleware.UserHeaderKey))
	if header == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(header)
}

// userRef returns the acting user as an optional reference
func userRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	h.Error(c, http.StatusBadRequest, code, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts domain errors to their mapped status and everything
// else to a 500. Infrastructure details are logged, never returned.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.DomainErrorStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("request failed", zap.Error(err))
	_ = c.Error(err)
	h.InternalError(c, "An unexpected error occurred")
}

// bindJSON binds the request body, answering 400 itself on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// tenantAndID resolves the tenant and the :id path parameter
func (h *BaseHandler) tenantAndID(c *gin.Context, resource string) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "INVALID_TENANT_ID", "Invalid tenant ID format")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidID, "Invalid "+resource+" ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, id, true
}

// actor resolves the acting user, answering 400 itself on a malformed header
func (h *BaseHandler) actor(c *gin.Context) (uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "INVALID_USER_ID", "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}
