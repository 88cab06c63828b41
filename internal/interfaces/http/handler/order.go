package handler

import (
	"context"

	tradeapp "github.com/asanorder/backend/internal/application/trade"
	"github.com/asanorder/backend/internal/domain/shared"
	"github.com/asanorder/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles order-related API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Create creates an order from explicit items
// POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "INVALID_TENANT_ID", "Invalid tenant ID format")
		return
	}
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	var req tradeapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = userRef(userID)

	order, err := h.orderService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// CreateLegacy creates an order from a selected product list plus quantity
// and price maps
// POST /orders/legacy
func (h *OrderHandler) CreateLegacy(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "INVALID_TENANT_ID", "Invalid tenant ID format")
		return
	}
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	var req tradeapp.CreateLegacyOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = userRef(userID)

	order, err := h.orderService.CreateLegacy(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID returns an order with its line figures and totals
// GET /orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	tenantID, orderID, ok := h.tenantAndID(c, "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List lists orders with paging, status filter and search
// GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "INVALID_TENANT_ID", "Invalid tenant ID format")
		return
	}

	var filter tradeapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paging := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	h.SuccessWithMeta(c, orders, total, paging.Page, paging.PageSize)
}

// Confirm confirms a pending order
// POST /orders/:id/confirm
func (h *OrderHandler) Confirm(c *gin.Context) {
	h.transition(c, h.orderService.Confirm)
}

// Dispatch hands a confirmed order to the courier
// POST /orders/:id/dispatch
func (h *OrderHandler) Dispatch(c *gin.Context) {
	h.transition(c, h.orderService.Dispatch)
}

// Complete marks a dispatched order as delivered
// POST /orders/:id/complete
func (h *OrderHandler) Complete(c *gin.Context) {
	h.transition(c, h.orderService.Complete)
}

// Cancel cancels a pending or confirmed order
// POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	tenantID, orderID, ok := h.tenantAndID(c, "order")
	if !ok {
		return
	}

	var req tradeapp.CancelOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

func (h *OrderHandler) transition(c *gin.Context, apply func(ctx context.Context, tenantID, orderID uuid.UUID) (*tradeapp.OrderResponse, error)) {
	tenantID, orderID, ok := h.tenantAndID(c, "order")
	if !ok {
		return
	}

	order, err := apply(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// RecordPayment adds a received amount to the order.
// A repeated Idempotency-Key is answered with 409 DUPLICATE_REQUEST.
// POST /orders/:id/payments
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	tenantID, orderID, ok := h.tenantAndID(c, "order")
	if !ok {
		return
	}

	var req tradeapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.IdempotencyKey = middleware.GetIdempotencyKey(c)

	order, err := h.orderService.RecordPayment(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// GetPaymentStatus returns total, paid and remaining for an order
// GET /orders/:id/payment-status
func (h *OrderHandler) GetPaymentStatus(c *gin.Context) {
	tenantID, orderID, ok := h.tenantAndID(c, "order")
	if !ok {
		return
	}

	status, err := h.orderService.GetPaymentStatus(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, status)
}

// GetTotals returns the products total, shipping and order total
// GET /orders/:id/totals
func (h *OrderHandler) GetTotals(c *gin.Context) {
	tenantID, orderID, ok := h.tenantAndID(c, "order")
	if !ok {
		return
	}

	totals, err := h.orderService.GetTotals(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, totals)
}
