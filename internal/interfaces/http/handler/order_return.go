package handler

import (
	tradeapp "github.com/asanorder/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// OrderReturnHandler handles order return API endpoints
type OrderReturnHandler struct {
	BaseHandler
	returnService *tradeapp.OrderReturnService
}

// NewOrderReturnHandler creates a new OrderReturnHandler
func NewOrderReturnHandler(returnService *tradeapp.OrderReturnService) *OrderReturnHandler {
	return &OrderReturnHandler{
		returnService: returnService,
	}
}

// Preview prices a proposed return without saving it
// POST /orders/:id/returns/preview
func (h *OrderReturnHandler) Preview(c *gin.Context) {
	tenantID, orderID, ok := h.tenantAndID(c, "order")
	if !ok {
		return
	}

	var req tradeapp.ReturnPreviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	preview, err := h.returnService.Preview(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, preview)
}

// Create submits a return against an order
// POST /orders/:id/returns
func (h *OrderReturnHandler) Create(c *gin.Context) {
	tenantID, orderID, ok := h.tenantAndID(c, "order")
	if !ok {
		return
	}
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	var req tradeapp.CreateOrderReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = userRef(userID)

	r, err := h.returnService.Create(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, r)
}

// ListByOrder lists every return raised against an order
// GET /orders/:id/returns
func (h *OrderReturnHandler) ListByOrder(c *gin.Context) {
	tenantID, orderID, ok := h.tenantAndID(c, "order")
	if !ok {
		return
	}

	returns, err := h.returnService.ListByOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, returns)
}

// GetByID returns a single return
// GET /returns/:id
func (h *OrderReturnHandler) GetByID(c *gin.Context) {
	tenantID, returnID, ok := h.tenantAndID(c, "return")
	if !ok {
		return
	}

	r, err := h.returnService.GetByID(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, r)
}

// Approve approves a pending return
// POST /returns/:id/approve
func (h *OrderReturnHandler) Approve(c *gin.Context) {
	tenantID, returnID, ok := h.tenantAndID(c, "return")
	if !ok {
		return
	}
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	r, err := h.returnService.Approve(c.Request.Context(), tenantID, returnID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, r)
}

// Reject rejects a pending return with a reason
// POST /returns/:id/reject
func (h *OrderReturnHandler) Reject(c *gin.Context) {
	tenantID, returnID, ok := h.tenantAndID(c, "return")
	if !ok {
		return
	}
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	var req tradeapp.RejectOrderReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}

	r, err := h.returnService.Reject(c.Request.Context(), tenantID, returnID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, r)
}

// MarkRefunded records that an approved return has been paid out
// POST /returns/:id/refund
func (h *OrderReturnHandler) MarkRefunded(c *gin.Context) {
	tenantID, returnID, ok := h.tenantAndID(c, "return")
	if !ok {
		return
	}
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	r, err := h.returnService.MarkRefunded(c.Request.Context(), tenantID, returnID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, r)
}
