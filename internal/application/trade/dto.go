package trade

import (
	"encoding/json"
	"time"

	"github.com/asanorder/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Order DTOs ====================

// OrderLineInput represents a product line in a request
type OrderLineInput struct {
	ProductID string           `json:"product_id" binding:"required,max=100"`
	VariantID string           `json:"variant_id" binding:"max=100"`
	Name      string           `json:"name" binding:"max=200"`
	Quantity  *decimal.Decimal `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// ToDomain converts the input to a domain order line
func (i OrderLineInput) ToDomain() trade.OrderLine {
	return trade.OrderLine{
		ProductID: i.ProductID,
		VariantID: i.VariantID,
		Name:      i.Name,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
	}
}

func toDomainLines(inputs []OrderLineInput) []trade.OrderLine {
	lines := make([]trade.OrderLine, len(inputs))
	for i, in := range inputs {
		lines[i] = in.ToDomain()
	}
	return lines
}

// CreateOrderRequest represents a request to create an order with explicit items
type CreateOrderRequest struct {
	CustomerName    string           `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerPhone   string           `json:"customer_phone" binding:"max=50"`
	CustomerAddress string           `json:"customer_address" binding:"max=500"`
	FormID          *uuid.UUID       `json:"form_id"`
	Items           []OrderLineInput `json:"items" binding:"required,min=1,dive"`
	ShippingCharges decimal.Decimal  `json:"shipping_charges"`
	Remark          string           `json:"remark"`
	CreatedBy       *uuid.UUID       `json:"-"`
}

// CreateLegacyOrderRequest represents a request in the legacy order shape.
// The quantity and price maps are accepted either as JSON objects or as
// JSON-encoded strings, the way older dashboard clients send them.
type CreateLegacyOrderRequest struct {
	CustomerName      string           `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerPhone     string           `json:"customer_phone" binding:"max=50"`
	CustomerAddress   string           `json:"customer_address" binding:"max=500"`
	FormID            *uuid.UUID       `json:"form_id"`
	SelectedProducts  []OrderLineInput `json:"selected_products" binding:"required,min=1,dive"`
	ProductQuantities json.RawMessage  `json:"product_quantities"`
	ProductPrices     json.RawMessage  `json:"product_prices"`
	ShippingCharges   decimal.Decimal  `json:"shipping_charges"`
	Remark            string           `json:"remark"`
	CreatedBy         *uuid.UUID       `json:"-"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// RecordPaymentRequest represents a payment received for an order
type RecordPaymentRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	IdempotencyKey string          `json:"-"`
}

// OrderListFilter represents filter options for order list
type OrderListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED DISPATCHED CANCELLED COMPLETED"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderLineResponse represents an order line with its resolved figures
type OrderLineResponse struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	LineKey   string          `json:"line_key"`
	Name      string          `json:"name,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PaymentStatusResponse represents the payment position of an order
type PaymentStatusResponse struct {
	Total           decimal.Decimal `json:"total"`
	Paid            decimal.Decimal `json:"paid"`
	Remaining       decimal.Decimal `json:"remaining"`
	IsFullyPaid     bool            `json:"is_fully_paid"`
	IsPartiallyPaid bool            `json:"is_partially_paid"`
	IsUnpaid        bool            `json:"is_unpaid"`
}

// OrderTotalsResponse represents the computed totals of an order
type OrderTotalsResponse struct {
	ProductsTotal          decimal.Decimal       `json:"products_total"`
	ShippingCharges        decimal.Decimal       `json:"shipping_charges"`
	SuggestedPaymentAmount decimal.Decimal       `json:"suggested_payment_amount"`
	PaymentStatus          PaymentStatusResponse `json:"payment_status"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                     uuid.UUID             `json:"id"`
	TenantID               uuid.UUID             `json:"tenant_id"`
	OrderNumber            string                `json:"order_number"`
	FormID                 *uuid.UUID            `json:"form_id,omitempty"`
	CustomerName           string                `json:"customer_name"`
	CustomerPhone          string                `json:"customer_phone,omitempty"`
	CustomerAddress        string                `json:"customer_address,omitempty"`
	Lines                  []OrderLineResponse   `json:"lines"`
	LineCount              int                   `json:"line_count"`
	ProductsTotal          decimal.Decimal       `json:"products_total"`
	ShippingCharges        decimal.Decimal       `json:"shipping_charges"`
	PaymentAmount          *decimal.Decimal      `json:"payment_amount"`
	SuggestedPaymentAmount decimal.Decimal       `json:"suggested_payment_amount"`
	PaymentStatus          PaymentStatusResponse `json:"payment_status"`
	Status                 string                `json:"status"`
	Remark                 string                `json:"remark,omitempty"`
	ConfirmedAt            *time.Time            `json:"confirmed_at,omitempty"`
	DispatchedAt           *time.Time            `json:"dispatched_at,omitempty"`
	CompletedAt            *time.Time            `json:"completed_at,omitempty"`
	CancelledAt            *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason           string                `json:"cancel_reason,omitempty"`
	LastPaymentAt          *time.Time            `json:"last_payment_at,omitempty"`
	CreatedAt              time.Time             `json:"created_at"`
	UpdatedAt              time.Time             `json:"updated_at"`
	Version                int                   `json:"version"`
}

// OrderListItemResponse represents an order in list responses
type OrderListItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerName    string          `json:"customer_name"`
	Status          string          `json:"status"`
	LineCount       int             `json:"line_count"`
	ProductsTotal   decimal.Decimal `json:"products_total"`
	ShippingCharges decimal.Decimal `json:"shipping_charges"`
	Paid            decimal.Decimal `json:"paid"`
	Remaining       decimal.Decimal `json:"remaining"`
	IsFullyPaid     bool            `json:"is_fully_paid"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToOrderLineResponses resolves lines against the given maps
func ToOrderLineResponses(lines []trade.OrderLine, quantities, prices trade.AmountMap) []OrderLineResponse {
	out := make([]OrderLineResponse, len(lines))
	for i, l := range lines {
		out[i] = OrderLineResponse{
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			LineKey:   l.LineKey(),
			Name:      l.Name,
			Quantity:  l.ResolveQuantity(quantities),
			UnitPrice: l.ResolveUnitPrice(prices),
			LineTotal: trade.ComputeLineTotal(l, quantities, prices),
		}
	}
	return out
}

// ToPaymentStatusResponse converts a domain payment status
func ToPaymentStatusResponse(s trade.PaymentStatus) PaymentStatusResponse {
	return PaymentStatusResponse{
		Total:           s.Total,
		Paid:            s.Paid,
		Remaining:       s.Remaining,
		IsFullyPaid:     s.IsFullyPaid,
		IsPartiallyPaid: s.IsPartiallyPaid,
		IsUnpaid:        s.IsUnpaid,
	}
}

// ToOrderTotalsResponse computes the totals of an order
func ToOrderTotalsResponse(o *trade.Order) OrderTotalsResponse {
	return OrderTotalsResponse{
		ProductsTotal:          trade.ComputeOrderTotal(o),
		ShippingCharges:        o.ShippingCharges,
		SuggestedPaymentAmount: trade.SuggestedPaymentAmount(o),
		PaymentStatus:          ToPaymentStatusResponse(trade.ComputePaymentStatus(o)),
	}
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *trade.Order) OrderResponse {
	status := trade.ComputePaymentStatus(o)
	return OrderResponse{
		ID:                     o.ID,
		TenantID:               o.TenantID,
		OrderNumber:            o.OrderNumber,
		FormID:                 o.FormID,
		CustomerName:           o.CustomerName,
		CustomerPhone:          o.CustomerPhone,
		CustomerAddress:        o.CustomerAddress,
		Lines:                  ToOrderLineResponses(o.Lines(), o.ProductQuantities, o.ProductPrices),
		LineCount:              o.LineCount(),
		ProductsTotal:          status.Total,
		ShippingCharges:        o.ShippingCharges,
		PaymentAmount:          o.PaymentAmount,
		SuggestedPaymentAmount: trade.SuggestedPaymentAmount(o),
		PaymentStatus:          ToPaymentStatusResponse(status),
		Status:                 string(o.Status),
		Remark:                 o.Remark,
		ConfirmedAt:            o.ConfirmedAt,
		DispatchedAt:           o.DispatchedAt,
		CompletedAt:            o.CompletedAt,
		CancelledAt:            o.CancelledAt,
		CancelReason:           o.CancelReason,
		LastPaymentAt:          o.LastPaymentAt,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
		Version:                o.Version,
	}
}

// ToOrderListItemResponse converts a domain order to a list item response
func ToOrderListItemResponse(o *trade.Order) OrderListItemResponse {
	status := trade.ComputePaymentStatus(o)
	return OrderListItemResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		Status:          string(o.Status),
		LineCount:       o.LineCount(),
		ProductsTotal:   status.Total,
		ShippingCharges: o.ShippingCharges,
		Paid:            status.Paid,
		Remaining:       status.Remaining,
		IsFullyPaid:     status.IsFullyPaid,
		CreatedAt:       o.CreatedAt,
	}
}

// ToOrderListItemResponses converts a slice of domain orders
func ToOrderListItemResponses(orders []trade.Order) []OrderListItemResponse {
	out := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderListItemResponse(&orders[i])
	}
	return out
}

// ==================== Order Return DTOs ====================

// ReturnLineInput selects a purchased line for return. It carries no price;
// refunds are always priced from the order.
type ReturnLineInput struct {
	ProductID string           `json:"product_id" binding:"required,max=100"`
	VariantID string           `json:"variant_id" binding:"max=100"`
	Quantity  *decimal.Decimal `json:"quantity"`
}

func toReturnLines(inputs []ReturnLineInput) []trade.OrderLine {
	lines := make([]trade.OrderLine, len(inputs))
	for i, in := range inputs {
		lines[i] = trade.OrderLine{
			ProductID: in.ProductID,
			VariantID: in.VariantID,
			Quantity:  in.Quantity,
		}
	}
	return lines
}

// ReturnPreviewRequest represents a proposed return to be priced
type ReturnPreviewRequest struct {
	ReturnType             string            `json:"return_type" binding:"required,oneof=CUSTOMER_FULL CUSTOMER_PARTIAL SUPPLIER"`
	ShippingChargeHandling string            `json:"shipping_charge_handling" binding:"omitempty,oneof=FULL_REFUND CUSTOMER_PAYS DEDUCT_FROM_ADVANCE"`
	SelectedLines          []ReturnLineInput `json:"selected_lines" binding:"omitempty,dive"`
	AdvanceBalance         decimal.Decimal   `json:"advance_balance"`
}

// CreateOrderReturnRequest represents a request to submit a return
type CreateOrderReturnRequest struct {
	ReturnPreviewRequest
	Reason     string     `json:"reason" binding:"max=500"`
	ReturnDate *time.Time `json:"return_date"`
	CreatedBy  *uuid.UUID `json:"-"`
}

// RejectOrderReturnRequest represents a request to reject a return
type RejectOrderReturnRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// RefundBreakdownResponse represents a refund calculation
type RefundBreakdownResponse struct {
	ProductsValue       decimal.Decimal `json:"products_value"`
	ShippingCharges     decimal.Decimal `json:"shipping_charges"`
	AdvanceUsed         decimal.Decimal `json:"advance_used"`
	RefundAmount        decimal.Decimal `json:"refund_amount"`
	WrittenOffShortfall decimal.Decimal `json:"written_off_shortfall"`
}

// ReturnPreviewResponse represents a priced return proposal
type ReturnPreviewResponse struct {
	RefundBreakdownResponse
	SelectedLines       []OrderLineResponse        `json:"selected_lines"`
	AvailableQuantities map[string]decimal.Decimal `json:"available_quantities"`
}

// OrderReturnResponse represents an order return in API responses
type OrderReturnResponse struct {
	ID                     uuid.UUID           `json:"id"`
	TenantID               uuid.UUID           `json:"tenant_id"`
	ReturnNumber           string              `json:"return_number"`
	OrderID                uuid.UUID           `json:"order_id"`
	OrderNumber            string              `json:"order_number"`
	CustomerName           string              `json:"customer_name"`
	ReturnType             string              `json:"return_type"`
	ShippingChargeHandling string              `json:"shipping_charge_handling,omitempty"`
	SelectedLines          []OrderLineResponse `json:"selected_lines"`
	TotalQuantity          decimal.Decimal     `json:"total_quantity"`
	AdvanceBalance         decimal.Decimal     `json:"advance_balance"`
	RefundBreakdownResponse
	Status          string     `json:"status"`
	Reason          string     `json:"reason,omitempty"`
	ReturnDate      time.Time  `json:"return_date"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ApprovedBy      *uuid.UUID `json:"approved_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectedBy      *uuid.UUID `json:"rejected_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	RefundedAt      *time.Time `json:"refunded_at,omitempty"`
	RefundedBy      *uuid.UUID `json:"refunded_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Version         int        `json:"version"`
}

// ToRefundBreakdownResponse converts a domain refund breakdown
func ToRefundBreakdownResponse(b trade.RefundBreakdown) RefundBreakdownResponse {
	return RefundBreakdownResponse{
		ProductsValue:       b.ProductsValue,
		ShippingCharges:     b.ShippingCharges,
		AdvanceUsed:         b.AdvanceUsed,
		RefundAmount:        b.RefundAmount,
		WrittenOffShortfall: b.WrittenOffShortfall,
	}
}

// ToOrderReturnResponse converts a domain order return to a response
func ToOrderReturnResponse(r *trade.OrderReturn) OrderReturnResponse {
	return OrderReturnResponse{
		ID:                      r.ID,
		TenantID:                r.TenantID,
		ReturnNumber:            r.ReturnNumber,
		OrderID:                 r.OrderID,
		OrderNumber:             r.OrderNumber,
		CustomerName:            r.CustomerName,
		ReturnType:              string(r.ReturnType),
		ShippingChargeHandling:  string(r.ShippingChargeHandling),
		SelectedLines:           ToOrderLineResponses(r.SelectedLines, nil, nil),
		TotalQuantity:           r.TotalReturnQuantity(),
		AdvanceBalance:          r.AdvanceBalance,
		RefundBreakdownResponse: ToRefundBreakdownResponse(r.Breakdown()),
		Status:                  string(r.Status),
		Reason:                  r.Reason,
		ReturnDate:              r.ReturnDate,
		ApprovedAt:              r.ApprovedAt,
		ApprovedBy:              r.ApprovedBy,
		RejectedAt:              r.RejectedAt,
		RejectedBy:              r.RejectedBy,
		RejectionReason:         r.RejectionReason,
		RefundedAt:              r.RefundedAt,
		RefundedBy:              r.RefundedBy,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
		Version:                 r.Version,
	}
}

// ToOrderReturnResponses converts a slice of domain order returns
func ToOrderReturnResponses(returns []trade.OrderReturn) []OrderReturnResponse {
	out := make([]OrderReturnResponse, len(returns))
	for i := range returns {
		out[i] = ToOrderReturnResponse(&returns[i])
	}
	return out
}
