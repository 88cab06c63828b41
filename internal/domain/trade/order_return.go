package trade

import (
	"fmt"
	"time"

	"github.com/asanorder/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnStatus represents the status of an order return
type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "PENDING"  // Waiting for approval
	ReturnStatusApproved ReturnStatus = "APPROVED" // Approved, refund not yet paid out
	ReturnStatusRejected ReturnStatus = "REJECTED"
	ReturnStatusRefunded ReturnStatus = "REFUNDED"
)

// IsValid checks if the status is a valid ReturnStatus
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusPending, ReturnStatusApproved, ReturnStatusRejected, ReturnStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of ReturnStatus
func (s ReturnStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	switch s {
	case ReturnStatusPending:
		return target == ReturnStatusApproved || target == ReturnStatusRejected
	case ReturnStatusApproved:
		return target == ReturnStatusRefunded
	case ReturnStatusRejected, ReturnStatusRefunded:
		return false // Terminal states
	}
	return false
}

// OrderReturn represents a return raised against an order.
// The refund figures are a snapshot of the calculation at submission time.
type OrderReturn struct {
	shared.TenantAggregateRoot
	ReturnNumber           string
	OrderID                uuid.UUID
	OrderNumber            string
	CustomerName           string
	ReturnType             ReturnType
	ShippingChargeHandling ShippingChargeHandling // Empty for supplier returns
	SelectedLines          []OrderLine
	AdvanceBalance         decimal.Decimal
	ProductsValue          decimal.Decimal
	ShippingCharges        decimal.Decimal
	AdvanceUsed            decimal.Decimal
	RefundAmount           decimal.Decimal
	WrittenOffShortfall    decimal.Decimal
	Status                 ReturnStatus
	Reason                 string
	ReturnDate             time.Time
	ApprovedAt             *time.Time
	ApprovedBy             *uuid.UUID
	RejectedAt             *time.Time
	RejectedBy             *uuid.UUID
	RejectionReason        string
	RefundedAt             *time.Time
	RefundedBy             *uuid.UUID
}

// NewOrderReturn creates a pending return against an order and snapshots its refund.
// For CUSTOMER_FULL the selection is always every order line at its purchased quantity.
// Quantity availability against earlier returns is checked by ValidateReturnQuantities.
func NewOrderReturn(
	tenantID uuid.UUID,
	returnNumber string,
	order *Order,
	returnType ReturnType,
	handling ShippingChargeHandling,
	lines []OrderLine,
	advanceBalance decimal.Decimal,
	reason string,
	returnDate time.Time,
) (*OrderReturn, error) {
	if returnNumber == "" {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Return number cannot be empty")
	}
	if len(returnNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Return number cannot exceed 50 characters")
	}
	if order == nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order cannot be nil")
	}
	if !order.CanAcceptReturn() {
		return nil, shared.NewDomainError("INVALID_ORDER_STATUS", "Can only create returns for dispatched or completed orders")
	}
	handling, err := ValidateReturnOptions(returnType, handling)
	if err != nil {
		return nil, err
	}
	if advanceBalance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ADVANCE", "Advance balance cannot be negative")
	}

	var selected []OrderLine
	if returnType == ReturnTypeCustomerFull {
		selected = order.ResolvedLines()
	} else {
		if len(lines) == 0 {
			return nil, shared.ErrEmptySelection
		}
		selected = order.ResolveSelection(lines)
	}
	if returnDate.IsZero() {
		returnDate = time.Now()
	}

	breakdown := ComputeReturnRefund(order, returnType, selected, handling, advanceBalance)

	return &OrderReturn{
		TenantAggregateRoot:    shared.NewTenantAggregateRoot(tenantID),
		ReturnNumber:           returnNumber,
		OrderID:                order.ID,
		OrderNumber:            order.OrderNumber,
		CustomerName:           order.CustomerName,
		ReturnType:             returnType,
		ShippingChargeHandling: handling,
		SelectedLines:          selected,
		AdvanceBalance:         advanceBalance,
		ProductsValue:          breakdown.ProductsValue,
		ShippingCharges:        breakdown.ShippingCharges,
		AdvanceUsed:            breakdown.AdvanceUsed,
		RefundAmount:           breakdown.RefundAmount,
		WrittenOffShortfall:    breakdown.WrittenOffShortfall,
		Status:                 ReturnStatusPending,
		Reason:                 reason,
		ReturnDate:             returnDate,
	}, nil
}

// Breakdown returns the refund snapshot taken at submission
func (r *OrderReturn) Breakdown() RefundBreakdown {
	return RefundBreakdown{
		ProductsValue:       r.ProductsValue,
		ShippingCharges:     r.ShippingCharges,
		AdvanceUsed:         r.AdvanceUsed,
		RefundAmount:        r.RefundAmount,
		WrittenOffShortfall: r.WrittenOffShortfall,
	}
}

// Approve approves the return
// Transitions from PENDING to APPROVED
func (r *OrderReturn) Approve(approverID uuid.UUID) error {
	if !r.Status.CanTransitionTo(ReturnStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve return in %s status", r.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	r.Status = ReturnStatusApproved
	r.ApprovedAt = &now
	r.ApprovedBy = &approverID
	r.UpdatedAt = now
	return nil
}

// Reject rejects the return
// Transitions from PENDING to REJECTED
func (r *OrderReturn) Reject(rejecterID uuid.UUID, reason string) error {
	if !r.Status.CanTransitionTo(ReturnStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject return in %s status", r.Status))
	}
	if rejecterID == uuid.Nil {
		return shared.NewDomainError("INVALID_REJECTER", "Rejecter ID cannot be empty")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	r.Status = ReturnStatusRejected
	r.RejectedAt = &now
	r.RejectedBy = &rejecterID
	r.RejectionReason = reason
	r.UpdatedAt = now
	return nil
}

// MarkRefunded records that the refund was paid out
// Transitions from APPROVED to REFUNDED
func (r *OrderReturn) MarkRefunded(actorID uuid.UUID) error {
	if !r.Status.CanTransitionTo(ReturnStatusRefunded) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot refund return in %s status", r.Status))
	}
	if actorID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	now := time.Now()
	r.Status = ReturnStatusRefunded
	r.RefundedAt = &now
	r.RefundedBy = &actorID
	r.UpdatedAt = now
	return nil
}

// IsActive reports whether the return still counts against the order
func (r *OrderReturn) IsActive() bool {
	return r.Status != ReturnStatusRejected
}

// IsPending returns true if the return awaits a decision
func (r *OrderReturn) IsPending() bool {
	return r.Status == ReturnStatusPending
}

// ReturnedQuantities returns the quantity returned per line key
func (r *OrderReturn) ReturnedQuantities() AmountMap {
	out := make(AmountMap)
	for _, line := range r.SelectedLines {
		key := line.LineKey()
		out[key] = out[key].Add(line.ResolveQuantity(nil))
	}
	return out
}

// TotalReturnQuantity returns the sum of all returned quantities
func (r *OrderReturn) TotalReturnQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, q := range r.ReturnedQuantities() {
		total = total.Add(q)
	}
	return total
}
