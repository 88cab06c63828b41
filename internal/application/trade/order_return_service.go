package trade

import (
	"context"
	"time"

	"github.com/asanorder/backend/internal/domain/shared"
	"github.com/asanorder/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderReturnService handles order return business operations
type OrderReturnService struct {
	returnRepo trade.OrderReturnRepository
	orderRepo  trade.OrderRepository
	txScope    TransactionScope
	logger     *zap.Logger
}

// OrderReturnServiceOption customizes an OrderReturnService
type OrderReturnServiceOption func(*OrderReturnService)

// WithTransactionScope makes Create lock the order and insert the return in
// one transaction, so concurrent returns cannot oversubscribe a line
func WithTransactionScope(scope TransactionScope) OrderReturnServiceOption {
	return func(s *OrderReturnService) {
		if scope != nil {
			s.txScope = scope
		}
	}
}

// NewOrderReturnService creates a new OrderReturnService.
// Without WithTransactionScope, Create runs directly on the given repositories.
func NewOrderReturnService(
	returnRepo trade.OrderReturnRepository,
	orderRepo trade.OrderRepository,
	logger *zap.Logger,
	opts ...OrderReturnServiceOption,
) *OrderReturnService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OrderReturnService{
		returnRepo: returnRepo,
		orderRepo:  orderRepo,
		txScope:    directScope{orders: orderRepo, returns: returnRepo},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview prices a proposed return without persisting anything
func (s *OrderReturnService) Preview(ctx context.Context, tenantID, orderID uuid.UUID, req ReturnPreviewRequest) (*ReturnPreviewResponse, error) {
	returnType := trade.ReturnType(req.ReturnType)
	handling, err := trade.ValidateReturnOptions(returnType, trade.ShippingChargeHandling(req.ShippingChargeHandling))
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	existing, err := s.returnRepo.FindByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	var selected []trade.OrderLine
	if returnType == trade.ReturnTypeCustomerFull {
		selected = order.ResolvedLines()
	} else {
		selected = order.ResolveSelection(toReturnLines(req.SelectedLines))
	}

	breakdown := trade.ComputeReturnRefund(order, returnType, selected, handling, req.AdvanceBalance)

	return &ReturnPreviewResponse{
		RefundBreakdownResponse: ToRefundBreakdownResponse(breakdown),
		SelectedLines:           ToOrderLineResponses(selected, nil, nil),
		AvailableQuantities:     trade.AvailableQuantities(order, existing),
	}, nil
}

// Create validates and submits a return against an order.
// The order row stays locked from the availability check until the return is
// saved.
func (s *OrderReturnService) Create(ctx context.Context, tenantID, orderID uuid.UUID, req CreateOrderReturnRequest) (*OrderReturnResponse, error) {
	var r *trade.OrderReturn
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if !order.CanAcceptReturn() {
			return shared.NewDomainError("INVALID_ORDER_STATUS", "Can only create returns for dispatched or completed orders")
		}

		existing, err := repos.ReturnRepo().FindByOrder(ctx, tenantID, orderID)
		if err != nil {
			return err
		}

		returnType := trade.ReturnType(req.ReturnType)
		lines := toReturnLines(req.SelectedLines)
		if err := trade.ValidateReturnQuantities(returnType, lines, order, existing); err != nil {
			return err
		}

		returnNumber, err := repos.ReturnRepo().GenerateReturnNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		var returnDate time.Time
		if req.ReturnDate != nil {
			returnDate = *req.ReturnDate
		}

		r, err = trade.NewOrderReturn(
			tenantID,
			returnNumber,
			order,
			returnType,
			trade.ShippingChargeHandling(req.ShippingChargeHandling),
			lines,
			req.AdvanceBalance,
			req.Reason,
			returnDate,
		)
		if err != nil {
			return err
		}
		if req.CreatedBy != nil {
			r.SetCreatedBy(*req.CreatedBy)
		}

		return repos.ReturnRepo().Save(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	if r.Breakdown().HasShortfall() {
		s.logger.Warn("return refund clamped to zero, shipping shortfall written off",
			zap.String("return_number", r.ReturnNumber),
			zap.String("order_number", r.OrderNumber),
			zap.String("shipping_charges", r.ShippingCharges.String()),
			zap.String("advance_used", r.AdvanceUsed.String()),
			zap.String("written_off", r.WrittenOffShortfall.String()),
		)
	}

	s.logger.Info("order return created",
		zap.String("return_number", r.ReturnNumber),
		zap.String("order_number", r.OrderNumber),
		zap.String("return_type", r.ReturnType.String()),
		zap.String("refund_amount", r.RefundAmount.String()),
	)

	response := ToOrderReturnResponse(r)
	return &response, nil
}

// GetByID retrieves a return by ID
func (s *OrderReturnService) GetByID(ctx context.Context, tenantID, returnID uuid.UUID) (*OrderReturnResponse, error) {
	r, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}
	response := ToOrderReturnResponse(r)
	return &response, nil
}

// ListByOrder retrieves all returns raised against an order
func (s *OrderReturnService) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]OrderReturnResponse, error) {
	if _, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	returns, err := s.returnRepo.FindByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	return ToOrderReturnResponses(returns), nil
}

// Approve approves a pending return
func (s *OrderReturnService) Approve(ctx context.Context, tenantID, returnID, approverID uuid.UUID) (*OrderReturnResponse, error) {
	return s.transition(ctx, tenantID, returnID, func(r *trade.OrderReturn) error {
		return r.Approve(approverID)
	})
}

// Reject rejects a pending return
func (s *OrderReturnService) Reject(ctx context.Context, tenantID, returnID, rejecterID uuid.UUID, req RejectOrderReturnRequest) (*OrderReturnResponse, error) {
	return s.transition(ctx, tenantID, returnID, func(r *trade.OrderReturn) error {
		return r.Reject(rejecterID, req.Reason)
	})
}

// MarkRefunded records that an approved return has been paid out
func (s *OrderReturnService) MarkRefunded(ctx context.Context, tenantID, returnID, actorID uuid.UUID) (*OrderReturnResponse, error) {
	return s.transition(ctx, tenantID, returnID, func(r *trade.OrderReturn) error {
		return r.MarkRefunded(actorID)
	})
}

func (s *OrderReturnService) transition(ctx context.Context, tenantID, returnID uuid.UUID, apply func(*trade.OrderReturn) error) (*OrderReturnResponse, error) {
	r, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}

	from := r.Status
	if err := apply(r); err != nil {
		return nil, err
	}

	// Save with optimistic locking
	if err := s.returnRepo.SaveWithLock(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("order return status changed",
		zap.String("return_number", r.ReturnNumber),
		zap.String("from", from.String()),
		zap.String("to", r.Status.String()),
	)

	response := ToOrderReturnResponse(r)
	return &response, nil
}
