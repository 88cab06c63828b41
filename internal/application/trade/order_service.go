package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/asanorder/backend/internal/domain/shared"
	"github.com/asanorder/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles order business operations
type OrderService struct {
	orderRepo      trade.OrderRepository
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// OrderServiceOption configures an OrderService
type OrderServiceOption func(*OrderService)

// WithIdempotencyTTL sets how long a payment idempotency key is remembered
func WithIdempotencyTTL(ttl time.Duration) OrderServiceOption {
	return func(s *OrderService) {
		if ttl > 0 {
			s.idempotencyTTL = ttl
		}
	}
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...OrderServiceOption,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OrderService{
		orderRepo:      orderRepo,
		idempotency:    idempotency,
		idempotencyTTL: shared.DefaultIdempotencyTTL,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create creates a new order with explicit items
func (s *OrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	order, err := trade.NewOrder(tenantID, orderNumber, req.CustomerName, toDomainLines(req.Items), req.ShippingCharges)
	if err != nil {
		return nil, err
	}
	s.applyOrderDetails(order, req.CustomerPhone, req.CustomerAddress, req.FormID, req.Remark, req.CreatedBy)

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("lines", order.LineCount()),
	)

	response := ToOrderResponse(order)
	return &response, nil
}

// CreateLegacy creates an order from the legacy selected-products shape
func (s *OrderService) CreateLegacy(ctx context.Context, tenantID uuid.UUID, req CreateLegacyOrderRequest) (*OrderResponse, error) {
	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	order, err := trade.NewLegacyOrder(
		tenantID,
		orderNumber,
		req.CustomerName,
		toDomainLines(req.SelectedProducts),
		trade.ParseAmountMap(req.ProductQuantities),
		trade.ParseAmountMap(req.ProductPrices),
		req.ShippingCharges,
	)
	if err != nil {
		return nil, err
	}
	s.applyOrderDetails(order, req.CustomerPhone, req.CustomerAddress, req.FormID, req.Remark, req.CreatedBy)

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) applyOrderDetails(order *trade.Order, phone, address string, formID *uuid.UUID, remark string, createdBy *uuid.UUID) {
	if phone != "" || address != "" {
		order.SetCustomerContact(phone, address)
	}
	if formID != nil {
		order.SetForm(*formID)
	}
	if remark != "" {
		order.SetRemark(remark)
	}
	if createdBy != nil {
		order.SetCreatedBy(*createdBy)
	}
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves a list of orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, tenantID uuid.UUID, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}.Normalize()

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	orders, err := s.orderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderListItemResponses(orders), total, nil
}

// Confirm confirms a pending order
func (s *OrderService) Confirm(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, (*trade.Order).Confirm)
}

// Dispatch hands a confirmed order to the courier
func (s *OrderService) Dispatch(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, (*trade.Order).Dispatch)
}

// Complete marks a dispatched order as delivered
func (s *OrderService) Complete(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, (*trade.Order).Complete)
}

// Cancel cancels an order
func (s *OrderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(o *trade.Order) error {
		return o.Cancel(req.Reason)
	})
}

func (s *OrderService) transition(ctx context.Context, tenantID, orderID uuid.UUID, apply func(*trade.Order) error) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := apply(order); err != nil {
		return nil, err
	}

	// Save with optimistic locking
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", from.String()),
		zap.String("to", order.Status.String()),
	)

	response := ToOrderResponse(order)
	return &response, nil
}

// RecordPayment adds a received amount to the order's cumulative payment.
// When an idempotency key is supplied a retried request is rejected with
// DUPLICATE_REQUEST instead of counting the money twice.
func (s *OrderService) RecordPayment(ctx context.Context, tenantID, orderID uuid.UUID, req RecordPaymentRequest) (*OrderResponse, error) {
	var key string
	if req.IdempotencyKey != "" && s.idempotency != nil {
		key = fmt.Sprintf("payment:%s:%s:%s", tenantID, orderID, req.IdempotencyKey)
		first, err := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if !first {
			return nil, shared.ErrDuplicateRequest
		}
	}

	response, err := s.recordPayment(ctx, tenantID, orderID, req)
	if err != nil && key != "" {
		// Let the client retry a request that did not go through
		if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
			s.logger.Warn("failed to release idempotency key",
				zap.String("key", key),
				zap.Error(releaseErr),
			)
		}
	}
	return response, err
}

func (s *OrderService) recordPayment(ctx context.Context, tenantID, orderID uuid.UUID, req RecordPaymentRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.RecordPayment(req.Amount); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	status := trade.ComputePaymentStatus(order)
	s.logger.Info("payment recorded",
		zap.String("order_number", order.OrderNumber),
		zap.String("amount", req.Amount.String()),
		zap.String("paid", status.Paid.String()),
		zap.String("remaining", status.Remaining.String()),
	)
	if status.Remaining.IsNegative() {
		s.logger.Warn("order overpaid",
			zap.String("order_number", order.OrderNumber),
			zap.String("overpaid_by", status.Remaining.Neg().String()),
		)
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// GetPaymentStatus returns the payment position of an order
func (s *OrderService) GetPaymentStatus(ctx context.Context, tenantID, orderID uuid.UUID) (*PaymentStatusResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentStatusResponse(trade.ComputePaymentStatus(order))
	return &response, nil
}

// GetTotals returns the computed totals of an order
func (s *OrderService) GetTotals(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderTotalsResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderTotalsResponse(order)
	return &response, nil
}
