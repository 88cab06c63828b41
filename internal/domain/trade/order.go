package trade

import (
	"fmt"
	"time"

	"github.com/asanorder/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusDispatched OrderStatus = "DISPATCHED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDispatched,
		OrderStatusCancelled, OrderStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusDispatched || target == OrderStatusCancelled
	case OrderStatusDispatched:
		return target == OrderStatusCompleted
	case OrderStatusCancelled, OrderStatusCompleted:
		return false // Terminal states
	}
	return false
}

// OrderItem is a line of a newer order. Unlike legacy selected products,
// items always carry an explicit quantity and unit price.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   string
	VariantID   string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrderItem creates a new order item
func NewOrderItem(orderID uuid.UUID, productID, variantID, productName string, quantity, unitPrice decimal.Decimal) (*OrderItem, error) {
	if productID == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !quantity.IsInteger() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a whole number")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		VariantID:   variantID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Line returns the item as an order line with explicit quantity and price
func (i OrderItem) Line() OrderLine {
	return NewOrderLine(i.ProductID, i.VariantID, i.ProductName, i.Quantity, i.UnitPrice)
}

// Amount returns quantity * unit price
func (i OrderItem) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// Order represents a customer order aggregate root.
// Newer orders carry Items; legacy orders carry SelectedProducts together with
// the parallel ProductQuantities and ProductPrices maps.
type Order struct {
	shared.TenantAggregateRoot
	OrderNumber       string
	FormID            *uuid.UUID // Shareable form that produced the order
	CustomerName      string
	CustomerPhone     string
	CustomerAddress   string
	SelectedProducts  []OrderLine
	Items             []OrderItem
	ProductQuantities AmountMap
	ProductPrices     AmountMap
	ShippingCharges   decimal.Decimal
	PaymentAmount     *decimal.Decimal // Cumulative amount received, nil when never set
	Status            OrderStatus
	Remark            string
	ConfirmedAt       *time.Time
	DispatchedAt      *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	CancelReason      string
	LastPaymentAt     *time.Time
}

// NewOrder creates a new order from explicit lines.
// Every line must carry a positive quantity and a non-negative unit price.
func NewOrder(
	tenantID uuid.UUID,
	orderNumber string,
	customerName string,
	lines []OrderLine,
	shippingCharges decimal.Decimal,
) (*Order, error) {
	order, err := newOrder(tenantID, orderNumber, customerName, shippingCharges)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order must contain at least one product")
	}

	for _, line := range lines {
		if line.Quantity == nil {
			return nil, shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Quantity is required for product %s", line.ProductID))
		}
		if line.UnitPrice == nil {
			return nil, shared.NewDomainError("INVALID_PRICE", fmt.Sprintf("Unit price is required for product %s", line.ProductID))
		}
		if _, err := order.AddItem(line.ProductID, line.VariantID, line.Name, *line.Quantity, *line.UnitPrice); err != nil {
			return nil, err
		}
	}

	return order, nil
}

// NewLegacyOrder creates an order in the legacy shape: a selected product list
// plus quantity and price maps keyed by line key or product id.
func NewLegacyOrder(
	tenantID uuid.UUID,
	orderNumber string,
	customerName string,
	selected []OrderLine,
	quantities AmountMap,
	prices AmountMap,
	shippingCharges decimal.Decimal,
) (*Order, error) {
	order, err := newOrder(tenantID, orderNumber, customerName, shippingCharges)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order must contain at least one product")
	}
	for _, line := range selected {
		if line.ProductID == "" {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
		}
		if line.Quantity != nil && !line.Quantity.IsInteger() {
			return nil, shared.NewDomainError("INVALID_QUANTITY",
				fmt.Sprintf("Quantity for product %s must be a whole number", line.LineKey()))
		}
	}
	for key, q := range quantities {
		if !q.IsInteger() {
			return nil, shared.NewDomainError("INVALID_QUANTITY",
				fmt.Sprintf("Quantity for product %s must be a whole number", key))
		}
	}

	order.SelectedProducts = append([]OrderLine(nil), selected...)
	order.ProductQuantities = quantities.Clone()
	order.ProductPrices = prices.Clone()
	return order, nil
}

func newOrder(tenantID uuid.UUID, orderNumber, customerName string, shippingCharges decimal.Decimal) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot be empty")
	}
	if shippingCharges.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SHIPPING", "Shipping charges cannot be negative")
	}

	return &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		CustomerName:        customerName,
		Items:               make([]OrderItem, 0),
		ProductQuantities:   make(AmountMap),
		ProductPrices:       make(AmountMap),
		ShippingCharges:     shippingCharges,
		Status:              OrderStatusPending,
	}, nil
}

// AddItem adds a new item to the order
// Only allowed in PENDING status
func (o *Order) AddItem(productID, variantID, name string, quantity, unitPrice decimal.Decimal) (*OrderItem, error) {
	if o.Status != OrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-pending order")
	}
	key := LineKey(productID, variantID)
	for _, item := range o.Items {
		if LineKey(item.ProductID, item.VariantID) == key {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", fmt.Sprintf("Product %s already exists in order", key))
		}
	}

	item, err := NewOrderItem(o.ID, productID, variantID, name, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	o.Touch()
	return item, nil
}

// SetCustomerContact sets the phone and address of the customer
func (o *Order) SetCustomerContact(phone, address string) {
	o.CustomerPhone = phone
	o.CustomerAddress = address
	o.Touch()
}

// SetForm links the order to the shareable form it was submitted through
func (o *Order) SetForm(formID uuid.UUID) {
	o.FormID = &formID
	o.Touch()
}

// SetRemark sets the order remark
func (o *Order) SetRemark(remark string) {
	o.Remark = remark
	o.Touch()
}

// UpdateShippingCharges changes the shipping charges before dispatch
func (o *Order) UpdateShippingCharges(amount decimal.Decimal) error {
	if o.Status != OrderStatusPending && o.Status != OrderStatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change shipping charges in %s status", o.Status))
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_SHIPPING", "Shipping charges cannot be negative")
	}
	o.ShippingCharges = amount
	o.Touch()
	return nil
}

// Lines returns the order's lines: items when any exist, otherwise the legacy
// selected products.
func (o *Order) Lines() []OrderLine {
	if len(o.Items) > 0 {
		lines := make([]OrderLine, len(o.Items))
		for i, item := range o.Items {
			lines[i] = item.Line()
		}
		return lines
	}
	return o.SelectedProducts
}

// ResolvedLines returns the order's lines with quantity and unit price made
// explicit from the order's maps.
func (o *Order) ResolvedLines() []OrderLine {
	lines := o.Lines()
	out := make([]OrderLine, len(lines))
	for i, line := range lines {
		out[i] = o.resolveLine(line, o.ProductQuantities, o.ProductPrices)
	}
	return out
}

// ResolveSelection makes quantity and unit price explicit on lines chosen
// from this order. A missing quantity comes from the order's own line first
// and then from its quantity map. The unit price always comes from the order,
// whatever the selection carries, and an empty name is taken from the order.
func (o *Order) ResolveSelection(selected []OrderLine) []OrderLine {
	quantities, prices := o.EffectiveQuantities(), o.EffectivePrices()
	names := make(map[string]string)
	for _, line := range o.Lines() {
		names[line.LineKey()] = line.Name
	}

	out := make([]OrderLine, len(selected))
	for i, line := range selected {
		line.UnitPrice = nil
		if line.Name == "" {
			line.Name = names[line.LineKey()]
		}
		out[i] = o.resolveLine(line, quantities, prices)
	}
	return out
}

func (o *Order) resolveLine(line OrderLine, quantities, prices AmountMap) OrderLine {
	q := line.ResolveQuantity(quantities)
	p := line.ResolveUnitPrice(prices)
	line.Quantity = &q
	line.UnitPrice = &p
	return line
}

// EffectiveQuantities returns the quantity map with explicit line quantities
// layered over the stored map, so explicit values win over map entries.
func (o *Order) EffectiveQuantities() AmountMap {
	out := o.ProductQuantities.Clone()
	for _, line := range o.Lines() {
		if line.Quantity != nil {
			out[line.LineKey()] = *line.Quantity
		}
	}
	return out
}

// EffectivePrices returns the price map with explicit line prices layered
// over the stored map.
func (o *Order) EffectivePrices() AmountMap {
	out := o.ProductPrices.Clone()
	for _, line := range o.Lines() {
		if line.UnitPrice != nil {
			out[line.LineKey()] = *line.UnitPrice
		}
	}
	return out
}

// PurchasedQuantities returns the resolved quantity per line key
func (o *Order) PurchasedQuantities() AmountMap {
	out := make(AmountMap)
	for _, line := range o.Lines() {
		key := line.LineKey()
		out[key] = out[key].Add(line.ResolveQuantity(o.ProductQuantities))
	}
	return out
}

// Confirm confirms the order
// Transitions from PENDING to CONFIRMED
func (o *Order) Confirm() error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	if len(o.Lines()) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm order without products")
	}

	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	return nil
}

// Dispatch marks the order as handed to the courier
// Transitions from CONFIRMED to DISPATCHED
func (o *Order) Dispatch() error {
	if !o.Status.CanTransitionTo(OrderStatusDispatched) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot dispatch order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusDispatched
	o.DispatchedAt = &now
	o.UpdatedAt = now
	return nil
}

// Complete marks the order as delivered
// Transitions from DISPATCHED to COMPLETED
func (o *Order) Complete() error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	return nil
}

// Cancel cancels the order
// Allowed in PENDING or CONFIRMED status
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	return nil
}

// RecordPayment adds a received amount to the cumulative payment amount.
// Overpayment is allowed and surfaces as a negative remaining balance.
func (o *Order) RecordPayment(amount decimal.Decimal) error {
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot record payment for a cancelled order")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	paid := decimal.Zero
	if o.PaymentAmount != nil {
		paid = *o.PaymentAmount
	}
	paid = paid.Add(amount)

	now := time.Now()
	o.PaymentAmount = &paid
	o.LastPaymentAt = &now
	o.UpdatedAt = now
	return nil
}

// CanAcceptReturn reports whether returns may be raised against the order
func (o *Order) CanAcceptReturn() bool {
	return o.Status == OrderStatusDispatched || o.Status == OrderStatusCompleted
}

// IsPending returns true if order is pending
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsCancelled returns true if order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// LineCount returns the number of lines in the order
func (o *Order) LineCount() int {
	return len(o.Lines())
}
