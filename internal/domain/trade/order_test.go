package trade

import (
	"testing"

	"github.com/asanorder/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// OrderStatus Tests
// ============================================

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		isValid bool
	}{
		{OrderStatusPending, true},
		{OrderStatusConfirmed, true},
		{OrderStatusDispatched, true},
		{OrderStatusCompleted, true},
		{OrderStatusCancelled, true},
		{OrderStatus("SHIPPED"), false},
		{OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		canTrans bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusDispatched, false},
		{OrderStatusConfirmed, OrderStatusDispatched, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusCompleted, false},
		{OrderStatusDispatched, OrderStatusCompleted, true},
		{OrderStatusDispatched, OrderStatusCancelled, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// Order construction
// ============================================

func TestNewOrder(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates pending order with items", func(t *testing.T) {
		order, err := NewOrder(tenantID, "ORD-2024-00001", "Ayesha", []OrderLine{
			NewOrderLine("p1", "red", "Silk Dress", dec("2"), dec("500")),
		}, dec("100"))
		require.NoError(t, err)

		assert.Equal(t, tenantID, order.TenantID)
		assert.Equal(t, OrderStatusPending, order.Status)
		assert.Equal(t, 1, order.Version)
		require.Len(t, order.Items, 1)
		assert.Equal(t, order.ID, order.Items[0].OrderID)
		assert.Equal(t, "p1_red", order.Lines()[0].LineKey())
		assert.Nil(t, order.PaymentAmount)
	})

	t.Run("fails without number", func(t *testing.T) {
		_, err := NewOrder(tenantID, "", "Ayesha", []OrderLine{line("p1", "1", "1")}, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("fails without customer", func(t *testing.T) {
		_, err := NewOrder(tenantID, "ORD-1", "", []OrderLine{line("p1", "1", "1")}, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("fails without lines", func(t *testing.T) {
		_, err := NewOrder(tenantID, "ORD-1", "Ayesha", nil, decimal.Zero)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ITEMS", domainErr.Code)
	})

	t.Run("fails with negative shipping", func(t *testing.T) {
		_, err := NewOrder(tenantID, "ORD-1", "Ayesha", []OrderLine{line("p1", "1", "1")}, dec("-1"))
		assert.Error(t, err)
	})

	t.Run("fails with missing price", func(t *testing.T) {
		_, err := NewOrder(tenantID, "ORD-1", "Ayesha", []OrderLine{{ProductID: "p1", Quantity: decPtr("1")}}, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("fails with zero quantity", func(t *testing.T) {
		_, err := NewOrder(tenantID, "ORD-1", "Ayesha", []OrderLine{line("p1", "0", "1")}, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("fails with fractional quantity", func(t *testing.T) {
		_, err := NewOrder(tenantID, "ORD-1", "Ayesha", []OrderLine{line("p1", "2.5", "1")}, decimal.Zero)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	})

	t.Run("fails with duplicate line", func(t *testing.T) {
		_, err := NewOrder(tenantID, "ORD-1", "Ayesha", []OrderLine{line("p1", "1", "1"), line("p1", "2", "1")}, decimal.Zero)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_ITEM", domainErr.Code)
	})
}

func TestNewLegacyOrder(t *testing.T) {
	quantities := AmountMap{"p1": dec("2")}
	order, err := NewLegacyOrder(uuid.New(), "ORD-2024-00009", "Legacy",
		[]OrderLine{{ProductID: "p1"}}, quantities, AmountMap{"p1": dec("10")}, decimal.Zero)
	require.NoError(t, err)

	assert.Empty(t, order.Items)
	assert.Len(t, order.Lines(), 1)

	// Maps are copied
	quantities["p1"] = dec("99")
	assert.True(t, order.ProductQuantities["p1"].Equal(dec("2")))

	_, err = NewLegacyOrder(uuid.New(), "ORD-1", "Legacy", []OrderLine{{}}, nil, nil, decimal.Zero)
	assert.Error(t, err)

	_, err = NewLegacyOrder(uuid.New(), "ORD-1", "Legacy",
		[]OrderLine{{ProductID: "p1"}}, AmountMap{"p1": dec("1.5")}, nil, decimal.Zero)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
}

func TestOrder_ResolvedLines(t *testing.T) {
	order, err := NewLegacyOrder(uuid.New(), "ORD-1", "Legacy",
		[]OrderLine{{ProductID: "p1", VariantID: "m"}, {ProductID: "p2"}},
		AmountMap{"p1_m": dec("3")}, AmountMap{"p1": dec("10"), "p2": dec("5")}, decimal.Zero)
	require.NoError(t, err)

	lines := order.ResolvedLines()
	require.Len(t, lines, 2)
	assertDecimal(t, "3", *lines[0].Quantity)
	assertDecimal(t, "10", *lines[0].UnitPrice)
	assertDecimal(t, "1", *lines[1].Quantity)
	assertDecimal(t, "5", *lines[1].UnitPrice)

	// Source lines are untouched
	assert.Nil(t, order.SelectedProducts[0].Quantity)
}

func TestOrder_PurchasedQuantities(t *testing.T) {
	order := createTestOrder(t, "0", line("A", "1", "300"), line("B", "3", "200"))
	purchased := order.PurchasedQuantities()
	assertDecimal(t, "1", purchased["A"])
	assertDecimal(t, "3", purchased["B"])
}

// ============================================
// Status transitions
// ============================================

func TestOrder_StatusTransitions(t *testing.T) {
	t.Run("happy path to completed", func(t *testing.T) {
		order := createTestOrder(t, "0", line("A", "1", "10"))
		require.NoError(t, order.Confirm())
		assert.NotNil(t, order.ConfirmedAt)
		assert.False(t, order.CanAcceptReturn())

		require.NoError(t, order.Dispatch())
		assert.NotNil(t, order.DispatchedAt)
		assert.True(t, order.CanAcceptReturn())

		require.NoError(t, order.Complete())
		assert.NotNil(t, order.CompletedAt)
		assert.True(t, order.CanAcceptReturn())
	})

	t.Run("cannot dispatch pending order", func(t *testing.T) {
		order := createTestOrder(t, "0", line("A", "1", "10"))
		err := order.Dispatch()
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("cancel requires reason", func(t *testing.T) {
		order := createTestOrder(t, "0", line("A", "1", "10"))
		assert.Error(t, order.Cancel(""))
		require.NoError(t, order.Cancel("customer changed mind"))
		assert.Equal(t, OrderStatusCancelled, order.Status)
		assert.Equal(t, "customer changed mind", order.CancelReason)
	})

	t.Run("cannot cancel dispatched order", func(t *testing.T) {
		order := dispatchedOrder(t, "0", line("A", "1", "10"))
		assert.ErrorIs(t, order.Cancel("late"), shared.ErrInvalidState)
	})

	t.Run("cannot add items after confirm", func(t *testing.T) {
		order := createTestOrder(t, "0", line("A", "1", "10"))
		require.NoError(t, order.Confirm())
		_, err := order.AddItem("B", "", "B", dec("1"), dec("1"))
		assert.Error(t, err)
	})
}

func TestOrder_UpdateShippingCharges(t *testing.T) {
	order := createTestOrder(t, "0", line("A", "1", "10"))
	require.NoError(t, order.UpdateShippingCharges(dec("150")))
	assertDecimal(t, "150", order.ShippingCharges)
	assert.Error(t, order.UpdateShippingCharges(dec("-1")))

	order = dispatchedOrder(t, "0", line("A", "1", "10"))
	assert.ErrorIs(t, order.UpdateShippingCharges(dec("1")), shared.ErrInvalidState)
}

// ============================================
// Payments
// ============================================

func TestOrder_RecordPayment(t *testing.T) {
	t.Run("accumulates payments", func(t *testing.T) {
		order := createTestOrder(t, "0", line("A", "2", "500"))
		require.NoError(t, order.RecordPayment(dec("400")))
		require.NoError(t, order.RecordPayment(dec("800")))

		require.NotNil(t, order.PaymentAmount)
		assertDecimal(t, "1200", *order.PaymentAmount)
		assert.NotNil(t, order.LastPaymentAt)

		status := ComputePaymentStatus(order)
		assertDecimal(t, "-200", status.Remaining)
		assert.True(t, status.IsFullyPaid)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		order := createTestOrder(t, "0", line("A", "2", "500"))
		assert.Error(t, order.RecordPayment(decimal.Zero))
		assert.Error(t, order.RecordPayment(dec("-5")))
		assert.Nil(t, order.PaymentAmount)
	})

	t.Run("rejects cancelled order", func(t *testing.T) {
		order := createTestOrder(t, "0", line("A", "2", "500"))
		require.NoError(t, order.Cancel("duplicate"))
		assert.ErrorIs(t, order.RecordPayment(dec("10")), shared.ErrInvalidState)
	})
}
