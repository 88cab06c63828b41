package models

import (
	"encoding/json"
	"time"

	"github.com/asanorder/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// lineRecord is the stored shape of an order line inside a JSON column
type lineRecord struct {
	ProductID string           `json:"productId"`
	VariantID string           `json:"variantId,omitempty"`
	Name      string           `json:"name,omitempty"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"price,omitempty"`
}

func encodeLines(lines []trade.OrderLine) datatypes.JSON {
	records := make([]lineRecord, 0, len(lines))
	for _, l := range lines {
		records = append(records, lineRecord{
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

// decodeLines never fails; rows with an unreadable list load with no lines
func decodeLines(raw datatypes.JSON) []trade.OrderLine {
	if len(raw) == 0 {
		return nil
	}
	var records []lineRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil
	}
	lines := make([]trade.OrderLine, 0, len(records))
	for _, r := range records {
		if r.ProductID == "" {
			continue
		}
		lines = append(lines, trade.OrderLine{
			ProductID: r.ProductID,
			VariantID: r.VariantID,
			Name:      r.Name,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
		})
	}
	return lines
}

func encodeAmounts(m trade.AmountMap) datatypes.JSON {
	return datatypes.JSON(m.JSON())
}

// OrderModel is the persistence model for the Order aggregate root
type OrderModel struct {
	TenantAggregateModel
	OrderNumber       string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_order_tenant_number,priority:2"`
	FormID            *uuid.UUID        `gorm:"type:uuid;index"`
	CustomerName      string            `gorm:"type:varchar(200);not null"`
	CustomerPhone     string            `gorm:"type:varchar(50)"`
	CustomerAddress   string            `gorm:"type:text"`
	SelectedProducts  datatypes.JSON    `gorm:"type:jsonb"`
	Items             []OrderItemModel  `gorm:"foreignKey:OrderID;references:ID"`
	ProductQuantities datatypes.JSON    `gorm:"type:jsonb"`
	ProductPrices     datatypes.JSON    `gorm:"type:jsonb"`
	ShippingCharges   decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	PaymentAmount     *decimal.Decimal  `gorm:"type:decimal(18,4)"`
	Status            trade.OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Remark            string            `gorm:"type:text"`
	ConfirmedAt       *time.Time
	DispatchedAt      *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:varchar(500)"`
	LastPaymentAt     *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *trade.Order {
	order := &trade.Order{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		OrderNumber:         m.OrderNumber,
		FormID:              m.FormID,
		CustomerName:        m.CustomerName,
		CustomerPhone:       m.CustomerPhone,
		CustomerAddress:     m.CustomerAddress,
		SelectedProducts:    decodeLines(m.SelectedProducts),
		ProductQuantities:   trade.ParseAmountMap(m.ProductQuantities),
		ProductPrices:       trade.ParseAmountMap(m.ProductPrices),
		ShippingCharges:     m.ShippingCharges,
		PaymentAmount:       m.PaymentAmount,
		Status:              m.Status,
		Remark:              m.Remark,
		ConfirmedAt:         m.ConfirmedAt,
		DispatchedAt:        m.DispatchedAt,
		CompletedAt:         m.CompletedAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		LastPaymentAt:       m.LastPaymentAt,
	}
	if len(m.Items) > 0 {
		order.Items = make([]trade.OrderItem, len(m.Items))
		for i := range m.Items {
			order.Items[i] = m.Items[i].ToDomain()
		}
	}
	return order
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.FormID = o.FormID
	m.CustomerName = o.CustomerName
	m.CustomerPhone = o.CustomerPhone
	m.CustomerAddress = o.CustomerAddress
	m.SelectedProducts = encodeLines(o.SelectedProducts)
	m.ProductQuantities = encodeAmounts(o.ProductQuantities)
	m.ProductPrices = encodeAmounts(o.ProductPrices)
	m.ShippingCharges = o.ShippingCharges
	m.PaymentAmount = o.PaymentAmount
	m.Status = o.Status
	m.Remark = o.Remark
	m.ConfirmedAt = o.ConfirmedAt
	m.DispatchedAt = o.DispatchedAt
	m.CompletedAt = o.CompletedAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.LastPaymentAt = o.LastPaymentAt

	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(o.Items[i], o.ID)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order item
type OrderItemModel struct {
	BaseModel
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   string          `gorm:"type:varchar(100);not null"`
	VariantID   string          `gorm:"type:varchar(100)"`
	ProductName string          `gorm:"type:varchar(200)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem
func (m *OrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		VariantID:   m.VariantID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// OrderItemModelFromDomain creates a persistence model for an item of the given order
func OrderItemModelFromDomain(item trade.OrderItem, orderID uuid.UUID) OrderItemModel {
	return OrderItemModel{
		BaseModel: BaseModel{
			ID:        item.ID,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		},
		OrderID:     orderID,
		ProductID:   item.ProductID,
		VariantID:   item.VariantID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
	}
}

// OrderReturnModel is the persistence model for the OrderReturn aggregate root
type OrderReturnModel struct {
	TenantAggregateModel
	ReturnNumber           string                       `gorm:"type:varchar(50);not null;uniqueIndex:idx_return_tenant_number,priority:2"`
	OrderID                uuid.UUID                    `gorm:"type:uuid;not null;index"`
	OrderNumber            string                       `gorm:"type:varchar(50);not null"`
	CustomerName           string                       `gorm:"type:varchar(200)"`
	ReturnType             trade.ReturnType             `gorm:"type:varchar(30);not null"`
	ShippingChargeHandling trade.ShippingChargeHandling `gorm:"type:varchar(30)"`
	SelectedLines          datatypes.JSON               `gorm:"type:jsonb"`
	AdvanceBalance         decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	ProductsValue          decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	ShippingCharges        decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	AdvanceUsed            decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	RefundAmount           decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	WrittenOffShortfall    decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	Status                 trade.ReturnStatus           `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Reason                 string                       `gorm:"type:varchar(500)"`
	ReturnDate             time.Time                    `gorm:"not null"`
	ApprovedAt             *time.Time
	ApprovedBy             *uuid.UUID `gorm:"type:uuid"`
	RejectedAt             *time.Time
	RejectedBy             *uuid.UUID `gorm:"type:uuid"`
	RejectionReason        string     `gorm:"type:varchar(500)"`
	RefundedAt             *time.Time
	RefundedBy             *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (OrderReturnModel) TableName() string {
	return "order_returns"
}

// ToDomain converts the persistence model to a domain OrderReturn
func (m *OrderReturnModel) ToDomain() *trade.OrderReturn {
	return &trade.OrderReturn{
		TenantAggregateRoot:    m.ToDomainTenantAggregateRoot(),
		ReturnNumber:           m.ReturnNumber,
		OrderID:                m.OrderID,
		OrderNumber:            m.OrderNumber,
		CustomerName:           m.CustomerName,
		ReturnType:             m.ReturnType,
		ShippingChargeHandling: m.ShippingChargeHandling,
		SelectedLines:          decodeLines(m.SelectedLines),
		AdvanceBalance:         m.AdvanceBalance,
		ProductsValue:          m.ProductsValue,
		ShippingCharges:        m.ShippingCharges,
		AdvanceUsed:            m.AdvanceUsed,
		RefundAmount:           m.RefundAmount,
		WrittenOffShortfall:    m.WrittenOffShortfall,
		Status:                 m.Status,
		Reason:                 m.Reason,
		ReturnDate:             m.ReturnDate,
		ApprovedAt:             m.ApprovedAt,
		ApprovedBy:             m.ApprovedBy,
		RejectedAt:             m.RejectedAt,
		RejectedBy:             m.RejectedBy,
		RejectionReason:        m.RejectionReason,
		RefundedAt:             m.RefundedAt,
		RefundedBy:             m.RefundedBy,
	}
}

// FromDomain populates the persistence model from a domain OrderReturn
func (m *OrderReturnModel) FromDomain(r *trade.OrderReturn) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.ReturnNumber = r.ReturnNumber
	m.OrderID = r.OrderID
	m.OrderNumber = r.OrderNumber
	m.CustomerName = r.CustomerName
	m.ReturnType = r.ReturnType
	m.ShippingChargeHandling = r.ShippingChargeHandling
	m.SelectedLines = encodeLines(r.SelectedLines)
	m.AdvanceBalance = r.AdvanceBalance
	m.ProductsValue = r.ProductsValue
	m.ShippingCharges = r.ShippingCharges
	m.AdvanceUsed = r.AdvanceUsed
	m.RefundAmount = r.RefundAmount
	m.WrittenOffShortfall = r.WrittenOffShortfall
	m.Status = r.Status
	m.Reason = r.Reason
	m.ReturnDate = r.ReturnDate
	m.ApprovedAt = r.ApprovedAt
	m.ApprovedBy = r.ApprovedBy
	m.RejectedAt = r.RejectedAt
	m.RejectedBy = r.RejectedBy
	m.RejectionReason = r.RejectionReason
	m.RefundedAt = r.RefundedAt
	m.RefundedBy = r.RefundedBy
}

// OrderReturnModelFromDomain creates a new persistence model from a domain OrderReturn
func OrderReturnModelFromDomain(r *trade.OrderReturn) *OrderReturnModel {
	m := &OrderReturnModel{}
	m.FromDomain(r)
	return m
}
