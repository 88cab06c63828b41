package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/asanorder/backend/internal/domain/shared"
	"github.com/asanorder/backend/internal/domain/trade"
	"github.com/asanorder/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertByID turns an insert into an update when the primary key already exists
var upsertByID = clause.OnConflict{
	Columns:   []clause.Column{{Name: "id"}},
	UpdateAll: true,
}

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByIDForTenant finds an order by ID within a tenant
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an order by ID within a tenant with SELECT ... FOR UPDATE.
// Only meaningful inside a transaction.
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by order number for a tenant
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds orders for a tenant with filtering and pagination
func (r *GormOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	var rows []models.OrderModel
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	if err := query.Preload("Items").Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Save creates or updates an order together with its items
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Clauses(upsertByID).Create(model).Error; err != nil {
			return err
		}
		return r.syncItems(tx, model)
	})
}

// SaveWithLock updates an order only if its version is unchanged since it was read.
// On success the in-memory version is advanced.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	nextVersion := order.Version + 1
	updatedAt := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND tenant_id = ? AND version = ?", order.ID, order.TenantID, order.Version).
			Updates(map[string]any{
				"customer_name":      model.CustomerName,
				"customer_phone":     model.CustomerPhone,
				"customer_address":   model.CustomerAddress,
				"form_id":            model.FormID,
				"selected_products":  model.SelectedProducts,
				"product_quantities": model.ProductQuantities,
				"product_prices":     model.ProductPrices,
				"shipping_charges":   model.ShippingCharges,
				"payment_amount":     model.PaymentAmount,
				"status":             model.Status,
				"remark":             model.Remark,
				"confirmed_at":       model.ConfirmedAt,
				"dispatched_at":      model.DispatchedAt,
				"completed_at":       model.CompletedAt,
				"cancelled_at":       model.CancelledAt,
				"cancel_reason":      model.CancelReason,
				"last_payment_at":    model.LastPaymentAt,
				"version":            nextVersion,
				"updated_at":         updatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.lockFailure(tx, order.TenantID, order.ID)
		}
		return r.syncItems(tx, model)
	})
	if err != nil {
		return err
	}

	order.Version = nextVersion
	order.UpdatedAt = updatedAt
	return nil
}

// CountForTenant counts orders for a tenant with optional filters
func (r *GormOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyConditions(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateOrderNumber generates a unique order number for a tenant.
// Format: ORD-YYYY-NNNNN (e.g., ORD-2026-00001)
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextSequenceNumber(ctx, r.db, &models.OrderModel{}, "order_number", "ORD", tenantID)
}

// syncItems deletes items no longer on the order and upserts the rest
func (r *GormOrderRepository) syncItems(tx *gorm.DB, model *models.OrderModel) error {
	if len(model.Items) == 0 {
		return tx.Where("order_id = ?", model.ID).Delete(&models.OrderItemModel{}).Error
	}

	ids := make([]uuid.UUID, len(model.Items))
	for i := range model.Items {
		ids[i] = model.Items[i].ID
	}
	if err := tx.Where("order_id = ? AND id NOT IN ?", model.ID, ids).
		Delete(&models.OrderItemModel{}).Error; err != nil {
		return err
	}
	return tx.Clauses(upsertByID).Create(&model.Items).Error
}

// lockFailure distinguishes a missing order from a stale version
func (r *GormOrderRepository) lockFailure(tx *gorm.DB, tenantID, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.OrderModel{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	filter = filter.Normalize()
	query = r.applyConditions(query, filter)

	sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

func (r *GormOrderRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ? OR customer_phone ILIKE ?",
			pattern, pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if formID, ok := filter.Filters["form_id"]; ok {
		query = query.Where("form_id = ?", formID)
	}
	return query
}
