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
)

// GormOrderReturnRepository implements trade.OrderReturnRepository using GORM
type GormOrderReturnRepository struct {
	db *gorm.DB
}

// NewGormOrderReturnRepository creates a new GormOrderReturnRepository
func NewGormOrderReturnRepository(db *gorm.DB) *GormOrderReturnRepository {
	return &GormOrderReturnRepository{db: db}
}

// FindByIDForTenant finds a return by ID within a tenant
func (r *GormOrderReturnRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.OrderReturn, error) {
	var model models.OrderReturnModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder returns every return raised against an order, oldest first
func (r *GormOrderReturnRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]trade.OrderReturn, error) {
	var rows []models.OrderReturnModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainReturns(rows), nil
}

// FindAllForTenant finds returns for a tenant with filtering and pagination
func (r *GormOrderReturnRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.OrderReturn, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.OrderReturnModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyConditions(query, filter)

	sortField := ValidateSortField(filter.OrderBy, OrderReturnSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize)

	var rows []models.OrderReturnModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainReturns(rows), nil
}

// Save creates or updates a return
func (r *GormOrderReturnRepository) Save(ctx context.Context, ret *trade.OrderReturn) error {
	return r.db.WithContext(ctx).Clauses(upsertByID).Create(models.OrderReturnModelFromDomain(ret)).Error
}

// SaveWithLock updates a return only if its version is unchanged since it was read
func (r *GormOrderReturnRepository) SaveWithLock(ctx context.Context, ret *trade.OrderReturn) error {
	model := models.OrderReturnModelFromDomain(ret)
	nextVersion := ret.Version + 1
	updatedAt := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderReturnModel{}).
			Where("id = ? AND tenant_id = ? AND version = ?", ret.ID, ret.TenantID, ret.Version).
			Updates(map[string]any{
				"status":           model.Status,
				"reason":           model.Reason,
				"approved_at":      model.ApprovedAt,
				"approved_by":      model.ApprovedBy,
				"rejected_at":      model.RejectedAt,
				"rejected_by":      model.RejectedBy,
				"rejection_reason": model.RejectionReason,
				"refunded_at":      model.RefundedAt,
				"refunded_by":      model.RefundedBy,
				"version":          nextVersion,
				"updated_at":       updatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&models.OrderReturnModel{}).
			Where("id = ? AND tenant_id = ?", ret.ID, ret.TenantID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	})
	if err != nil {
		return err
	}

	ret.Version = nextVersion
	ret.UpdatedAt = updatedAt
	return nil
}

// CountForTenant counts returns for a tenant with optional filters
func (r *GormOrderReturnRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.OrderReturnModel{}).Where("tenant_id = ?", tenantID)
	if err := r.applyConditions(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateReturnNumber generates a unique return number for a tenant.
// Format: RET-YYYY-NNNNN (e.g., RET-2026-00001)
func (r *GormOrderReturnRepository) GenerateReturnNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextSequenceNumber(ctx, r.db, &models.OrderReturnModel{}, "return_number", "RET", tenantID)
}

func (r *GormOrderReturnRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("return_number ILIKE ? OR order_number ILIKE ? OR customer_name ILIKE ?",
			pattern, pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if returnType, ok := filter.Filters["return_type"]; ok && returnType != "" {
		query = query.Where("return_type = ?", returnType)
	}
	if orderID, ok := filter.Filters["order_id"]; ok {
		query = query.Where("order_id = ?", orderID)
	}
	return query
}

func toDomainReturns(rows []models.OrderReturnModel) []trade.OrderReturn {
	returns := make([]trade.OrderReturn, len(rows))
	for i := range rows {
		returns[i] = *rows[i].ToDomain()
	}
	return returns
}
