package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxSequenceProbes bounds the search for a free number when the latest one is already taken
const maxSequenceProbes = 100

// nextSequenceNumber returns the next PREFIX-YYYY-NNNNN number for a tenant.
// The counter restarts every calendar year. Numbers widen past five digits,
// so the latest one is found by length before lexical order.
func nextSequenceNumber(ctx context.Context, db *gorm.DB, model any, column, prefix string, tenantID uuid.UUID) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, time.Now().Year())

	var latest []string
	if err := db.WithContext(ctx).
		Model(model).
		Where("tenant_id = ? AND "+column+" LIKE ?", tenantID, yearPrefix+"%").
		Order("LENGTH("+column+") DESC").
		Order(column+" DESC").
		Limit(1).
		Pluck(column, &latest).Error; err != nil {
		return "", err
	}

	next := int64(1)
	if len(latest) > 0 {
		if n, err := strconv.ParseInt(strings.TrimPrefix(latest[0], yearPrefix), 10, 64); err == nil {
			next = n + 1
		}
	}

	for i := 0; i < maxSequenceProbes; i++ {
		candidate := fmt.Sprintf("%s%05d", yearPrefix, next)
		var count int64
		if err := db.WithContext(ctx).
			Model(model).
			Where("tenant_id = ? AND "+column+" = ?", tenantID, candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		next++
	}
	return "", fmt.Errorf("failed to generate unique %s number after %d attempts", prefix, maxSequenceProbes)
}
