package database

import (
	"time"

	"restaurant-orders/internal/models"

	"gorm.io/gorm"
)

// ActiveOnly filters out soft-deleted rows unless includeInactive is set.
// Use it with Scopes on queries against soft-deletable tables.
func ActiveOnly(includeInactive bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if includeInactive {
			return db
		}
		return db.Where("is_active = ?", true)
	}
}

// SoftDelete flags entity as inactive instead of removing its row. entity
// must be a pointer to a loaded model.
func SoftDelete(db *gorm.DB, entity models.SoftDeletable) error {
	now := time.Now().UTC()
	entity.MarkInactive(now)
	return db.Model(entity).Updates(map[string]interface{}{
		"is_active":  false,
		"updated_at": now,
	}).Error
}

// Restore reverses SoftDelete.
func Restore(db *gorm.DB, entity models.SoftDeletable) error {
	now := time.Now().UTC()
	entity.MarkActive(now)
	return db.Model(entity).Updates(map[string]interface{}{
		"is_active":  true,
		"updated_at": now,
	}).Error
}
