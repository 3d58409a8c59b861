package repository

import (
	"restaurant-orders/internal/models"
	"restaurant-orders/pkg/database"

	"gorm.io/gorm"
)

func TableByID(db *gorm.DB, id uint, includeInactive bool) (*models.Table, error) {
	var table models.Table
	err := db.Scopes(database.ActiveOnly(includeInactive)).First(&table, id).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// LockTable loads a table, active or not, under a row lock. Callers decide
// what an inactive table means for them.
func LockTable(tx *gorm.DB, id uint) (*models.Table, error) {
	var table models.Table
	if err := forUpdate(tx).First(&table, id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func ListTables(db *gorm.DB, includeInactive bool) ([]models.Table, error) {
	var tables []models.Table
	err := db.Scopes(database.ActiveOnly(includeInactive)).Order("id").Find(&tables).Error
	return tables, err
}

func SetTableStatus(tx *gorm.DB, tableID uint, status models.TableStatus) error {
	return tx.Model(&models.Table{}).Where("id = ?", tableID).Update("status", status).Error
}

// TableNumberTaken checks every row, deleted ones included, because the
// unique index covers them too.
func TableNumberTaken(db *gorm.DB, number string, exceptID uint) (bool, error) {
	var count int64
	q := db.Model(&models.Table{}).Where("table_number = ?", number)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// CurrentOrderIDs maps table id to the id of its non-terminal order.
func CurrentOrderIDs(db *gorm.DB, tableIDs []uint) (map[uint]uint, error) {
	out := make(map[uint]uint, len(tableIDs))
	if len(tableIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		ID      uint
		TableID uint
	}
	err := db.Model(&models.Order{}).
		Select("id, table_id").
		Where("table_id IN ? AND status NOT IN ?", tableIDs, []models.OrderStatus{models.OrderClosed, models.OrderCancelled}).
		Order("id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		if _, ok := out[r.TableID]; !ok {
			out[r.TableID] = r.ID
		}
	}
	return out, nil
}
