package repository

import (
	"restaurant-orders/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderRelation names an association to load alongside an order. Each
// operation declares the ones it needs; nothing is loaded lazily.
type OrderRelation string

const (
	WithTable    OrderRelation = "Table"
	WithItems    OrderRelation = "Items"
	WithProducts OrderRelation = "Items.Product"
	WithPayments OrderRelation = "Payments"
)

// DetailRelations is everything the order detail view renders.
var DetailRelations = []OrderRelation{WithTable, WithItems, WithProducts, WithPayments}

func preload(db *gorm.DB, rels []OrderRelation) *gorm.DB {
	for _, rel := range rels {
		switch rel {
		case WithItems, WithPayments:
			db = db.Preload(string(rel), func(db *gorm.DB) *gorm.DB { return db.Order("id") })
		default:
			db = db.Preload(string(rel))
		}
	}
	return db
}

func OrderByID(db *gorm.DB, id uint, rels ...OrderRelation) (*models.Order, error) {
	var order models.Order
	if err := preload(db, rels).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// LockOrder loads an order under a row lock. Related rows are read without
// locks.
func LockOrder(tx *gorm.DB, id uint, rels ...OrderRelation) (*models.Order, error) {
	var order models.Order
	if err := preload(forUpdate(tx), rels).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func ActiveOrders(db *gorm.DB, rels ...OrderRelation) ([]models.Order, error) {
	var orders []models.Order
	err := preload(db, rels).
		Where("status NOT IN ?", []models.OrderStatus{models.OrderClosed, models.OrderCancelled}).
		Order("order_date, id").
		Find(&orders).Error
	return orders, err
}

// TransitionOrder moves an order to status `to` if it is currently in one
// of `from`. It reports false when the row was not in an expected status.
func TransitionOrder(tx *gorm.DB, id uint, to models.OrderStatus, from ...models.OrderStatus) (bool, error) {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func SetOrderTotal(tx *gorm.DB, orderID uint, total decimal.Decimal) error {
	return tx.Model(&models.Order{}).Where("id = ?", orderID).Update("total_amount", total).Error
}

func notTerminal(db *gorm.DB) *gorm.DB {
	return db.Where("orders.status NOT IN ?", []models.OrderStatus{models.OrderClosed, models.OrderCancelled})
}

// ActiveOrderIDsByTable lists the non-terminal orders placed at tableID.
func ActiveOrderIDsByTable(db *gorm.DB, tableID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.Order{}).Scopes(notTerminal).
		Where("orders.table_id = ?", tableID).
		Pluck("orders.id", &ids).Error
	return ids, err
}

// ActiveOrderIDsByProduct lists the non-terminal orders holding at least one
// item of productID.
func ActiveOrderIDsByProduct(db *gorm.DB, productID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.Order{}).Scopes(notTerminal).
		Distinct("orders.id").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.product_id = ?", productID).
		Pluck("orders.id", &ids).Error
	return ids, err
}
