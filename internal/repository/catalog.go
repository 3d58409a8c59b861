package repository

import (
	"errors"

	"restaurant-orders/internal/models"
	"restaurant-orders/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockConflict is returned when a guarded stock decrement matches no
// row, either because the product vanished or because stock ran out.
var ErrStockConflict = errors.New("stock update conflict")

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func ProductByID(db *gorm.DB, id uint, includeInactive bool) (*models.Product, error) {
	var product models.Product
	err := db.Scopes(database.ActiveOnly(includeInactive)).
		Preload("Category").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// LockProduct loads a product and holds its row lock until the surrounding
// transaction ends.
func LockProduct(tx *gorm.DB, id uint, includeInactive bool) (*models.Product, error) {
	var product models.Product
	err := forUpdate(tx).Scopes(database.ActiveOnly(includeInactive)).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func ListProducts(db *gorm.DB, includeInactive bool) ([]models.Product, error) {
	var products []models.Product
	err := db.Scopes(database.ActiveOnly(includeInactive)).
		Preload("Category").
		Order("id").
		Find(&products).Error
	return products, err
}

// DecrementStock subtracts qty only if enough stock remains.
func DecrementStock(tx *gorm.DB, productID uint, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockConflict
	}
	return nil
}

func IncrementStock(tx *gorm.DB, productID uint, qty int) error {
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", qty)).Error
}

func CategoryByID(db *gorm.DB, id uint, includeInactive bool) (*models.Category, error) {
	var category models.Category
	err := db.Scopes(database.ActiveOnly(includeInactive)).First(&category, id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func ListCategories(db *gorm.DB, includeInactive bool) ([]models.Category, error) {
	var categories []models.Category
	err := db.Scopes(database.ActiveOnly(includeInactive)).Order("id").Find(&categories).Error
	return categories, err
}

// CategoryNameTaken compares names case-insensitively across active and
// inactive categories.
func CategoryNameTaken(db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.Model(&models.Category{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error
	return count > 0, err
}
