package database

import (
	"errors"
	"fmt"
	"log/slog"

	"restaurant-orders/config"
	"restaurant-orders/internal/models"
	"restaurant-orders/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedAdmin creates the configured admin account when it does not exist.
func SeedAdmin(db *gorm.DB, defaults config.DefaultsConfig, log *slog.Logger) error {
	if defaults.AdminPassword == "" {
		log.Warn("ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var admin models.User
	err := db.Where("username = ?", defaults.AdminUsername).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin user: %w", err)
	}

	hashed, err := utils.HashPassword(defaults.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin = models.User{
		Username:     defaults.AdminUsername,
		FullName:     "Administrator",
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	log.Info("admin user seeded", slog.String("username", admin.Username))
	return nil
}

// SeedDemoData loads a small menu and fifteen empty tables (A1..A15) into
// an empty database.
func SeedDemoData(db *gorm.DB, log *slog.Logger) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		drinks := models.Category{Name: "Drinks"}
		food := models.Category{Name: "Food"}
		if err := tx.Create(&drinks).Error; err != nil {
			return err
		}
		if err := tx.Create(&food).Error; err != nil {
			return err
		}

		products := []models.Product{
			{Name: "Lemonade", Price: decimal.NewFromInt(10), StockQuantity: 45, CategoryID: drinks.ID},
			{Name: "Margherita", Price: decimal.NewFromInt(40), StockQuantity: 70, CategoryID: food.ID},
		}
		if err := tx.Create(&products).Error; err != nil {
			return err
		}

		tables := make([]models.Table, 0, 15)
		for i := 1; i <= 15; i++ {
			tables = append(tables, models.Table{
				TableNumber: fmt.Sprintf("A%d", i),
				Status:      models.TableEmpty,
			})
		}
		if err := tx.Create(&tables).Error; err != nil {
			return err
		}

		log.Info("demo data seeded", slog.Int("products", len(products)), slog.Int("tables", len(tables)))
		return nil
	})
}
