package service

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"restaurant-orders/internal/models"
	"restaurant-orders/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixture struct {
	db     *gorm.DB
	p1, p2 models.Product
	tables []models.Table
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// newFileDB opens a SQLite file that several connections can write to
// concurrently.
func newFileDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "orders.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// newFixture seeds P1 (10.00, 45 in stock), P2 (40.00, 70 in stock) and
// three empty tables A1..A3.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	return seedFixture(t, newTestDB(t))
}

func seedFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	category := models.Category{Name: "Menu"}
	require.NoError(t, db.Create(&category).Error)

	f := &fixture{
		db: db,
		p1: models.Product{Name: "P1", Price: decimal.NewFromInt(10), StockQuantity: 45, CategoryID: category.ID},
		p2: models.Product{Name: "P2", Price: decimal.NewFromInt(40), StockQuantity: 70, CategoryID: category.ID},
	}
	require.NoError(t, db.Create(&f.p1).Error)
	require.NoError(t, db.Create(&f.p2).Error)

	for i := 1; i <= 3; i++ {
		table := models.Table{TableNumber: fmt.Sprintf("A%d", i), Status: models.TableEmpty}
		require.NoError(t, db.Create(&table).Error)
		f.tables = append(f.tables, table)
	}
	return f
}

func (f *fixture) stock(t *testing.T, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.First(&p, productID).Error)
	return p.StockQuantity
}

func (f *fixture) tableStatus(t *testing.T, tableID uint) models.TableStatus {
	t.Helper()
	var table models.Table
	require.NoError(t, f.db.First(&table, tableID).Error)
	return table.Status
}

func (f *fixture) orderStatus(t *testing.T, orderID uint) models.OrderStatus {
	t.Helper()
	var order models.Order
	require.NoError(t, f.db.First(&order, orderID).Error)
	return order.Status
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
