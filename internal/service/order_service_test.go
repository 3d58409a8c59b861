package service

import (
	"context"
	"testing"

	"restaurant-orders/internal/cache"
	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/events"
	"restaurant-orders/internal/events/eventstest"
	"restaurant-orders/internal/models"
	"restaurant-orders/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderService(f *fixture) (*OrderService, *eventstest.Recorder) {
	rec := &eventstest.Recorder{}
	return NewOrderService(f.db, rec, nil, discardLogger(), "ORD"), rec
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func items(pairs ...int) []dto.OrderItemRequest {
	out := make([]dto.OrderItemRequest, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, dto.OrderItemRequest{ProductID: uint(pairs[i]), Quantity: pairs[i+1]})
	}
	return out
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, rec := newOrderService(f)
	a1 := f.tables[0]

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{
		TableID: a1.ID,
		Items:   items(int(f.p1.ID), 2, int(f.p2.ID), 1),
	})
	require.NoError(t, err)
	assertDecimal(t, "60", order.TotalAmount)
	assert.Equal(t, models.OrderOpen, order.Status)
	assert.Equal(t, "A1", order.TableNumber)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{12}$`, order.OrderNumber)
	assert.Equal(t, 43, f.stock(t, f.p1.ID))
	assert.Equal(t, 69, f.stock(t, f.p2.ID))
	assert.Equal(t, models.TableOccupied, f.tableStatus(t, a1.ID))

	order, err = svc.AddItemsToOrder(ctx, order.ID, items(int(f.p1.ID), 3, int(f.p2.ID), 2))
	require.NoError(t, err)
	assertDecimal(t, "170", order.TotalAmount)
	assert.Len(t, order.Items, 4)
	assert.Equal(t, 40, f.stock(t, f.p1.ID))
	assert.Equal(t, 67, f.stock(t, f.p2.ID))

	ok, err := svc.ProcessPayment(ctx, order.ID, dec("170"), models.PaymentCash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.OrderClosed, f.orderStatus(t, order.ID))
	assert.Equal(t, models.TableEmpty, f.tableStatus(t, a1.ID))

	assert.Equal(t, []events.Type{
		events.OrderCreated,
		events.OrderItemsAdded,
		events.OrderPaymentRecorded,
		events.OrderClosed,
	}, rec.Types())
	require.NotNil(t, rec.Events()[2].Amount)
	assertDecimal(t, "170", *rec.Events()[2].Amount)
	assert.Equal(t, order.OrderNumber, rec.Events()[3].Key())
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, rec := newOrderService(f)

	_, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{
		TableID: f.tables[0].ID,
		Items:   items(int(f.p2.ID), 1, int(f.p1.ID), 46),
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.ErrorIs(t, err, ErrConflict)

	// the P2 reservation made before the failure is rolled back
	assert.Equal(t, 45, f.stock(t, f.p1.ID))
	assert.Equal(t, 70, f.stock(t, f.p2.ID))
	assert.Equal(t, models.TableEmpty, f.tableStatus(t, f.tables[0].ID))

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, rec.Events())
}

func TestCreateOrderRepeatedProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)

	_, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{
		TableID: f.tables[0].ID,
		Items:   items(int(f.p1.ID), 30, int(f.p1.ID), 20),
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 45, f.stock(t, f.p1.ID))

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{
		TableID: f.tables[0].ID,
		Items:   items(int(f.p1.ID), 20, int(f.p1.ID), 20),
	})
	require.NoError(t, err)
	assertDecimal(t, "400", order.TotalAmount)
	assert.Equal(t, 5, f.stock(t, f.p1.ID))
}

func TestCreateOrderValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)

	tests := []struct {
		name string
		req  dto.OrderCreateRequest
		want error
	}{
		{"no items", dto.OrderCreateRequest{TableID: f.tables[0].ID}, ErrEmptyItems},
		{"zero quantity", dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 0)}, ErrInvalidQuantity},
		{"quantity over limit", dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 101)}, ErrInvalidQuantity},
		{"unknown table", dto.OrderCreateRequest{TableID: 999, Items: items(int(f.p1.ID), 1)}, ErrTableNotFound},
		{"unknown product", dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(999, 1)}, ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 45, f.stock(t, f.p1.ID))
	assert.Equal(t, models.TableEmpty, f.tableStatus(t, f.tables[0].ID))
}

func TestCreateOrderTableStates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)
	a1, a2, a3 := f.tables[0], f.tables[1], f.tables[2]

	_, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: a1.ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: a1.ID, Items: items(int(f.p1.ID), 1)})
	require.ErrorIs(t, err, ErrTableOccupied)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 44, f.stock(t, f.p1.ID))

	require.NoError(t, f.db.Model(&a2).Update("status", models.TableReserved).Error)
	_, err = svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: a2.ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, f.tableStatus(t, a2.ID))

	require.NoError(t, database.SoftDelete(f.db, &a3))
	_, err = svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: a3.ID, Items: items(int(f.p1.ID), 1)})
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)

	require.NoError(t, database.SoftDelete(f.db, &f.p1))
	_, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 1)})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestOrderKeepsPriceAtOrderTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 2)})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&f.p1).Update("price", dec("12.50")).Error)

	order, err = svc.AddItemsToOrder(ctx, order.ID, items(int(f.p1.ID), 1))
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assertDecimal(t, "10", order.Items[0].UnitPrice)
	assertDecimal(t, "12.5", order.Items[1].UnitPrice)
	assertDecimal(t, "32.5", order.TotalAmount)
}

func TestAddItemsToOrderRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)

	_, err := svc.AddItemsToOrder(ctx, 999, items(int(f.p1.ID), 1))
	assert.ErrorIs(t, err, ErrOrderNotFound)

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)

	_, err = svc.AddItemsToOrder(ctx, order.ID, nil)
	assert.ErrorIs(t, err, ErrEmptyItems)

	_, err = svc.AddItemsToOrder(ctx, order.ID, items(int(f.p1.ID), 45))
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 44, f.stock(t, f.p1.ID))

	require.NoError(t, f.db.Model(&models.Table{}).Where("id = ?", f.tables[0].ID).Update("status", models.TableEmpty).Error)
	_, err = svc.AddItemsToOrder(ctx, order.ID, items(int(f.p1.ID), 1))
	assert.ErrorIs(t, err, ErrTableNotOccupied)
	require.NoError(t, f.db.Model(&models.Table{}).Where("id = ?", f.tables[0].ID).Update("status", models.TableOccupied).Error)

	ok, err := svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.AddItemsToOrder(ctx, order.ID, items(int(f.p1.ID), 1))
	assert.ErrorIs(t, err, ErrOrderNotActive)
	assert.Equal(t, 45, f.stock(t, f.p1.ID))
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, rec := newOrderService(f)

	ok, err := svc.CancelOrder(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{
		TableID: f.tables[0].ID,
		Items:   items(int(f.p1.ID), 2, int(f.p2.ID), 1),
	})
	require.NoError(t, err)

	ok, err = svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.OrderCancelled, f.orderStatus(t, order.ID))
	assert.Equal(t, 45, f.stock(t, f.p1.ID))
	assert.Equal(t, 70, f.stock(t, f.p2.ID))
	assert.Equal(t, models.TableEmpty, f.tableStatus(t, f.tables[0].ID))

	ok, err = svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 45, f.stock(t, f.p1.ID))

	assert.Equal(t, []events.Type{events.OrderCreated, events.OrderCancelled}, rec.Types())
}

func TestCancelClosedOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)
	ok, err := svc.ProcessPayment(ctx, order.ID, dec("10"), models.PaymentCreditCard)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.OrderClosed, f.orderStatus(t, order.ID))
	assert.Equal(t, 44, f.stock(t, f.p1.ID))
}

func TestReopenOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, rec := newOrderService(f)

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{
		TableID: f.tables[0].ID,
		Items:   items(int(f.p1.ID), 2, int(f.p2.ID), 1),
	})
	require.NoError(t, err)

	ok, err := svc.ReopenOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, ok, "open order cannot be reopened")

	ok, err = svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.ReopenOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.OrderOpen, f.orderStatus(t, order.ID))
	assert.Equal(t, 43, f.stock(t, f.p1.ID))
	assert.Equal(t, 69, f.stock(t, f.p2.ID))
	assert.Equal(t, models.TableOccupied, f.tableStatus(t, f.tables[0].ID))

	ok, err = svc.ReopenOrder(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []events.Type{events.OrderCreated, events.OrderCancelled, events.OrderReopened}, rec.Types())
}

func TestReopenOrderInsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)

	first, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{
		TableID: f.tables[0].ID,
		Items:   items(int(f.p2.ID), 5, int(f.p1.ID), 40),
	})
	require.NoError(t, err)
	ok, err := svc.CancelOrder(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[1].ID, Items: items(int(f.p1.ID), 10)})
	require.NoError(t, err)
	require.Equal(t, 35, f.stock(t, f.p1.ID))

	ok, err = svc.ReopenOrder(ctx, first.ID)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.False(t, ok)

	assert.Equal(t, models.OrderCancelled, f.orderStatus(t, first.ID))
	assert.Equal(t, 35, f.stock(t, f.p1.ID))
	assert.Equal(t, 70, f.stock(t, f.p2.ID))
	assert.Equal(t, models.TableEmpty, f.tableStatus(t, f.tables[0].ID))
}

func TestReopenOrderKeepsReservedTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)
	_, err = svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Table{}).Where("id = ?", f.tables[0].ID).Update("status", models.TableReserved).Error)

	ok, err := svc.ReopenOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.TableReserved, f.tableStatus(t, f.tables[0].ID))
}

func TestStartPreparing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)

	ok, err := svc.StartPreparing(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p2.ID), 1)})
	require.NoError(t, err)

	ok, err = svc.StartPreparing(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.OrderPreparing, f.orderStatus(t, order.ID))

	ok, err = svc.StartPreparing(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	active, err := svc.GetActiveOrders(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, models.OrderPreparing, active[0].Status)

	_, err = svc.AddItemsToOrder(ctx, order.ID, items(int(f.p1.ID), 1))
	require.NoError(t, err)

	ok, err = svc.ProcessPayment(ctx, order.ID, dec("50"), models.PaymentOnline)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.OrderClosed, f.orderStatus(t, order.ID))
}

func TestProcessPaymentPartial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, rec := newOrderService(f)

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{
		TableID: f.tables[0].ID,
		Items:   items(int(f.p1.ID), 2, int(f.p2.ID), 1),
	})
	require.NoError(t, err)

	ok, err := svc.ProcessPayment(ctx, order.ID, dec("20"), models.PaymentCash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.OrderOpen, f.orderStatus(t, order.ID))
	assert.Equal(t, models.TableOccupied, f.tableStatus(t, f.tables[0].ID))

	detail, err := svc.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assertDecimal(t, "20", detail.TotalPaid)
	assertDecimal(t, "40", detail.Remaining)

	ok, err = svc.ProcessPayment(ctx, order.ID, dec("45.50"), models.PaymentCreditCard)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.OrderClosed, f.orderStatus(t, order.ID))
	assert.Equal(t, models.TableEmpty, f.tableStatus(t, f.tables[0].ID))

	detail, err = svc.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Payments, 2)
	assertDecimal(t, "0", detail.Remaining)

	ok, err = svc.ProcessPayment(ctx, order.ID, dec("5"), models.PaymentCash)
	require.NoError(t, err)
	assert.False(t, ok)

	var payments int64
	require.NoError(t, f.db.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&payments).Error)
	assert.EqualValues(t, 2, payments)

	assert.Equal(t, []events.Type{
		events.OrderCreated,
		events.OrderPaymentRecorded,
		events.OrderPaymentRecorded,
		events.OrderClosed,
	}, rec.Types())
}

func TestProcessPaymentRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)

	_, err = svc.ProcessPayment(ctx, order.ID, decimal.Zero, models.PaymentCash)
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = svc.ProcessPayment(ctx, order.ID, dec("-5"), models.PaymentCash)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ProcessPayment(ctx, order.ID, dec("5"), models.PaymentMethod("Barter"))
	assert.ErrorIs(t, err, ErrInvalidPayment)

	ok, err := svc.ProcessPayment(ctx, 999, dec("5"), models.PaymentCash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	ok, err = svc.ProcessPayment(ctx, order.ID, dec("10"), models.PaymentCash)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.OrderCancelled, f.orderStatus(t, order.ID))
}

func TestGetActiveOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)

	open, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)
	cancelled, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[1].ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)
	closed, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[2].ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)

	_, err = svc.CancelOrder(ctx, cancelled.ID)
	require.NoError(t, err)
	_, err = svc.ProcessPayment(ctx, closed.ID, dec("10"), models.PaymentCash)
	require.NoError(t, err)

	active, err := svc.GetActiveOrders(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, open.ID, active[0].ID)
	assert.Equal(t, "A1", active[0].TableNumber)
	require.Len(t, active[0].Items, 1)
	assert.Equal(t, "P1", active[0].Items[0].ProductName)
}

func TestGetOrderByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc, _ := newOrderService(f)

	_, err := svc.GetOrderByID(ctx, 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)

	require.NoError(t, database.SoftDelete(f.db, &f.p1))
	require.NoError(t, database.SoftDelete(f.db, &f.tables[0]))

	detail, err := svc.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, deletedTableLabel, detail.TableNumber)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, deletedProductLabel, detail.Items[0].ProductName)
	assertDecimal(t, "10", detail.Items[0].LineTotal)
}

func TestOrderCacheRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	memory := cache.NewMemory(0)
	svc := NewOrderService(f.db, nil, memory, discardLogger(), "")

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-`, order.OrderNumber)

	cached, ok, err := memory.Get(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.OrderOpen, cached.Status)

	_, err = svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)

	detail, err := svc.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, detail.Status)
}

func TestOrderCacheFollowsTableAndProductChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	memory := cache.NewMemory(0)
	orders := NewOrderService(f.db, nil, memory, discardLogger(), "")
	tables := NewTableService(f.db, memory)
	catalog := NewCatalogService(f.db, memory)
	a1 := f.tables[0]

	order, err := orders.CreateOrder(ctx, dto.OrderCreateRequest{TableID: a1.ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)
	detail, err := orders.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "A1", detail.TableNumber)

	ok, err := tables.UpdateTable(ctx, a1.ID, dto.TableRequest{TableNumber: "Z9", Status: models.TableOccupied})
	require.NoError(t, err)
	require.True(t, ok)
	detail, err = orders.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Z9", detail.TableNumber)

	ok, err = tables.DeleteTable(ctx, a1.ID)
	require.NoError(t, err)
	require.True(t, ok)
	detail, err = orders.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, deletedTableLabel, detail.TableNumber)

	ok, err = tables.RestoreTable(ctx, a1.ID)
	require.NoError(t, err)
	require.True(t, ok)
	detail, err = orders.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Z9", detail.TableNumber)

	ok, err = catalog.UpdateProduct(ctx, f.p1.ID, dto.ProductRequest{Name: "Soup", Price: dec("12"), StockQuantity: 10, CategoryID: f.p1.CategoryID})
	require.NoError(t, err)
	require.True(t, ok)
	detail, err = orders.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Soup", detail.Items[0].ProductName)
	assertDecimal(t, "10", detail.Items[0].UnitPrice)

	ok, err = catalog.DeleteProduct(ctx, f.p1.ID)
	require.NoError(t, err)
	require.True(t, ok)
	detail, err = orders.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, deletedProductLabel, detail.Items[0].ProductName)

	ok, err = catalog.RestoreProduct(ctx, f.p1.ID)
	require.NoError(t, err)
	require.True(t, ok)
	detail, err = orders.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Soup", detail.Items[0].ProductName)
}

func TestOrderCacheSkipsFinishedOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	memory := cache.NewMemory(0)
	svc := NewOrderService(f.db, nil, memory, discardLogger(), "")

	order, err := svc.CreateOrder(ctx, dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, memory.Len())

	paid, err := svc.ProcessPayment(ctx, order.ID, dec("10"), models.PaymentCash)
	require.NoError(t, err)
	require.True(t, paid)
	assert.Zero(t, memory.Len())

	detail, err := svc.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderClosed, detail.Status)
	assert.Zero(t, memory.Len())
}

func TestAfterCommitIgnoresCancelledContext(t *testing.T) {
	f := newFixture(t)
	svc, rec := newOrderService(f)

	order, err := svc.CreateOrder(context.Background(), dto.OrderCreateRequest{TableID: f.tables[0].ID, Items: items(int(f.p1.ID), 1)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	detail, err := svc.afterCommit(ctx, order.ID, nil, events.OrderItemsAdded)
	require.NoError(t, err)
	assert.Equal(t, order.ID, detail.ID)
	assert.Equal(t, []events.Type{events.OrderCreated, events.OrderItemsAdded}, rec.Types())
}
