package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"restaurant-orders/internal/cache"
	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/events"
	"restaurant-orders/internal/models"
	"restaurant-orders/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MinItemQuantity = 1
	MaxItemQuantity = 100
)

// OrderService runs the order lifecycle. Every mutating call executes in a
// single transaction; order, table and stock changes commit together or
// not at all.
type OrderService struct {
	db          *gorm.DB
	publisher   events.Publisher
	cache       cache.OrderCache
	log         *slog.Logger
	orderPrefix string
	now         func() time.Time
}

// NewOrderService wires the engine. publisher and orderCache may be nil.
func NewOrderService(db *gorm.DB, publisher events.Publisher, orderCache cache.OrderCache, log *slog.Logger, orderPrefix string) *OrderService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if log == nil {
		log = slog.Default()
	}
	if orderPrefix == "" {
		orderPrefix = "ORD"
	}
	return &OrderService{
		db:          db,
		publisher:   publisher,
		cache:       orderCache,
		log:         log.With(slog.String("component", "order_service")),
		orderPrefix: orderPrefix,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GetActiveOrders returns every order that is neither closed nor cancelled.
func (s *OrderService) GetActiveOrders(ctx context.Context) ([]dto.OrderDetail, error) {
	orders, err := repository.ActiveOrders(s.db.WithContext(ctx), repository.DetailRelations...)
	if err != nil {
		return nil, fmt.Errorf("load active orders: %w", err)
	}

	out := make([]dto.OrderDetail, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderDetail(&orders[i]))
	}
	return out, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id uint) (*dto.OrderDetail, error) {
	if s.cache != nil {
		detail, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.WarnContext(ctx, "order cache read failed", slog.Uint64("order_id", uint64(id)), slog.String("error", err.Error()))
		} else if ok {
			return detail, nil
		}
	}

	detail, err := s.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	s.storeDetail(ctx, detail)
	return detail, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, req dto.OrderCreateRequest) (*dto.OrderDetail, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := repository.LockTable(tx, req.TableID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", ErrTableNotFound, req.TableID)
		}
		if err != nil {
			return err
		}
		if !table.IsActive {
			return fmt.Errorf("%w: id %d", ErrTableNotFound, req.TableID)
		}
		// Reserved tables are accepted; only an occupied table blocks a new order.
		if table.Status == models.TableOccupied {
			return fmt.Errorf("%w: %s", ErrTableOccupied, table.TableNumber)
		}

		items, total, err := reserveItems(tx, req.Items)
		if err != nil {
			return err
		}

		order = &models.Order{
			OrderNumber: s.nextOrderNumber(),
			OrderDate:   s.now(),
			Status:      models.OrderOpen,
			TotalAmount: total,
			TableID:     table.ID,
			Items:       items,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		return repository.SetTableStatus(tx, table.ID, models.TableOccupied)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "order created",
		slog.Uint64("order_id", uint64(order.ID)),
		slog.String("order_number", order.OrderNumber),
		slog.Uint64("table_id", uint64(order.TableID)),
		slog.String("total", order.TotalAmount.StringFixed(2)))

	return s.afterCommit(ctx, order.ID, nil, events.OrderCreated)
}

// AddItemsToOrder reserves stock for newItems and appends them to an active
// order, adding their value to the running total.
func (s *OrderService) AddItemsToOrder(ctx context.Context, orderID uint, newItems []dto.OrderItemRequest) (*dto.OrderDetail, error) {
	if err := validateItems(newItems); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := repository.LockOrder(tx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
		}
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return fmt.Errorf("%w: %s is %s", ErrOrderNotActive, order.OrderNumber, order.Status)
		}

		table, err := repository.LockTable(tx, order.TableID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if table == nil || table.Status != models.TableOccupied {
			status := "missing"
			if table != nil {
				status = string(table.Status)
			}
			return fmt.Errorf("%w: order %d table is %s", ErrTableNotOccupied, orderID, status)
		}

		items, added, err := reserveItems(tx, newItems)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}

		return repository.SetOrderTotal(tx, order.ID, order.TotalAmount.Add(added))
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "items added to order",
		slog.Uint64("order_id", uint64(orderID)), slog.Int("items", len(newItems)))

	return s.afterCommit(ctx, orderID, nil, events.OrderItemsAdded)
}

// CancelOrder releases the order's stock and table. It returns false when
// the order does not exist or is already closed or cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := repository.LockOrder(tx, orderID, repository.WithItems)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return nil
		}

		moved, err := repository.TransitionOrder(tx, order.ID, models.OrderCancelled, models.OrderOpen, models.OrderPreparing)
		if err != nil || !moved {
			return err
		}

		for _, item := range order.Items {
			if err := repository.IncrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restore stock for product %d: %w", item.ProductID, err)
			}
		}

		if err := repository.SetTableStatus(tx, order.TableID, models.TableEmpty); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil || !applied {
		return false, err
	}

	s.log.InfoContext(ctx, "order cancelled", slog.Uint64("order_id", uint64(orderID)))
	if _, err := s.afterCommit(ctx, orderID, nil, events.OrderCancelled); err != nil {
		return true, err
	}
	return true, nil
}

// ReopenOrder brings a cancelled order back to Open and reserves its stock
// again. Every item is checked before any stock moves; if one is short the
// order stays cancelled and ErrInsufficientStock is returned. It returns
// false when the order does not exist or is not cancelled.
func (s *OrderService) ReopenOrder(ctx context.Context, orderID uint) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := repository.LockOrder(tx, orderID, repository.WithItems)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if order.Status != models.OrderCancelled {
			return nil
		}

		needed := map[uint]int{}
		for _, item := range order.Items {
			needed[item.ProductID] += item.Quantity
		}
		productIDs := make([]uint, 0, len(needed))
		for id := range needed {
			productIDs = append(productIDs, id)
		}
		sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

		for _, id := range productIDs {
			product, err := repository.LockProduct(tx, id, true)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrProductNotFound, id)
			}
			if err != nil {
				return err
			}
			if product.StockQuantity < needed[id] {
				return fmt.Errorf("%w: %s has %d, order %s needs %d",
					ErrInsufficientStock, product.Name, product.StockQuantity, order.OrderNumber, needed[id])
			}
		}

		for _, id := range productIDs {
			if err := repository.DecrementStock(tx, id, needed[id]); err != nil {
				if errors.Is(err, repository.ErrStockConflict) {
					return fmt.Errorf("%w: product %d", ErrInsufficientStock, id)
				}
				return err
			}
		}

		moved, err := repository.TransitionOrder(tx, order.ID, models.OrderOpen, models.OrderCancelled)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("%w: order %d changed concurrently", ErrConflict, order.ID)
		}

		table, err := repository.LockTable(tx, order.TableID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// a reserved table, or one taken by another order, keeps its status
		if table != nil && table.Status == models.TableEmpty {
			if err := repository.SetTableStatus(tx, table.ID, models.TableOccupied); err != nil {
				return err
			}
		}

		applied = true
		return nil
	})
	if err != nil || !applied {
		return false, err
	}

	s.log.InfoContext(ctx, "order reopened", slog.Uint64("order_id", uint64(orderID)))
	if _, err := s.afterCommit(ctx, orderID, nil, events.OrderReopened); err != nil {
		return true, err
	}
	return true, nil
}

// StartPreparing moves an open order to Preparing. It returns false for any
// other status or a missing order.
func (s *OrderService) StartPreparing(ctx context.Context, orderID uint) (bool, error) {
	moved, err := repository.TransitionOrder(s.db.WithContext(ctx), orderID, models.OrderPreparing, models.OrderOpen)
	if err != nil || !moved {
		return false, err
	}

	if _, err := s.afterCommit(ctx, orderID, nil, events.OrderPreparing); err != nil {
		return true, err
	}
	return true, nil
}

// ProcessPayment records a payment and closes the order once the payments
// cover its total. It returns false when the order does not exist or is
// already closed or cancelled; nothing is recorded in that case.
func (s *OrderService) ProcessPayment(ctx context.Context, orderID uint, amount decimal.Decimal, method models.PaymentMethod) (bool, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return false, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if !method.Valid() {
		return false, fmt.Errorf("%w: unknown payment method %q", ErrInvalidPayment, method)
	}

	applied, closed := false, false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := repository.LockOrder(tx, orderID, repository.WithPayments)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return nil
		}

		payment := models.Payment{
			OrderID:     order.ID,
			Amount:      amount,
			Method:      method,
			PaymentDate: s.now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		applied = true

		paid := totalPaid(order.Payments).Add(amount)
		if paid.LessThan(order.TotalAmount) {
			return nil
		}

		moved, err := repository.TransitionOrder(tx, order.ID, models.OrderClosed, models.OrderOpen, models.OrderPreparing)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("%w: order %d changed concurrently", ErrConflict, order.ID)
		}
		closed = true
		return repository.SetTableStatus(tx, order.TableID, models.TableEmpty)
	})
	if err != nil || !applied {
		return false, err
	}

	s.log.InfoContext(ctx, "payment recorded",
		slog.Uint64("order_id", uint64(orderID)),
		slog.String("amount", amount.StringFixed(2)),
		slog.String("method", string(method)),
		slog.Bool("closed", closed))

	published := []events.Type{events.OrderPaymentRecorded}
	if closed {
		published = append(published, events.OrderClosed)
	}
	if _, err := s.afterCommit(ctx, orderID, &amount, published...); err != nil {
		return true, err
	}
	return true, nil
}

// reserveItems locks each product, checks stock, freezes the current price
// and takes the quantity out of stock. Items repeating a product see the
// stock left by the earlier ones.
func reserveItems(tx *gorm.DB, reqs []dto.OrderItemRequest) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(reqs))
	total := decimal.Zero

	for _, req := range reqs {
		product, err := repository.LockProduct(tx, req.ProductID, false)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, total, fmt.Errorf("%w: id %d", ErrProductNotFound, req.ProductID)
		}
		if err != nil {
			return nil, total, err
		}

		if product.StockQuantity < req.Quantity {
			return nil, total, fmt.Errorf("%w: %s has %d, requested %d",
				ErrInsufficientStock, product.Name, product.StockQuantity, req.Quantity)
		}
		if err := repository.DecrementStock(tx, product.ID, req.Quantity); err != nil {
			if errors.Is(err, repository.ErrStockConflict) {
				return nil, total, fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}
			return nil, total, err
		}

		item := models.OrderItem{
			ProductID: product.ID,
			Quantity:  req.Quantity,
			UnitPrice: product.Price,
		}
		items = append(items, item)
		total = total.Add(item.LineTotal())
	}

	return items, total, nil
}

func validateItems(items []dto.OrderItemRequest) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	for _, item := range items {
		if item.ProductID == 0 {
			return fmt.Errorf("%w: product id is required", ErrInvalidInput)
		}
		if item.Quantity < MinItemQuantity || item.Quantity > MaxItemQuantity {
			return fmt.Errorf("%w: got %d for product %d", ErrInvalidQuantity, item.Quantity, item.ProductID)
		}
	}
	return nil
}

func (s *OrderService) nextOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return fmt.Sprintf("%s-%s-%s", s.orderPrefix, s.now().Format("20060102"), suffix)
}

func (s *OrderService) loadDetail(ctx context.Context, id uint) (*dto.OrderDetail, error) {
	order, err := repository.OrderByID(s.db.WithContext(ctx), id, repository.DetailRelations...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", id, err)
	}

	detail := toOrderDetail(order)
	return &detail, nil
}

// afterCommit refreshes the cached detail and publishes the event. Broker
// and cache failures are logged only; the committed state is authoritative.
// It ignores cancellation of ctx so a committed change is never reported as
// failed because the caller went away.
func (s *OrderService) afterCommit(ctx context.Context, orderID uint, amount *decimal.Decimal, types ...events.Type) (*dto.OrderDetail, error) {
	ctx = context.WithoutCancel(ctx)
	detail, err := s.loadDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.storeDetail(ctx, detail)

	for _, eventType := range types {
		event := events.OrderEvent{
			Type:        eventType,
			OrderID:     detail.ID,
			OrderNumber: detail.OrderNumber,
			TableID:     detail.TableID,
			Status:      detail.Status,
			TotalAmount: detail.TotalAmount,
			OccurredAt:  s.now(),
		}
		if eventType == events.OrderPaymentRecorded {
			event.Amount = amount
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.ErrorContext(ctx, "publish order event failed",
				slog.String("event", string(eventType)),
				slog.Uint64("order_id", uint64(orderID)),
				slog.String("error", err.Error()))
		}
	}

	return detail, nil
}

// storeDetail caches details of open and preparing orders. Closed and
// cancelled orders are dropped from the cache instead.
func (s *OrderService) storeDetail(ctx context.Context, detail *dto.OrderDetail) {
	if s.cache == nil {
		return
	}

	if detail.Status.Terminal() {
		if err := s.cache.Delete(ctx, detail.ID); err != nil {
			s.log.WarnContext(ctx, "order cache delete failed", slog.Uint64("order_id", uint64(detail.ID)), slog.String("error", err.Error()))
		}
		return
	}
	if err := s.cache.Set(ctx, detail); err != nil {
		s.log.WarnContext(ctx, "order cache write failed", slog.Uint64("order_id", uint64(detail.ID)), slog.String("error", err.Error()))
		_ = s.cache.Delete(ctx, detail.ID)
	}
}
