package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"restaurant-orders/internal/cache"
	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/models"
	"restaurant-orders/internal/repository"
	"restaurant-orders/pkg/database"

	"gorm.io/gorm"
)

type TableService struct {
	db    *gorm.DB
	cache cache.OrderCache
	log   *slog.Logger
}

// NewTableService builds the service. orderCache may be nil; when set, the
// cached details of a table's open orders are dropped whenever the table
// is renamed, deleted or restored.
func NewTableService(db *gorm.DB, orderCache cache.OrderCache) *TableService {
	return &TableService{
		db:    db,
		cache: orderCache,
		log:   slog.Default().With(slog.String("component", "table_service")),
	}
}

func (s *TableService) GetAllTables(ctx context.Context) ([]dto.TableDetail, error) {
	db := s.db.WithContext(ctx)
	tables, err := repository.ListTables(db, false)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(tables))
	for _, t := range tables {
		ids = append(ids, t.ID)
	}
	current, err := repository.CurrentOrderIDs(db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.TableDetail, 0, len(tables))
	for _, t := range tables {
		out = append(out, toTableDetail(t, current))
	}
	return out, nil
}

func (s *TableService) GetTableByID(ctx context.Context, id uint) (*dto.TableDetail, error) {
	db := s.db.WithContext(ctx)
	table, err := repository.TableByID(db, id, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrTableNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	current, err := repository.CurrentOrderIDs(db, []uint{id})
	if err != nil {
		return nil, err
	}
	detail := toTableDetail(*table, current)
	return &detail, nil
}

func (s *TableService) CreateTable(ctx context.Context, req dto.TableRequest) (*dto.TableDetail, error) {
	number, status, err := normalizeTable(req)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	taken, err := repository.TableNumberTaken(db, number, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", ErrTableNumberTaken, number)
	}

	table := models.Table{TableNumber: number, Status: status}
	if err := db.Create(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrTableNumberTaken, number)
		}
		return nil, fmt.Errorf("insert table: %w", err)
	}

	return s.GetTableByID(ctx, table.ID)
}

// UpdateTable changes number and status. It returns false when the table
// does not exist.
func (s *TableService) UpdateTable(ctx context.Context, id uint, req dto.TableRequest) (bool, error) {
	number, status, err := normalizeTable(req)
	if err != nil {
		return false, err
	}

	db := s.db.WithContext(ctx)
	table, err := repository.TableByID(db, id, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	taken, err := repository.TableNumberTaken(db, number, id)
	if err != nil {
		return false, err
	}
	if taken {
		return false, fmt.Errorf("%w: %s", ErrTableNumberTaken, number)
	}

	err = db.Model(table).Updates(map[string]interface{}{
		"table_number": number,
		"status":       status,
	}).Error
	if err != nil {
		return false, err
	}
	s.evictOrders(ctx, id)
	return true, nil
}

func (s *TableService) UpdateTableStatus(ctx context.Context, id uint, status models.TableStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: unknown table status %q", ErrInvalidInput, status)
	}

	res := s.db.WithContext(ctx).Model(&models.Table{}).
		Scopes(database.ActiveOnly(false)).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected == 1, res.Error
}

func (s *TableService) DeleteTable(ctx context.Context, id uint) (bool, error) {
	db := s.db.WithContext(ctx)
	table, err := repository.TableByID(db, id, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !table.IsActive {
		return false, fmt.Errorf("%w: table %d was deleted at %s", ErrAlreadyDeleted, id, table.UpdatedAt.Format("2006-01-02 15:04"))
	}

	if err := database.SoftDelete(db, table); err != nil {
		return false, err
	}
	s.evictOrders(ctx, id)
	return true, nil
}

func (s *TableService) RestoreTable(ctx context.Context, id uint) (bool, error) {
	db := s.db.WithContext(ctx)
	table, err := repository.TableByID(db, id, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if table.IsActive {
		return false, fmt.Errorf("%w: table %d", ErrAlreadyActive, id)
	}

	if err := database.Restore(db, table); err != nil {
		return false, err
	}
	s.evictOrders(ctx, id)
	return true, nil
}

func (s *TableService) evictOrders(ctx context.Context, tableID uint) {
	if s.cache == nil {
		return
	}
	ids, err := repository.ActiveOrderIDsByTable(s.db.WithContext(ctx), tableID)
	if err == nil {
		err = cache.Evict(ctx, s.cache, ids)
	}
	if err != nil {
		s.log.WarnContext(ctx, "order cache eviction failed", slog.Uint64("table_id", uint64(tableID)), slog.String("error", err.Error()))
	}
}

func normalizeTable(req dto.TableRequest) (string, models.TableStatus, error) {
	number := strings.TrimSpace(req.TableNumber)
	if number == "" || len(number) > 10 {
		return "", "", fmt.Errorf("%w: table number must be 1 to 10 characters", ErrInvalidInput)
	}

	status := req.Status
	if status == "" {
		status = models.TableEmpty
	}
	if !status.Valid() {
		return "", "", fmt.Errorf("%w: unknown table status %q", ErrInvalidInput, status)
	}
	return number, status, nil
}

func toTableDetail(t models.Table, current map[uint]uint) dto.TableDetail {
	detail := dto.TableDetail{
		ID:          t.ID,
		TableNumber: t.TableNumber,
		Status:      t.Status,
	}
	if orderID, ok := current[t.ID]; ok {
		detail.CurrentOrderID = &orderID
	}
	return detail
}
