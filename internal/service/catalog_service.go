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

// CatalogService manages categories and products. Product changes that
// alter how an order renders drop the affected cached order details.
type CatalogService struct {
	db    *gorm.DB
	cache cache.OrderCache
	log   *slog.Logger
}

func NewCatalogService(db *gorm.DB, orderCache cache.OrderCache) *CatalogService {
	return &CatalogService{
		db:    db,
		cache: orderCache,
		log:   slog.Default().With(slog.String("component", "catalog_service")),
	}
}

func (s *CatalogService) GetAllCategories(ctx context.Context) ([]dto.CategoryDetail, error) {
	categories, err := repository.ListCategories(s.db.WithContext(ctx), false)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryDetail, 0, len(categories))
	for _, c := range categories {
		out = append(out, dto.CategoryDetail{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

func (s *CatalogService) GetCategoryByID(ctx context.Context, id uint) (*dto.CategoryDetail, error) {
	category, err := repository.CategoryByID(s.db.WithContext(ctx), id, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrCategoryNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &dto.CategoryDetail{ID: category.ID, Name: category.Name}, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}

	db := s.db.WithContext(ctx)
	taken, err := repository.CategoryNameTaken(db, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", ErrCategoryExists, name)
	}

	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return &dto.CategoryDetail{ID: category.ID, Name: category.Name}, nil
}

// DeleteCategory returns false when the category is missing or already
// deleted.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) (bool, error) {
	db := s.db.WithContext(ctx)
	category, err := repository.CategoryByID(db, id, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil || !category.IsActive {
		return false, err
	}
	if err := database.SoftDelete(db, category); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CatalogService) RestoreCategory(ctx context.Context, id uint) (bool, error) {
	db := s.db.WithContext(ctx)
	category, err := repository.CategoryByID(db, id, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil || category.IsActive {
		return false, err
	}
	if err := database.Restore(db, category); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CatalogService) GetAllProducts(ctx context.Context) ([]dto.ProductDetail, error) {
	products, err := repository.ListProducts(s.db.WithContext(ctx), false)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductDetail, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDetail(p))
	}
	return out, nil
}

func (s *CatalogService) GetProductByID(ctx context.Context, id uint) (*dto.ProductDetail, error) {
	product, err := repository.ProductByID(s.db.WithContext(ctx), id, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	detail := toProductDetail(*product)
	return &detail, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req dto.ProductRequest) (*dto.ProductDetail, error) {
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	product := models.Product{
		Name:          strings.TrimSpace(req.Name),
		Price:         req.Price.Round(2),
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return s.GetProductByID(ctx, product.ID)
}

// UpdateProduct overwrites name, price, stock and category. Prices already
// captured on order items are unaffected.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req dto.ProductRequest) (bool, error) {
	db := s.db.WithContext(ctx)
	product, err := repository.ProductByID(db, id, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.validateProduct(ctx, req); err != nil {
		return false, err
	}

	err = db.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"name":           strings.TrimSpace(req.Name),
		"price":          req.Price.Round(2),
		"stock_quantity": req.StockQuantity,
		"category_id":    req.CategoryID,
	}).Error
	if err != nil {
		return false, err
	}
	s.evictOrders(ctx, product.ID)
	return true, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) (bool, error) {
	db := s.db.WithContext(ctx)
	product, err := repository.ProductByID(db, id, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil || !product.IsActive {
		return false, err
	}
	if err := database.SoftDelete(db, product); err != nil {
		return false, err
	}
	s.evictOrders(ctx, id)
	return true, nil
}

func (s *CatalogService) RestoreProduct(ctx context.Context, id uint) (bool, error) {
	db := s.db.WithContext(ctx)
	product, err := repository.ProductByID(db, id, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil || product.IsActive {
		return false, err
	}
	if err := database.Restore(db, product); err != nil {
		return false, err
	}
	s.evictOrders(ctx, id)
	return true, nil
}

func (s *CatalogService) validateProduct(ctx context.Context, req dto.ProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if !req.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if req.StockQuantity < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	if _, err := repository.CategoryByID(s.db.WithContext(ctx), req.CategoryID, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", ErrCategoryNotFound, req.CategoryID)
		}
		return err
	}
	return nil
}

func (s *CatalogService) evictOrders(ctx context.Context, productID uint) {
	if s.cache == nil {
		return
	}
	ids, err := repository.ActiveOrderIDsByProduct(s.db.WithContext(ctx), productID)
	if err == nil {
		err = cache.Evict(ctx, s.cache, ids)
	}
	if err != nil {
		s.log.WarnContext(ctx, "order cache eviction failed", slog.Uint64("product_id", uint64(productID)), slog.String("error", err.Error()))
	}
}

func toProductDetail(p models.Product) dto.ProductDetail {
	detail := dto.ProductDetail{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		CategoryID:    p.CategoryID,
	}
	if p.Category != nil {
		detail.CategoryName = p.Category.Name
	}
	return detail
}
