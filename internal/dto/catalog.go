package dto

import (
	"restaurant-orders/internal/models"

	"github.com/shopspring/decimal"
)

type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type CategoryDetail struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ProductRequest struct {
	Name          string          `json:"name" binding:"required,max=150"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" binding:"min=0"`
	CategoryID    uint            `json:"category_id" binding:"required"`
}

type ProductDetail struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	CategoryID    uint            `json:"category_id"`
	CategoryName  string          `json:"category_name"`
}

type TableRequest struct {
	TableNumber string             `json:"table_number" binding:"required,max=10"`
	Status      models.TableStatus `json:"status"`
}

type TableStatusRequest struct {
	Status models.TableStatus `json:"status" binding:"required"`
}

type TableDetail struct {
	ID             uint               `json:"id"`
	TableNumber    string             `json:"table_number"`
	Status         models.TableStatus `json:"status"`
	CurrentOrderID *uint              `json:"current_order_id"`
}
