package dto

import (
	"time"

	"restaurant-orders/internal/models"

	"github.com/shopspring/decimal"
)

type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=100"`
}

type OrderCreateRequest struct {
	TableID uint               `json:"table_id" binding:"required"`
	Items   []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type PaymentRequest struct {
	Amount decimal.Decimal      `json:"amount"`
	Method models.PaymentMethod `json:"payment_method" binding:"required"`
}

type OrderItemDetail struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type PaymentDetail struct {
	ID          uint                 `json:"id"`
	Amount      decimal.Decimal      `json:"amount"`
	PaymentDate time.Time            `json:"payment_date"`
	Method      models.PaymentMethod `json:"payment_method"`
}

type OrderDetail struct {
	ID          uint               `json:"id"`
	OrderNumber string             `json:"order_number"`
	OrderDate   time.Time          `json:"order_date"`
	TableID     uint               `json:"table_id"`
	TableNumber string             `json:"table_number"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	TotalPaid   decimal.Decimal    `json:"total_paid"`
	Remaining   decimal.Decimal    `json:"remaining"`
	Items       []OrderItemDetail  `json:"items"`
	Payments    []PaymentDetail    `json:"payments"`
}
