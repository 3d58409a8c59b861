package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderOpen      OrderStatus = "Open"
	OrderPreparing OrderStatus = "Preparing"
	OrderClosed    OrderStatus = "Closed"
	OrderCancelled OrderStatus = "Cancelled"
)

// Terminal reports whether no lifecycle operation other than reopen can
// act on an order in this status.
func (s OrderStatus) Terminal() bool {
	return s == OrderClosed || s == OrderCancelled
}

type PaymentMethod string

const (
	PaymentNone       PaymentMethod = "None"
	PaymentCash       PaymentMethod = "Cash"
	PaymentCreditCard PaymentMethod = "CreditCard"
	PaymentOnline     PaymentMethod = "Online"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentNone, PaymentCash, PaymentCreditCard, PaymentOnline:
		return true
	}
	return false
}

type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderNumber string          `gorm:"size:50;uniqueIndex;not null" json:"order_number"`
	OrderDate   time.Time       `gorm:"not null" json:"order_date"`
	Status      OrderStatus     `gorm:"size:20;not null;index" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	TableID     uint            `gorm:"index;not null" json:"table_id"`
	Table       *Table          `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Payments    []Payment       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payments"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"order_id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"` // price captured when the item was ordered
}

// LineTotal is the frozen unit price times the quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Payment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"order_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method      PaymentMethod   `gorm:"size:20;not null" json:"payment_method"`
	PaymentDate time.Time       `gorm:"not null" json:"payment_date"`
}
