package service

import (
	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/models"

	"github.com/shopspring/decimal"
)

const (
	deletedTableLabel   = "Deleted table"
	deletedProductLabel = "Deleted product"
)

func toOrderDetail(o *models.Order) dto.OrderDetail {
	detail := dto.OrderDetail{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		OrderDate:   o.OrderDate,
		TableID:     o.TableID,
		TableNumber: deletedTableLabel,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		Items:       make([]dto.OrderItemDetail, 0, len(o.Items)),
		Payments:    make([]dto.PaymentDetail, 0, len(o.Payments)),
	}
	if o.Table != nil && o.Table.IsActive {
		detail.TableNumber = o.Table.TableNumber
	}

	for _, item := range o.Items {
		name := deletedProductLabel
		if item.Product != nil && item.Product.IsActive {
			name = item.Product.Name
		}
		detail.Items = append(detail.Items, dto.OrderItemDetail{
			ProductID:   item.ProductID,
			ProductName: name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal(),
		})
	}

	for _, p := range o.Payments {
		detail.Payments = append(detail.Payments, dto.PaymentDetail{
			ID:          p.ID,
			Amount:      p.Amount,
			PaymentDate: p.PaymentDate,
			Method:      p.Method,
		})
	}

	detail.TotalPaid = totalPaid(o.Payments)
	detail.Remaining = decimal.Max(o.TotalAmount.Sub(detail.TotalPaid), decimal.Zero)
	return detail
}

func totalPaid(payments []models.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}
