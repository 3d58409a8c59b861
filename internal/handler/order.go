package handler

import (
	"context"
	"net/http"
	"strconv"

	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	Orders *service.OrderService
}

func (h *OrderHandler) ListActive(c *gin.Context) {
	orders, err := h.Orders.GetActiveOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.Orders.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.OrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+strconv.FormatUint(uint64(order.ID), 10))
	c.JSON(http.StatusCreated, order)
}

// AddItems takes a bare JSON array of items.
func (h *OrderHandler) AddItems(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var items []dto.OrderItemRequest
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Items to add cannot be empty"})
		return
	}

	order, err := h.Orders.AddItemsToOrder(c.Request.Context(), id, items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.Orders.CancelOrder, "Order not found or already closed or cancelled")
}

func (h *OrderHandler) Reopen(c *gin.Context) {
	h.transition(c, h.Orders.ReopenOrder, "Order not found or not cancelled")
}

func (h *OrderHandler) Prepare(c *gin.Context) {
	h.transition(c, h.Orders.StartPreparing, "Order not found or not open")
}

func (h *OrderHandler) Pay(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applied, err := h.Orders.ProcessPayment(c.Request.Context(), id, req.Amount, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	if !applied {
		respondNotFound(c, "Order not found or already closed or cancelled")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) transition(c *gin.Context, op func(context.Context, uint) (bool, error), notFound string) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	applied, err := op(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !applied {
		respondNotFound(c, notFound)
		return
	}
	c.Status(http.StatusNoContent)
}
