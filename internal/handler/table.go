package handler

import (
	"context"
	"net/http"

	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/service"

	"github.com/gin-gonic/gin"
)

type TableHandler struct {
	Tables *service.TableService
}

func (h *TableHandler) List(c *gin.Context) {
	tables, err := h.Tables.GetAllTables(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *TableHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	table, err := h.Tables.GetTableByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *TableHandler) Create(c *gin.Context) {
	var req dto.TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, err := h.Tables.CreateTable(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *TableHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req dto.TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.Tables.UpdateTable(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	if !updated {
		respondNotFound(c, "Table not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TableHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req dto.TableStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.Tables.UpdateTableStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	if !updated {
		respondNotFound(c, "Table not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TableHandler) Delete(c *gin.Context) {
	softDelete(c, h.Tables.DeleteTable, "Table not found")
}

func (h *TableHandler) Restore(c *gin.Context) {
	softDelete(c, h.Tables.RestoreTable, "Table not found")
}

// softDelete runs a delete or restore operation keyed by :id. A false
// result means there was nothing to change.
func softDelete(c *gin.Context, op func(context.Context, uint) (bool, error), notFound string) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	changed, err := op(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !changed {
		respondNotFound(c, notFound)
		return
	}
	c.Status(http.StatusNoContent)
}
