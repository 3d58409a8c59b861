package handler

import (
	"net/http"

	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	Catalog *service.CatalogService
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.Catalog.GetAllCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	category, err := h.Catalog.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.Catalog.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	softDelete(c, h.Catalog.DeleteCategory, "Category not found or already deleted")
}

func (h *CatalogHandler) RestoreCategory(c *gin.Context) {
	softDelete(c, h.Catalog.RestoreCategory, "Category not found or already active")
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.Catalog.GetAllProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	product, err := h.Catalog.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.Catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.Catalog.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	if !updated {
		respondNotFound(c, "Product not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	softDelete(c, h.Catalog.DeleteProduct, "Product not found or already deleted")
}

func (h *CatalogHandler) RestoreProduct(c *gin.Context) {
	softDelete(c, h.Catalog.RestoreProduct, "Product not found or already active")
}
