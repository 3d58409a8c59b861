package handler

import (
	"log/slog"
	"net/http"
	"time"

	"restaurant-orders/internal/middleware"
	"restaurant-orders/internal/models"
	"restaurant-orders/internal/service"
	"restaurant-orders/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Orders  *service.OrderService
	Catalog *service.CatalogService
	Tables  *service.TableService
	Users   *service.UserService
	Tokens  *utils.TokenIssuer
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(svc Services, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authed := middleware.AuthMiddleware(svc.Tokens)
	adminOnly := middleware.AuthMiddleware(svc.Tokens, models.RoleAdmin)

	authHandler := &AuthHandler{Users: svc.Users}
	authRoutes := r.Group("/api/v1/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/register", adminOnly, authHandler.Register)
	}

	userRoutes := r.Group("/api/v1/users")
	userRoutes.Use(adminOnly)
	{
		userRoutes.DELETE("/:id", authHandler.DeleteUser)
		userRoutes.POST("/:id/restore", authHandler.RestoreUser)
	}

	orderHandler := &OrderHandler{Orders: svc.Orders}
	orderRoutes := r.Group("/api/v1/orders")
	orderRoutes.Use(authed)
	{
		orderRoutes.GET("", orderHandler.ListActive)
		orderRoutes.POST("", orderHandler.Create)
		orderRoutes.GET("/:id", orderHandler.Get)
		orderRoutes.PUT("/:id/items", orderHandler.AddItems)
		orderRoutes.POST("/:id/cancel", orderHandler.Cancel)
		orderRoutes.POST("/:id/reopen", orderHandler.Reopen)
		orderRoutes.POST("/:id/prepare", middleware.AuthMiddleware(svc.Tokens, models.RoleAdmin, models.RoleKitchen, models.RoleWaiter), orderHandler.Prepare)
		orderRoutes.POST("/:id/pay", orderHandler.Pay)
	}

	tableHandler := &TableHandler{Tables: svc.Tables}
	r.GET("/api/v1/tables", authed, tableHandler.List)
	r.GET("/api/v1/tables/:id", authed, tableHandler.Get)
	r.PATCH("/api/v1/tables/:id/status", middleware.AuthMiddleware(svc.Tokens, models.RoleAdmin, models.RoleWaiter), tableHandler.UpdateStatus)

	tableRoutes := r.Group("/api/v1/tables")
	tableRoutes.Use(adminOnly)
	{
		tableRoutes.POST("", tableHandler.Create)
		tableRoutes.PUT("/:id", tableHandler.Update)
		tableRoutes.DELETE("/:id", tableHandler.Delete)
		tableRoutes.POST("/:id/restore", tableHandler.Restore)
	}

	catalogHandler := &CatalogHandler{Catalog: svc.Catalog}
	r.GET("/api/v1/products", authed, catalogHandler.ListProducts)
	r.GET("/api/v1/products/:id", authed, catalogHandler.GetProduct)
	r.GET("/api/v1/categories", authed, catalogHandler.ListCategories)
	r.GET("/api/v1/categories/:id", authed, catalogHandler.GetCategory)

	productRoutes := r.Group("/api/v1/products")
	productRoutes.Use(adminOnly)
	{
		productRoutes.POST("", catalogHandler.CreateProduct)
		productRoutes.PUT("/:id", catalogHandler.UpdateProduct)
		productRoutes.DELETE("/:id", catalogHandler.DeleteProduct)
		productRoutes.POST("/:id/restore", catalogHandler.RestoreProduct)
	}

	categoryRoutes := r.Group("/api/v1/categories")
	categoryRoutes.Use(adminOnly)
	{
		categoryRoutes.POST("", catalogHandler.CreateCategory)
		categoryRoutes.DELETE("/:id", catalogHandler.DeleteCategory)
		categoryRoutes.POST("/:id/restore", catalogHandler.RestoreCategory)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	return r
}
