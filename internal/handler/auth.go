package handler

import (
	"net/http"

	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Users *service.UserService
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Users.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "User created",
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

func (h *AuthHandler) DeleteUser(c *gin.Context) {
	softDelete(c, h.Users.DeleteUser, "User not found")
}

func (h *AuthHandler) RestoreUser(c *gin.Context) {
	softDelete(c, h.Users.RestoreUser, "User not found")
}
