package handlers

import (
  "fmt"
  "github.com/gin-gonic/gin"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/services"
)

type AuthHandler struct {
  authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
  return &AuthHandler{authService: authService}
}

type loginRequest struct {
  Email    string `json:"email" binding:"required,email"`
  Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
  var req loginRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation(fmt.Errorf("invalid login payload: %w", err)))
    return
  }
  token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"access_token": token})
}
