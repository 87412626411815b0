package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
)

// Envelope is the stable response shape for success/failure signaling:
// {success, message?, code?}.
type Envelope struct {
  Success bool   `json:"success"`
  Message string `json:"message,omitempty"`
  Code    string `json:"code,omitempty"`
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
  c.JSON(http.StatusCreated, payload)
}

func RespondSuccess(c *gin.Context, message string) {
  c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// RespondError maps a taxonomy error onto the envelope. Unclassified errors
// surface as 500/fatal.
func RespondError(c *gin.Context, err error) {
  apiErr := apierr.From(err)
  c.JSON(apiErr.Status, Envelope{
    Success: false,
    Message: apiErr.Error(),
    Code:    apiErr.Code,
  })
}

// RespondAbort is the middleware variant: it writes the envelope and stops
// the handler chain.
func RespondAbort(c *gin.Context, status int, code, message string) {
  c.AbortWithStatusJSON(status, Envelope{
    Success: false,
    Message: message,
    Code:    code,
  })
}
