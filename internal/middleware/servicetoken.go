package middleware

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/dentiqcloud/dentiq-backend/internal/apierr"
  "github.com/dentiqcloud/dentiq-backend/internal/handlers"
  "github.com/dentiqcloud/dentiq-backend/internal/logger"
  "github.com/dentiqcloud/dentiq-backend/internal/requestdata"
  "github.com/dentiqcloud/dentiq-backend/internal/services"
)

// ServiceTokenMiddleware authenticates the inference service's callback with
// its capability-scoped credential. End-user session tokens do not pass here.
type ServiceTokenMiddleware struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewServiceTokenMiddleware(log *logger.Logger, authService services.AuthService) *ServiceTokenMiddleware {
  middlewareLog := log.With("middleware", "ServiceTokenMiddleware")
  return &ServiceTokenMiddleware{log: middlewareLog, authService: authService}
}

func (sm *ServiceTokenMiddleware) RequireServiceToken() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractBearerToken(c)
    if tokenString == "" {
      handlers.RespondAbort(c, http.StatusUnauthorized, apierr.CodeUnauthenticated, "missing service token")
      return
    }
    serviceName, err := sm.authService.VerifyServiceToken(tokenString)
    if err != nil {
      handlers.RespondAbort(c, http.StatusUnauthorized, apierr.CodeUnauthenticated, err.Error())
      return
    }

    ctx := c.Request.Context()
    rd := requestdata.GetRequestData(ctx)
    if rd == nil {
      rd = &requestdata.RequestData{}
      ctx = requestdata.WithRequestData(ctx, rd)
      c.Request = c.Request.WithContext(ctx)
    }
    rd.ServiceName = serviceName
    c.Next()
  }
}
