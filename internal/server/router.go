package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
  "github.com/dentiqcloud/dentiq-backend/internal/handlers"
  "github.com/dentiqcloud/dentiq-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler      *handlers.AuthHandler
  RecordHandler    *handlers.RecordHandler
  DiagnosisHandler *handlers.DiagnosisHandler
  AnalysisHandler  *handlers.AnalysisHandler
  AIOutputHandler  *handlers.AIOutputHandler
  ClinicHandler    *handlers.ClinicHandler

  AuthMiddleware         *middleware.AuthMiddleware
  ServiceTokenMiddleware *middleware.ServiceTokenMiddleware
  ScopeGuard             *middleware.ScopeGuard
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()
  router.Use(otelgin.Middleware("dentiq-backend"))

  router.Use(cors.New(cors.Config{
    AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Clinic-ID", "X-Requested-With"},
    AllowCredentials: true,
  }))

  patientGuard := cfg.ScopeGuard.Require(middleware.GuardSpec{
    Kind:   middleware.ScopePatient,
    Source: middleware.SourceParam,
    Field:  "patientId",
  })
  recordGuard := cfg.ScopeGuard.Require(middleware.GuardSpec{
    Kind:   middleware.ScopeRecord,
    Source: middleware.SourceParam,
    Field:  "recordId",
  })
  imageGuard := cfg.ScopeGuard.Require(middleware.GuardSpec{
    Kind:   middleware.ScopeImage,
    Source: middleware.SourceParam,
    Field:  "imageId",
  })
  clinicGuard := cfg.ScopeGuard.Require(middleware.GuardSpec{
    Kind:   middleware.ScopeClinic,
    Source: middleware.SourceHeader,
    Field:  "X-Clinic-ID",
  })

  // Public
  router.GET("/healthcheck", handlers.HealthCheck)
  router.POST("/api/auth/login", cfg.AuthHandler.Login)

  // Service callback (service-scoped token, not user sessions)
  callback := router.Group("/cbct")
  callback.Use(cfg.ServiceTokenMiddleware.RequireServiceToken())
  callback.PUT("/ai-outputs/:id/complete", cfg.AIOutputHandler.CompleteOutput)

  // Protected
  api := router.Group("/api")
  api.Use(cfg.AuthMiddleware.RequireAuth())

  // Records
  api.POST("/patients/:patientId/cbct-records", patientGuard, middleware.PreGenerateID(), cfg.RecordHandler.CreateRecord)
  api.GET("/patients/:patientId/cbct-records", patientGuard, cfg.RecordHandler.ListRecords)
  api.GET("/cbct-records/:recordId", recordGuard, cfg.RecordHandler.GetRecord)
  api.DELETE("/cbct-images/:imageId", imageGuard, cfg.RecordHandler.DeleteImage)

  // Diagnoses + analysis feed
  api.POST("/patients/:patientId/diagnoses", patientGuard, cfg.DiagnosisHandler.CreateDiagnosis)
  api.GET("/patients/:patientId/diagnoses", patientGuard, cfg.DiagnosisHandler.ListDiagnoses)
  api.GET("/patients/:patientId/analysis", patientGuard, cfg.AnalysisHandler.ListAnalysis)

  // Clinic membership administration
  api.POST("/clinic/members", clinicGuard, cfg.ClinicHandler.AddMember)
  api.DELETE("/clinic/members/:userId", clinicGuard, cfg.ClinicHandler.RemoveMember)

  return router
}
