package app

import (
	"github.com/gin-gonic/gin"

	"github.com/dentiqcloud/dentiq-backend/internal/server"
)

func wireRouter(handlerset Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:      handlerset.Auth,
		RecordHandler:    handlerset.Record,
		DiagnosisHandler: handlerset.Diagnosis,
		AnalysisHandler:  handlerset.Analysis,
		AIOutputHandler:  handlerset.AIOutput,
		ClinicHandler:    handlerset.Clinic,

		AuthMiddleware:         mw.Auth,
		ServiceTokenMiddleware: mw.ServiceToken,
		ScopeGuard:             mw.Guard,
	})
}
