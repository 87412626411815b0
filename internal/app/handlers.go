package app

import (
	"github.com/dentiqcloud/dentiq-backend/internal/handlers"
	"github.com/dentiqcloud/dentiq-backend/internal/logger"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Record    *handlers.RecordHandler
	AIOutput  *handlers.AIOutputHandler
	Diagnosis *handlers.DiagnosisHandler
	Analysis  *handlers.AnalysisHandler
	Clinic    *handlers.ClinicHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:      handlers.NewAuthHandler(serviceset.Auth),
		Record:    handlers.NewRecordHandler(log, serviceset.Record),
		AIOutput:  handlers.NewAIOutputHandler(log, serviceset.AIOutput),
		Diagnosis: handlers.NewDiagnosisHandler(serviceset.Diagnosis),
		Analysis:  handlers.NewAnalysisHandler(serviceset.Analysis),
		Clinic:    handlers.NewClinicHandler(serviceset.Membership),
	}
}
