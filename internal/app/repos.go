package app

import (
	"gorm.io/gorm"

	"github.com/dentiqcloud/dentiq-backend/internal/logger"
	"github.com/dentiqcloud/dentiq-backend/internal/repos"
)

type Repos struct {
	User         repos.UserRepo
	ClinicMember repos.ClinicMemberRepo
	Patient      repos.PatientRepo
	CbctRecord   repos.CbctRecordRepo
	CbctImage    repos.CbctImageRepo
	AIOutput     repos.AIOutputRepo
	Diagnosis    repos.DiagnosisRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		ClinicMember: repos.NewClinicMemberRepo(db, log),
		Patient:      repos.NewPatientRepo(db, log),
		CbctRecord:   repos.NewCbctRecordRepo(db, log),
		CbctImage:    repos.NewCbctImageRepo(db, log),
		AIOutput:     repos.NewAIOutputRepo(db, log),
		Diagnosis:    repos.NewDiagnosisRepo(db, log),
	}
}
