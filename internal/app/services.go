package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dentiqcloud/dentiq-backend/internal/logger"
	"github.com/dentiqcloud/dentiq-backend/internal/membercache"
	"github.com/dentiqcloud/dentiq-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Bucket     services.BucketService
	Membership services.MembershipService
	Dispatch   services.AIDispatchClient
	Record     services.RecordService
	AIOutput   services.AIOutputService
	Diagnosis  services.DiagnosisService
	Analysis   services.AnalysisService
	Redispatch *services.RedispatchWorker

	memberCache membercache.Store
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	bucket, err := services.NewBucketService(log)
	if err != nil {
		return Services{}, fmt.Errorf("init bucket service: %w", err)
	}

	memberCache, err := resolveMembershipCache(log, cfg.MembershipCacheProvider, cfg.MembershipCacheTTL)
	if err != nil {
		return Services{}, err
	}

	dispatch, err := services.NewAIDispatchClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init ai dispatch client: %w", err)
	}

	auth := services.NewAuthService(log, reposet.User, cfg.JWTSecretKey, cfg.ServiceTokenSecret, cfg.AccessTokenTTL)
	membership := services.NewMembershipService(log, reposet.ClinicMember, memberCache)
	record := services.NewRecordService(db, log, reposet.CbctRecord, reposet.CbctImage, reposet.AIOutput, bucket, dispatch, cfg.AIModelID)
	aiOutput := services.NewAIOutputService(log, reposet.AIOutput, bucket, services.NewHTTPArtifactFetcher())
	diagnosis := services.NewDiagnosisService(log, reposet.Diagnosis)
	analysis := services.NewAnalysisService(log, reposet.Diagnosis, reposet.AIOutput)
	redispatch := services.NewRedispatchWorker(log, reposet.AIOutput, reposet.CbctImage, dispatch, cfg.RedispatchInterval, cfg.RedispatchMinAge, cfg.RedispatchBatch)

	return Services{
		Auth:        auth,
		Bucket:      bucket,
		Membership:  membership,
		Dispatch:    dispatch,
		Record:      record,
		AIOutput:    aiOutput,
		Diagnosis:   diagnosis,
		Analysis:    analysis,
		Redispatch:  redispatch,
		memberCache: memberCache,
	}, nil
}
