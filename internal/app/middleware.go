package app

import (
	"github.com/dentiqcloud/dentiq-backend/internal/logger"
	"github.com/dentiqcloud/dentiq-backend/internal/middleware"
)

type Middleware struct {
	Auth         *middleware.AuthMiddleware
	ServiceToken *middleware.ServiceTokenMiddleware
	Guard        *middleware.ScopeGuard
}

func wireMiddleware(log *logger.Logger, serviceset Services, reposet Repos) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:         middleware.NewAuthMiddleware(log, serviceset.Auth),
		ServiceToken: middleware.NewServiceTokenMiddleware(log, serviceset.Auth),
		Guard: middleware.NewScopeGuard(
			log,
			serviceset.Membership,
			reposet.Patient,
			reposet.CbctRecord,
			reposet.CbctImage,
		),
	}
}
