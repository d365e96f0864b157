package auth

import (
	"github.com/techtech-dev-team/stranger-backoffice/internal/auth/repository"
	"github.com/techtech-dev-team/stranger-backoffice/internal/auth/service"
	"github.com/techtech-dev-team/stranger-backoffice/internal/auth/token"
	"github.com/techtech-dev-team/stranger-backoffice/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(provideIssuer),
	fx.Provide(service.New),
)

func provideIssuer(cfg config.Config) *token.Issuer {
	return token.NewIssuer(cfg.AuthJWTSecret, cfg.AuthTokenTTL)
}
