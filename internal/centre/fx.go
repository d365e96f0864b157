package centre

import (
	"github.com/techtech-dev-team/stranger-backoffice/internal/centre/repository"
	"github.com/techtech-dev-team/stranger-backoffice/internal/centre/service"
	"go.uber.org/fx"
)

var Module = fx.Module("centre.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
