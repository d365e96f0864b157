package visit

import (
	"github.com/techtech-dev-team/stranger-backoffice/internal/visit/repository"
	"github.com/techtech-dev-team/stranger-backoffice/internal/visit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("visit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
