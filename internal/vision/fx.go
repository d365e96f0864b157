package vision

import (
	"github.com/techtech-dev-team/stranger-backoffice/internal/vision/repository"
	"github.com/techtech-dev-team/stranger-backoffice/internal/vision/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vision.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
