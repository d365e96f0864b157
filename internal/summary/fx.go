package summary

import (
	"github.com/techtech-dev-team/stranger-backoffice/internal/summary/service"
	"go.uber.org/fx"
)

var Module = fx.Module("summary.service",
	fx.Provide(service.New),
)
