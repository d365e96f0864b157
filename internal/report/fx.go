package report

import (
	"github.com/techtech-dev-team/stranger-backoffice/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(service.New),
)
