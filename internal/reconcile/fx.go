package reconcile

import (
	"github.com/techtech-dev-team/stranger-backoffice/internal/reconcile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reconcile.matcher",
	fx.Provide(service.New),
)
