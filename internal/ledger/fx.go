package ledger

import (
	"github.com/techtech-dev-team/stranger-backoffice/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(service.NewService),
)
