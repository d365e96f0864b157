package notification

import (
	"github.com/techtech-dev-team/stranger-backoffice/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(service.New),
)
