package expense

import (
	"github.com/techtech-dev-team/stranger-backoffice/internal/expense/repository"
	"github.com/techtech-dev-team/stranger-backoffice/internal/expense/service"
	"go.uber.org/fx"
)

var Module = fx.Module("expense.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
