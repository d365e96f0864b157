package org

import (
	"github.com/techtech-dev-team/stranger-backoffice/internal/org/repository"
	"github.com/techtech-dev-team/stranger-backoffice/internal/org/service"
	"go.uber.org/fx"
)

var Module = fx.Module("org.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
