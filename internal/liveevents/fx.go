package liveevents

import "go.uber.org/fx"

var Module = fx.Module("liveevents",
	fx.Provide(NewHub),
)
