package capture

import "go.uber.org/fx"

var Module = fx.Module("capture.service",
	fx.Provide(New),
)
