package alerts

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"alerts",
		fx.Provide(NewStream),
	)
}
