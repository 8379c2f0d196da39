package logging

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module decorates at the root of the graph; inside an fx.Module the
// decorated logger would only reach this package.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewSink),
		fx.Decorate(func(base *zap.Logger, sink *Sink) *zap.Logger {
			return sink.Attach(base)
		}),
		fx.Invoke(func(lc fx.Lifecycle, sink *Sink, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					_ = logger.Sync()
					return sink.Close()
				},
			})
		}),
	)
}
