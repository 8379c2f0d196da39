package analytics

import (
	"sales_dashboard/internal/session"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"analytics",
		fx.Provide(
			func(store *session.Store) TokenSource { return store },
			NewClient,
		),
	)
}
