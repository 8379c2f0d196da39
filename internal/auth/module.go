package auth

import (
	"sales_dashboard/internal/session"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"auth",
		fx.Provide(
			func(store *session.Store) TokenStore { return store },
			NewService,
		),
	)
}
