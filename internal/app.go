package internal

import (
	"context"

	"sales_dashboard/internal/alerts"
	"sales_dashboard/internal/analytics"
	"sales_dashboard/internal/auth"
	"sales_dashboard/internal/cli"
	"sales_dashboard/internal/config"
	"sales_dashboard/internal/dashboard"
	"sales_dashboard/internal/llm"
	"sales_dashboard/internal/logging"
	"sales_dashboard/internal/session"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Run(args []string) error {
	var runner *cli.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		logging.Module(),
		session.Module(),
		analytics.Module(),
		dashboard.Module(),
		auth.Module(),
		alerts.Module(),
		llm.Module(),
		cli.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute(args)
}
