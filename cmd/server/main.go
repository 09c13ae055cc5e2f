package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/damon-houk/currency-widget/internal/app"
	"github.com/damon-houk/currency-widget/internal/config"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "fxw-server",
		Usage: "serve the currency widget API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"FXW_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file applied before FXW_* overrides",
				Value: ".env",
			},
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		logger.GetDefaultLogger().Fatal("Server exited with error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), c.String("env-file"))
	if err != nil {
		return err
	}

	log := logger.NewJSONLogger(os.Stdout, logger.ParseLevel(cfg.Logging.Level))
	logger.SetDefaultLogger(log)
	log.Info("Starting currency widget server", map[string]interface{}{
		"store":            cfg.Store.Driver,
		"refresh_interval": cfg.Rates.RefreshInterval.String(),
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("Error closing store", map[string]interface{}{"error": err.Error()})
		}
	}()

	// a failed first load is retried by the refresh loop
	_ = a.LoadRates(ctx)
	a.Widget.Start(ctx, "")

	return a.Serve(ctx)
}
