package main

import (
	"context"
	"os"

	"github.com/museloop/genflow/pkg/cmd"
	"github.com/museloop/genflow/pkg/config"
	"github.com/museloop/genflow/pkg/log"
	"github.com/museloop/genflow/pkg/otelhelper"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "genflow-api",
		Usage:                 "Serve the generative flows over HTTP",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Sources: cli.EnvVars("GENFLOW_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key of the generation backend",
				Sources: cli.EnvVars("GEMINI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing genflow API")

			cfg, err := loadConfig(command)
			if err != nil {
				return err
			}

			tracer, shutdown, err := otelhelper.NewTracer(ctx, "genflow-api")
			if err != nil {
				return err
			}

			defer func() {
				if err := shutdown(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to shut down tracer", "error", err)
				}
			}()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			stack, err := cmd.NewStack(ctx, cfg, logger, tracer, reg)
			if err != nil {
				return err
			}

			defer stack.Close(ctx)

			api := NewAPI(logger, stack.Generation, stack.Registry, reg)

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

// loadConfig reads the configuration file and applies the flag overrides.
func loadConfig(command *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return nil, err
	}

	if url := command.String("database-url"); url != "" {
		cfg.DatabaseURL = url
	}

	if key := command.String("api-key"); key != "" {
		cfg.Backend.APIKey = key
	}

	return cfg, cfg.Validate()
}
