package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/museloop/genflow/pkg/cmd"
	"github.com/museloop/genflow/pkg/config"
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/log"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/otelhelper"
	"github.com/museloop/genflow/pkg/protocol"
	"github.com/museloop/genflow/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	cli "github.com/urfave/cli/v3"
)

var errMissingInput = errors.New("either --input or --input-file is required")

// offline serves the commands that never reach the generation backend.
var offline = protocol.BackendFunc(func(_ context.Context, _ *models.GenerationRequest) (*models.GenerationResponse, error) {
	return nil, models.NewGenerationFailed(models.ReasonBackend, "no generation backend configured", nil)
})

func newCommand() *cli.Command {
	return &cli.Command{
		Name:                  "genflow",
		Usage:                 "Run generative flows from the command line",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"), "text")

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "flows",
				Usage: "Inspect the registered flows",
				Commands: []*cli.Command{
					{
						Name:    "list",
						Aliases: []string{"ls"},
						Usage:   "List every flow",
						Action:  listFlows,
					},
					{
						Name:      "describe",
						Usage:     "Show the input and output shapes of a flow",
						ArgsUsage: "NAME",
						Action:    describeFlow,
					},
				},
			},
			{
				Name:      "render",
				Usage:     "Render the prompt of a flow without calling the backend",
				ArgsUsage: "NAME",
				Flags:     inputFlags(),
				Action:    renderFlow,
			},
			{
				Name:      "invoke",
				Usage:     "Invoke a flow and print its output",
				ArgsUsage: "NAME",
				Flags: append(inputFlags(),
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the YAML configuration file",
						Sources: cli.EnvVars("GENFLOW_CONFIG"),
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "API key of the generation backend",
						Sources: cli.EnvVars("GEMINI_API_KEY"),
					},
					&cli.StringFlag{
						Name:    "database-url",
						Usage:   "Database connection URL for persistence",
						Sources: cli.EnvVars("DATABASE_URL"),
					},
				),
				Action: invokeFlow,
			},
			eventsCommand(),
		},
	}
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Flow input as a JSON document",
		},
		&cli.StringFlag{
			Name:    "input-file",
			Aliases: []string{"f"},
			Usage:   "File holding the flow input, - for standard input",
		},
	}
}

func offlineRegistry() *registry.Registry {
	return cmd.NewRegistry(log.WithModule("cli"), flow.NewOrchestrator(offline))
}

func listFlows(_ context.Context, command *cli.Command) error {
	out := command.Root().Writer

	for _, descriptor := range offlineRegistry().List() {
		_, err := fmt.Fprintf(out, "%-24s %s\n", descriptor.Name, descriptor.Description)
		if err != nil {
			return err
		}
	}

	return nil
}

func describeFlow(_ context.Context, command *cli.Command) error {
	name, err := flowName(command)
	if err != nil {
		return err
	}

	f, err := offlineRegistry().Lookup(name)
	if err != nil {
		return err
	}

	return printJSON(command.Root().Writer, f.Describe())
}

func renderFlow(_ context.Context, command *cli.Command) error {
	name, err := flowName(command)
	if err != nil {
		return err
	}

	input, err := readInput(command)
	if err != nil {
		return err
	}

	prompt, err := offlineRegistry().Render(name, input)
	if err != nil {
		return err
	}

	return printJSON(command.Root().Writer, prompt)
}

func invokeFlow(ctx context.Context, command *cli.Command) error {
	name, err := flowName(command)
	if err != nil {
		return err
	}

	input, err := readInput(command)
	if err != nil {
		return err
	}

	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return err
	}

	if key := command.String("api-key"); key != "" {
		cfg.Backend.APIKey = key
	}

	if url := command.String("database-url"); url != "" {
		cfg.DatabaseURL = url
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	logger := log.WithModule("cli")

	stack, err := cmd.NewStack(ctx, cfg, logger, otelhelper.NoopTracer(), prometheus.NewRegistry())
	if err != nil {
		return err
	}

	defer stack.Close(ctx)

	result, err := stack.Generation.Invoke(ctx, name, input)
	if err != nil {
		return err
	}

	return printJSON(command.Root().Writer, result)
}

func flowName(command *cli.Command) (string, error) {
	name := command.Args().First()
	if name == "" {
		return "", errors.New("flow name is required")
	}

	return name, nil
}

// readInput returns the flow input from --input or --input-file.
func readInput(command *cli.Command) (json.RawMessage, error) {
	if input := command.String("input"); input != "" {
		return json.RawMessage(input), nil
	}

	path := command.String("input-file")

	switch path {
	case "":
		return nil, errMissingInput
	case "-":
		reader := command.Root().Reader
		if reader == nil {
			reader = os.Stdin
		}

		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		return data, nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}

		return data, nil
	}
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

// exitCode distinguishes caller mistakes from generation failures.
func exitCode(err error) int {
	flowErr, ok := models.AsFlowError(err)
	if !ok {
		return 1
	}

	switch flowErr.Kind {
	case models.ErrorKindInvalidInput:
		return 2
	case models.ErrorKindContentFiltered:
		return 3
	case models.ErrorKindInvalidOutput, models.ErrorKindIncompleteOutput:
		return 4
	default:
		return 5
	}
}
