package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/museloop/genflow/pkg/cmd"
	"github.com/museloop/genflow/pkg/config"
	"github.com/museloop/genflow/pkg/eventbus"
	"github.com/museloop/genflow/pkg/events"
	"github.com/museloop/genflow/pkg/log"
	cli "github.com/urfave/cli/v3"
)

var errEventsDisabled = errors.New("events are disabled, set events.provider or --provider")

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Follow invocation lifecycle events",
		Commands: []*cli.Command{
			{
				Name:  "tail",
				Usage: "Print invocation events as JSON lines until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the YAML configuration file",
						Sources: cli.EnvVars("GENFLOW_CONFIG"),
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Event bus provider (gochannel, kafka), overrides the configuration",
					},
					&cli.StringSliceFlag{
						Name:    "brokers",
						Usage:   "Kafka brokers, overrides the configuration",
						Sources: cli.EnvVars("KAFKA_BROKERS"),
					},
					&cli.StringFlag{
						Name:  "flow",
						Usage: "Only print events of this flow",
					},
				},
				Action: tailEventsAction,
			},
		},
	}
}

func tailEventsAction(ctx context.Context, command *cli.Command) error {
	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return err
	}

	if provider := command.String("provider"); provider != "" {
		cfg.Events.Provider = provider
	}

	if brokers := command.StringSlice("brokers"); len(brokers) > 0 {
		cfg.Events.Brokers = brokers
	}

	if !cfg.EventsEnabled() {
		return errEventsDisabled
	}

	bus, err := cmd.NewEventBus(cfg.Events, log.WithModule("cli"))
	if err != nil {
		return err
	}

	defer bus.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return tailEvents(ctx, bus, command.Root().Writer, command.String("flow"))
}

// tailEvents writes every invocation event as one JSON line until ctx is done.
// An empty flow prints events of every flow.
func tailEvents(ctx context.Context, bus eventbus.EventSubscriber, w io.Writer, flow string) error {
	var mu sync.Mutex

	encoder := json.NewEncoder(w)

	write := func(_ context.Context, event any) error {
		if flow != "" && eventFlow(event) != flow {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()

		return encoder.Encode(event)
	}

	for _, eventType := range []events.EventType{events.FlowInvocationSucceededEvent, events.FlowInvocationFailedEvent} {
		if err := bus.Handle(eventType, write); err != nil {
			return fmt.Errorf("failed to handle %s: %w", eventType, err)
		}
	}

	if err := bus.Subscribe(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	return nil
}

func eventFlow(event any) string {
	switch e := event.(type) {
	case *events.FlowInvocationSucceeded:
		return e.Flow
	case *events.FlowInvocationFailed:
		return e.Flow
	default:
		return ""
	}
}
