package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/museloop/genflow/pkg/channels/gochannel"
	"github.com/museloop/genflow/pkg/channels/kafka"
	"github.com/museloop/genflow/pkg/config"
	"github.com/museloop/genflow/pkg/eventbus"
)

// NewEventBus returns nil when events are disabled.
func NewEventBus(events config.EventsConfig, logger *slog.Logger) (eventbus.EventBus, error) {
	switch events.Provider {
	case "", "none":
		return nil, nil
	case "gochannel":
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create in-process pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "genflow", events.Brokers)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", events.Provider)
	}
}
