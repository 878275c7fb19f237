package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"teka/internal/common/logger"
	"teka/internal/config"
	"teka/internal/connections/rabbitmq"
	"teka/internal/notifications"
)

// The notifier is a console subscriber: it binds a routing pattern on the
// notifications exchange and prints every event it receives. Useful as the
// realtime consumer during development and as a smoke test for the fan-out.
func main() {
	cfgPath := flag.String("config", "config.yml", "path to config file")
	pattern := flag.String("channel", "#", `channel pattern, e.g. "chef.*" or "client.<uuid>"`)
	name := flag.String("name", "teka-notifier", "consumer name")
	flag.Parse()

	log := logger.New("teka-notifier")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("config_load_failed", err, nil)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rmq, err := rabbitmq.Dial(cfg.RabbitMQ)
	if err != nil {
		log.Error("rabbitmq_connect_failed", err, nil)
		os.Exit(1)
	}
	defer rmq.Close()
	if err := rmq.DeclareTopology(); err != nil {
		log.Error("rabbitmq_topology_failed", err, nil)
		os.Exit(1)
	}

	deliveries, err := rmq.Subscribe(*pattern, *name)
	if err != nil {
		log.Error("subscribe_failed", err, map[string]any{"pattern": *pattern})
		os.Exit(1)
	}
	log.Info("subscribed", map[string]any{"pattern": *pattern})

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown", nil)
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Error("channel_closed", nil, nil)
				return
			}
			var ev notifications.Event
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				log.Error("bad_event", err, map[string]any{"channel": d.RoutingKey})
				continue
			}
			log.Info("notification", map[string]any{
				"channel":  d.RoutingKey,
				"type":     ev.Kind,
				"message":  ev.Message,
				"order_id": ev.OrderID,
				"status":   ev.Status,
			})
		}
	}
}
