// Command cart-events consumes the cart events published by the API and logs
// them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/streadway/amqp"

	"toko/internal/config"
	"toko/internal/logger"
	"toko/internal/services"
	"toko/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("err", err))
		os.Exit(1)
	}
	logger.New(logger.Options{Service: "toko-cart-events", Env: cfg.AppEnv, Level: cfg.LogLevel})

	if cfg.RabbitMQURL == "" {
		slog.Error("RABBITMQ_URL is not set")
		os.Exit(1)
	}

	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		slog.Error("failed to initialize RabbitMQ client", slog.Any("err", err))
		os.Exit(1)
	}
	defer client.Close()

	done, err := client.ConsumeCartEvents(handleDelivery)
	if err != nil {
		slog.Error("failed to start consumer", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("consuming cart events")
	select {
	case <-ctx.Done():
		slog.Info("shutting down consumer")
	case <-done:
		slog.Warn("delivery channel closed")
	}
}

func handleDelivery(msg amqp.Delivery) error {
	event, err := decodeEvent(msg.Body)
	if err != nil {
		return err
	}
	slog.Info("cart event",
		slog.String("routing_key", msg.RoutingKey),
		slog.String("type", event.Type),
		slog.String("user_id", event.UserID),
		slog.String("product_id", event.ProductID),
		slog.Int("quantity", event.Quantity),
		slog.Int("item_count", event.ItemCount),
		slog.Time("occurred_at", event.OccurredAt))
	return nil
}

func decodeEvent(body []byte) (services.CartEvent, error) {
	var event services.CartEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return services.CartEvent{}, fmt.Errorf("failed to decode cart event: %w", err)
	}
	if event.Type == "" || event.UserID == "" {
		return services.CartEvent{}, errors.New("cart event is missing type or user")
	}
	return event, nil
}
