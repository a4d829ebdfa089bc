// Package events fans out connection and video lifecycle events to a
// RabbitMQ topic exchange so downstream consumers (dashboards, viewers)
// can react without polling the store.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cam-server/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	exchange   string
	routingKey string
	conn       *amqp.Connection
	channel    *amqp.Channel
}

// NewPublisher connects to RabbitMQ and declares the exchange. When
// publishing is disabled by config the returned publisher is a no-op.
func NewPublisher(cfg *config.Config) (*Publisher, error) {
	p := &Publisher{
		exchange:   cfg.RabbitMQExchange,
		routingKey: cfg.RabbitMQRoutingKey,
	}
	if !cfg.RabbitMQEnabled {
		return p, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := channel.ExchangeDeclare(cfg.RabbitMQExchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = channel
	log.Printf("RabbitMQ publisher connected (exchange: %s)", cfg.RabbitMQExchange)
	return p, nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

func (p *Publisher) DeviceConnected(remoteAddr string) {
	p.publish("device.connected", map[string]any{"remote_addr": remoteAddr})
}

func (p *Publisher) DeviceDisconnected(remoteAddr string) {
	p.publish("device.disconnected", map[string]any{"remote_addr": remoteAddr})
}

func (p *Publisher) VideoReceived(videoID, cameraID, bytes int64) {
	p.publish("video.received", map[string]any{
		"video_id":  videoID,
		"camera_id": cameraID,
		"bytes":     bytes,
	})
}

func (p *Publisher) VideoProcessed(videoID int64, frameCount int) {
	p.publish("video.processed", map[string]any{
		"video_id":    videoID,
		"frame_count": frameCount,
	})
}

func (p *Publisher) VideoFailed(videoID int64) {
	p.publish("video.failed", map[string]any{"video_id": videoID})
}

// publish is fire-and-forget: event loss must never fail the operation
// that produced the event.
func (p *Publisher) publish(event string, payload map[string]any) {
	if p.channel == nil {
		return
	}

	payload["event"] = event
	payload["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal event %s: %v", event, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey+"."+event,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		log.Printf("Failed to publish event %s: %v", event, err)
	}
}
