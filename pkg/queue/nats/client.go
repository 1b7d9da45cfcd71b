package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// Config holds NATS client configuration
type Config struct {
	URL           string
	StreamName    string
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		URL:           "nats://localhost:4222",
		StreamName:    "rankview",
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// Client wraps NATS JetStream functionality
type Client struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config Config
	logger *zap.Logger
}

// NewClient creates a new NATS client with JetStream support
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	nc, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.RetryAttempts),
		nats.ReconnectWait(cfg.RetryDelay),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Client{
		nc:     nc,
		js:     js,
		config: cfg,
		logger: logger,
	}, nil
}

// CreateStream creates the JetStream stream carrying actions and snapshots
func (c *Client) CreateStream(ctx context.Context, subjects []string) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      c.config.StreamName,
		Subjects:  subjects,
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
		MaxAge:    24 * time.Hour, // Retain messages for 24 hours
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// Publish publishes a message to a subject
func (c *Client) Publish(ctx context.Context, subject string, data []byte) error {
	_, err := c.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// PublishJSON encodes v and publishes it to a subject
func (c *Client) PublishJSON(ctx context.Context, subject string, v interface{}) error {
	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	return c.Publish(ctx, subject, data)
}

// MessageHandler is called when a message is received
type MessageHandler func(msg jetstream.Msg) error

// Subscribe creates a durable consumer and subscribes to messages. Handler
// errors wrapping ErrInvalidAction terminate the message; any other error
// asks for redelivery.
func (c *Client) Subscribe(ctx context.Context, subject string, consumerName string, handler MessageHandler) (jetstream.ConsumeContext, error) {
	consumer, err := c.js.CreateOrUpdateConsumer(ctx, c.config.StreamName, jetstream.ConsumerConfig{
		Durable:       consumerName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    c.config.RetryAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		if err := handler(msg); err != nil {
			if errors.Is(err, ErrInvalidAction) {
				c.logger.Warn("dropping invalid message",
					zap.String("subject", msg.Subject()),
					zap.Error(err),
				)
				msg.Term()
				return
			}
			c.logger.Error("message handling failed",
				zap.String("subject", msg.Subject()),
				zap.Error(err),
			)
			msg.Nak()
			return
		}
		msg.Ack()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	return consumeCtx, nil
}

// Close drains and closes the NATS connection
func (c *Client) Close() {
	if c.nc == nil {
		return
	}
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
	}
}
