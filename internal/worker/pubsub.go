package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// disposition is what happens to a message once its job returns.
type disposition int

const (
	// ack removes the message: the job ran, or redelivery cannot help.
	ack disposition = iota
	// nack asks Pub/Sub to redeliver after its retry backoff.
	nack
)

func (d disposition) String() string {
	if d == nack {
		return "nack"
	}
	return "ack"
}

// PubSubConfig describes the subscription the worker drains.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string

	// MaxOutstanding caps unacked messages held by the worker.
	// Default: 10
	MaxOutstanding int

	// MaxExtension bounds how long a message lease is extended while its
	// job runs. Default: 10 minutes
	MaxExtension time.Duration

	Jobs   *Jobs
	Logger zerolog.Logger
}

// PubSubHandler receives job messages and dispatches them to Jobs.
type PubSubHandler struct {
	client       *pubsub.Client
	subscriber   *pubsub.Subscriber
	subscription string
	jobs         *Jobs
	logger       zerolog.Logger
}

// NewPubSubHandler connects to Pub/Sub and prepares the subscriber.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	if cfg.MaxOutstanding <= 0 {
		cfg.MaxOutstanding = 10
	}
	if cfg.MaxExtension <= 0 {
		cfg.MaxExtension = 10 * time.Minute
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	sub := client.Subscriber(cfg.SubscriptionName)
	sub.ReceiveSettings.MaxOutstandingMessages = cfg.MaxOutstanding
	sub.ReceiveSettings.MaxExtension = cfg.MaxExtension

	return &PubSubHandler{
		client:       client,
		subscriber:   sub,
		subscription: cfg.SubscriptionName,
		jobs:         cfg.Jobs,
		logger:       cfg.Logger.With().Str("subscription", cfg.SubscriptionName).Logger(),
	}, nil
}

// Start blocks receiving messages until ctx is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().Msg("receiving jobs")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := h.logger.With().Str("message_id", msg.ID).Logger()
		if msg.DeliveryAttempt != nil {
			logger = logger.With().Int("delivery_attempt", *msg.DeliveryAttempt).Logger()
		}

		d := h.process(logger.WithContext(ctx), msg.Data)
		logger.Debug().Stringer("disposition", d).Msg("message settled")
		if d == nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// Close releases the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// process decodes and runs one job. The logger in ctx carries the message
// fields.
func (h *PubSubHandler) process(ctx context.Context, data []byte) disposition {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &h.logger
	}

	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Error().Err(err).Int("size", len(data)).Msg("discarding malformed job message")
		return ack
	}

	start := time.Now()
	err := h.jobs.Handle(ctx, msg)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		logger.Info().Str("job_type", msg.JobType).Dur("duration", elapsed).Msg("job done")
		return ack
	case retryable(err):
		logger.Error().Err(err).Str("job_type", msg.JobType).Dur("duration", elapsed).Msg("job failed, requesting redelivery")
		return nack
	default:
		logger.Warn().Err(err).Str("job_type", msg.JobType).Msg("job rejected")
		return ack
	}
}
