package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/projecta/notifier/internal/model"
)

const (
	QueueEvents     = "events"
	TypeDomainEvent = "event:dispatch"
)

type Config struct {
	RedisURL    string        `mapstructure:"redis_url"`
	Concurrency int           `mapstructure:"concurrency"`
	MaxRetry    int           `mapstructure:"max_retry"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retention   time.Duration `mapstructure:"retention"`
}

// Enqueuer hands domain events to the worker process.
type Enqueuer interface {
	EnqueueEvent(ctx context.Context, event *model.Event) (string, error)
}

type Client struct {
	client *asynq.Client
	config Config
}

// RedisOpt parses the configured redis URL into asynq connection options.
func RedisOpt(cfg Config) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid queue redis url: %w", err)
	}
	return opt, nil
}

func NewClient(cfg Config) (*Client, error) {
	opt, err := RedisOpt(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{client: asynq.NewClient(opt), config: cfg}, nil
}

// NewEventTask wraps event in a task, assigning an id when it has none.
func NewEventTask(event *model.Event) (*asynq.Task, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return asynq.NewTask(TypeDomainEvent, payload), nil
}

// ParseEventTask decodes the payload written by NewEventTask.
func ParseEventTask(t *asynq.Task) (*model.Event, error) {
	var event model.Event
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}

func (c *Client) EnqueueEvent(ctx context.Context, event *model.Event) (string, error) {
	task, err := NewEventTask(event)
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task, c.options(event.ID)...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue event: %w", err)
	}
	return info.ID, nil
}

func (c *Client) options(id string) []asynq.Option {
	opts := []asynq.Option{
		asynq.Queue(QueueEvents),
		asynq.TaskID(id),
	}
	if c.config.MaxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(c.config.MaxRetry))
	}
	if c.config.Timeout > 0 {
		opts = append(opts, asynq.Timeout(c.config.Timeout))
	}
	if c.config.Retention > 0 {
		opts = append(opts, asynq.Retention(c.config.Retention))
	}
	return opts
}

func (c *Client) Close() error {
	return c.client.Close()
}
