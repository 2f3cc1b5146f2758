// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package queue carries generation jobs from the API to workers over a
// Valkey stream with a consumer group.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultStream = "papermill:generation_jobs"
	DefaultGroup  = "papermill-workers"

	payloadField = "payload"
	blockFor     = 2 * time.Second
)

// Message is one queued generation request. Version is already resolved,
// so a worker renders exactly what the client asked for even if newer
// versions are appended meanwhile.
type Message struct {
	JobID      uuid.UUID `json:"jobId"`
	OrgID      uuid.UUID `json:"orgId"`
	TemplateID uuid.UUID `json:"templateId"`
	Version    int       `json:"version"`
}

// Handler processes one message. Its error is logged; the message is
// acknowledged either way.
type Handler func(ctx context.Context, msg Message) error

// Queue publishes to and consumes from one stream.
type Queue struct {
	client *redis.Client
	stream string
	group  string
}

// New creates a queue on the given stream and consumer group. Empty names
// fall back to the defaults.
func New(client *redis.Client, stream, group string) *Queue {
	if stream == "" {
		stream = DefaultStream
	}
	if group == "" {
		group = DefaultGroup
	}
	return &Queue{client: client, stream: stream, group: group}
}

// Enqueue appends a message to the stream.
func (q *Queue) Enqueue(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("queue marshal: %w", err)
	}
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{payloadField: payload},
	}).Err()
	if err != nil {
		return fmt.Errorf("queue enqueue %s: %w", msg.JobID, err)
	}
	return nil
}

// EnsureGroup creates the consumer group (and the stream) if missing.
func (q *Queue) EnsureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("queue create group %s: %w", q.group, err)
	}
	return nil
}

// Consume reads messages as consumer until ctx is cancelled, calling
// handle for each. Every message is acknowledged after handling, whether
// or not handle succeeds; there is no redelivery.
func (q *Queue) Consume(ctx context.Context, consumer string, handle Handler) error {
	if err := q.EnsureGroup(ctx); err != nil {
		return err
	}
	slog.Info("queue consumer started", "stream", q.stream, "group", q.group, "consumer", consumer)

	for {
		if ctx.Err() != nil {
			return nil
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: consumer,
			Streams:  []string{q.stream, ">"},
			Count:    1,
			Block:    blockFor,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			slog.Error("queue read failed", "stream", q.stream, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, s := range streams {
			for _, m := range s.Messages {
				q.handle(ctx, m, handle)
			}
		}
	}
}

func (q *Queue) handle(ctx context.Context, m redis.XMessage, handle Handler) {
	msg, err := decode(m.Values)
	if err != nil {
		slog.Error("queue dropping invalid message", "id", m.ID, "error", err)
	} else if err := handle(ctx, msg); err != nil {
		slog.Error("job failed", "job", msg.JobID, "error", err)
	}

	// Ack with a fresh context so a shutdown mid-job still acknowledges.
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := q.client.XAck(ackCtx, q.stream, q.group, m.ID).Err(); err != nil {
		slog.Error("queue ack failed", "id", m.ID, "error", err)
	}
}

func decode(values map[string]any) (Message, error) {
	var raw []byte
	switch v := values[payloadField].(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return Message{}, fmt.Errorf("missing %q field", payloadField)
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("decode payload: %w", err)
	}
	if msg.JobID == uuid.Nil {
		return Message{}, errors.New("payload has no job id")
	}
	return msg, nil
}
