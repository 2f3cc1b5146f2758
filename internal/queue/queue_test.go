// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package queue

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client on the test DB.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()
	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDecode(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{"string payload", map[string]any{"payload": `{"jobId":"` + id.String() + `","version":2}`}, false},
		{"bytes payload", map[string]any{"payload": []byte(`{"jobId":"` + id.String() + `"}`)}, false},
		{"missing field", map[string]any{"other": "x"}, true},
		{"bad json", map[string]any{"payload": "{"}, true},
		{"no job id", map[string]any{"payload": `{"version":1}`}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := decode(tt.values)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && msg.JobID != id {
				t.Errorf("JobID = %s, want %s", msg.JobID, id)
			}
		})
	}
}

func TestEnqueueConsume(t *testing.T) {
	client := testValkeyClient(t)
	stream := "papermill:test:" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), stream) })

	q := New(client, stream, "test-group")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := q.EnsureGroup(ctx); err != nil {
		t.Fatalf("EnsureGroup: %v", err)
	}
	// A second call must tolerate the existing group.
	if err := q.EnsureGroup(ctx); err != nil {
		t.Fatalf("EnsureGroup again: %v", err)
	}

	ok := Message{JobID: uuid.New(), OrgID: uuid.New(), TemplateID: uuid.New(), Version: 3}
	failing := Message{JobID: uuid.New(), Version: 1}
	for _, m := range []Message{ok, failing} {
		if err := q.Enqueue(ctx, m); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	got := make(chan Message, 2)
	go q.Consume(ctx, "c1", func(_ context.Context, m Message) error {
		got <- m
		if m.JobID == failing.JobID {
			return errors.New("render failed")
		}
		return nil
	})

	for i := 0; i < 2; i++ {
		select {
		case m := <-got:
			if m.JobID != ok.JobID && m.JobID != failing.JobID {
				t.Errorf("unexpected message %+v", m)
			}
			if m.JobID == ok.JobID && m != ok {
				t.Errorf("message = %+v, want %+v", m, ok)
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for messages")
		}
	}
	cancel()

	// Both messages are acknowledged, failed or not.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		pending, err := client.XPending(context.Background(), stream, "test-group").Result()
		if err == nil && pending.Count == 0 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Error("messages still pending after handling")
}
