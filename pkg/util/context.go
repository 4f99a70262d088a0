package util

import (
	"context"
	"crypto/rand"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type key string

const (
	runIDKey   = key("run-id")
	eventIDKey = key("event-id")
)

// NewRunID generates a lexicographically sortable identifier for a replay run.
func NewRunID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// NewEventID generates a random identifier for a single emitted record.
func NewEventID() string {
	return uuid.NewString()
}

// WithRunID returns a context carrying a replay run id.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// GetRunID returns the replay run id from context, or "" if not present.
func GetRunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// WithEventID returns a context carrying an event id.
func WithEventID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, eventIDKey, id)
}

// GetEventID returns the event id from context, or "" if not present.
func GetEventID(ctx context.Context) string {
	id, _ := ctx.Value(eventIDKey).(string)
	return id
}
