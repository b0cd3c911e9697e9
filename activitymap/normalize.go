// Package activitymap flattens session activity into records for audit logs.
package activitymap

import (
	"context"
	"strings"
	"time"

	marketplace "github.com/goliatone/go-marketplace"
)

const (
	// MetadataKeyEmail stores the email the event was about
	MetadataKeyEmail = "email"

	defaultChannel = "auth"
	anonymousActor = "anonymous"
)

// Record is the audit shape of an activity event
type Record struct {
	Actor      string         `json:"actor"`
	Verb       string         `json:"verb"`
	Channel    string         `json:"channel"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Fields returns the record as logger key/value pairs
func (r Record) Fields() []any {
	out := []any{
		"actor", r.Actor,
		"channel", r.Channel,
		"occurred_at", r.OccurredAt.Format(time.RFC3339),
	}
	if len(r.Metadata) > 0 {
		out = append(out, "metadata", r.Metadata)
	}
	return out
}

// Option customizes Normalize
type Option func(*options)

type options struct {
	channel string
	now     func() time.Time
}

// WithChannel overrides the "auth" channel
func WithChannel(channel string) Option {
	return func(o *options) {
		if channel = strings.TrimSpace(channel); channel != "" {
			o.channel = channel
		}
	}
}

// WithClock sets the time used for events without a timestamp
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Normalize converts an activity event into a Record. Events without a user
// id are attributed to "anonymous".
func Normalize(event marketplace.ActivityEvent, opts ...Option) Record {
	o := options{
		channel: defaultChannel,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	actor := strings.TrimSpace(event.UserID)
	if actor == "" {
		actor = anonymousActor
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = o.now()
	}

	return Record{
		Actor:      actor,
		Verb:       string(event.EventType),
		Channel:    o.channel,
		Metadata:   metadata(event),
		OccurredAt: occurredAt,
	}
}

// NewLogSink returns an ActivitySink that writes every event to logger
func NewLogSink(logger marketplace.Logger, opts ...Option) marketplace.ActivitySink {
	return marketplace.ActivitySinkFunc(func(_ context.Context, event marketplace.ActivityEvent) error {
		record := Normalize(event, opts...)
		logger.Info(record.Verb, record.Fields()...)
		return nil
	})
}

func metadata(event marketplace.ActivityEvent) map[string]any {
	var out map[string]any
	if len(event.Metadata) > 0 {
		out = make(map[string]any, len(event.Metadata)+1)
		for k, v := range event.Metadata {
			out[k] = v
		}
	}

	if email := strings.TrimSpace(event.Email); email != "" {
		if out == nil {
			out = map[string]any{}
		}
		if _, exists := out[MetadataKeyEmail]; !exists {
			out[MetadataKeyEmail] = email
		}
	}

	return out
}
