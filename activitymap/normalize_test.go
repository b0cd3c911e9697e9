package activitymap_test

import (
	"context"
	"testing"
	"time"

	marketplace "github.com/goliatone/go-marketplace"
	"github.com/goliatone/go-marketplace/activitymap"
	"github.com/goliatone/go-marketplace/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNormalize(t *testing.T) {
	ts := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)

	out := activitymap.Normalize(marketplace.ActivityEvent{
		EventType:  marketplace.ActivityEventLoginSuccess,
		UserID:     "user-100",
		Email:      "a@x.io",
		Metadata:   map[string]any{"ip": "10.0.0.1"},
		OccurredAt: ts,
	})

	assert.Equal(t, activitymap.Record{
		Actor:      "user-100",
		Verb:       "auth.login.success",
		Channel:    "auth",
		Metadata:   map[string]any{"ip": "10.0.0.1", "email": "a@x.io"},
		OccurredAt: ts,
	}, out)
}

func TestNormalize_Defaults(t *testing.T) {
	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	src := map[string]any{"capability": "admin"}

	out := activitymap.Normalize(marketplace.ActivityEvent{
		EventType: marketplace.ActivityEventAccessDenied,
		Metadata:  src,
	}, activitymap.WithChannel("gate"), activitymap.WithClock(func() time.Time { return ts }))

	assert.Equal(t, "anonymous", out.Actor)
	assert.Equal(t, "gate", out.Channel)
	assert.Equal(t, ts, out.OccurredAt)

	out.Metadata["mutated"] = true
	assert.NotContains(t, src, "mutated", "metadata is copied")
}

func TestNormalize_NoMetadata(t *testing.T) {
	out := activitymap.Normalize(marketplace.ActivityEvent{EventType: marketplace.ActivityEventLogout, UserID: "u"})
	assert.Nil(t, out.Metadata)
	assert.False(t, out.OccurredAt.IsZero())
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := activitymap.NewLogSink(logging.Wrap(zap.New(core)))

	err := sink.Record(context.Background(), marketplace.ActivityEvent{
		EventType:  marketplace.ActivityEventRegistration,
		UserID:     "u-1",
		Email:      "a@x.io",
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "auth.registration", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "u-1", fields["actor"])
	assert.Equal(t, "2026-03-01T12:00:00Z", fields["occurred_at"])
}
