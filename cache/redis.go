package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	marketplace "github.com/goliatone/go-marketplace"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultPrefix = "mkt:catalog"
	DefaultTTL    = 5 * time.Minute
)

// Redis caches catalog listings. Invalidation bumps a version counter so
// stale entries are never read again and expire on their own.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger marketplace.Logger
}

var _ marketplace.CatalogCache = (*Redis)(nil)

// Option configures the cache
type Option func(*Redis)

// WithPrefix sets the key prefix
func WithPrefix(prefix string) Option {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithTTL sets the lifetime of a cached listing
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger marketplace.Logger) Option {
	return func(r *Redis) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRedis creates a catalog cache on top of client
func NewRedis(client redis.Cmdable, opts ...Option) *Redis {
	r := &Redis{
		client: client,
		prefix: DefaultPrefix,
		ttl:    DefaultTTL,
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load returns the cached listing for filter
func (r *Redis) Load(ctx context.Context, filter marketplace.TemplateFilter) ([]*marketplace.Template, bool) {
	key, err := r.key(ctx, filter)
	if err != nil {
		r.logger.Warn("catalog cache version read failed", "error", err)
		return nil, false
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("catalog cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var templates []*marketplace.Template
	if err := json.Unmarshal(raw, &templates); err != nil {
		r.logger.Warn("catalog cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return templates, true
}

// Store caches the listing for filter
func (r *Redis) Store(ctx context.Context, filter marketplace.TemplateFilter, templates []*marketplace.Template) {
	key, err := r.key(ctx, filter)
	if err != nil {
		r.logger.Warn("catalog cache version read failed", "error", err)
		return
	}

	if templates == nil {
		templates = []*marketplace.Template{}
	}

	raw, err := json.Marshal(templates)
	if err != nil {
		r.logger.Warn("catalog cache encode failed", "error", err)
		return
	}

	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("catalog cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops every cached listing
func (r *Redis) Invalidate(ctx context.Context) {
	if err := r.client.Incr(ctx, r.versionKey()).Err(); err != nil {
		r.logger.Warn("catalog cache invalidation failed", "error", err)
	}
}

func (r *Redis) versionKey() string {
	return r.prefix + ":version"
}

func (r *Redis) key(ctx context.Context, filter marketplace.TemplateFilter) (string, error) {
	version, err := r.client.Get(ctx, r.versionKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}

	return strings.Join([]string{
		r.prefix,
		"v" + strconv.FormatInt(version, 10),
		"c=" + filter.Category,
		"f=" + strconv.FormatBool(filter.Featured),
		"s=" + strings.ToLower(strings.TrimSpace(filter.Search)),
	}, ":"), nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
