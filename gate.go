package marketplace

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

// AccessGate applies a Capability to a request. Every rejection looks the
// same to the caller regardless of why it happened.
type AccessGate struct {
	resolver *IdentityResolver
	cookie   SessionCookie
	logger   Logger
	activity ActivitySink
	metrics  AuthMetrics
}

// GateOption configures an AccessGate
type GateOption func(*AccessGate)

// WithGateLogger sets the logger
func WithGateLogger(logger Logger) GateOption {
	return func(g *AccessGate) {
		g.logger = normalizeLogger(logger)
	}
}

// WithGateActivitySink records access denials
func WithGateActivitySink(sink ActivitySink) GateOption {
	return func(g *AccessGate) {
		g.activity = normalizeActivitySink(sink)
	}
}

// WithGateMetrics counts access denials
func WithGateMetrics(m AuthMetrics) GateOption {
	return func(g *AccessGate) {
		g.metrics = normalizeMetrics(m)
	}
}

// NewAccessGate creates a gate backed by the resolver
func NewAccessGate(resolver *IdentityResolver, cookie SessionCookie, opts ...GateOption) *AccessGate {
	g := &AccessGate{
		resolver: resolver,
		cookie:   cookie,
		logger:   defLogger{},
		activity: noopActivitySink{},
		metrics:  noopMetrics{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Authorize resolves token and checks it against capability. It returns
// ErrUnauthorized for every failure. CapabilityNone returns a nil identity
// when no usable session is present.
func (g *AccessGate) Authorize(ctx context.Context, token string, capability Capability) (Identity, error) {
	if capability == CapabilityNone {
		if token == "" {
			return nil, nil
		}
		res := g.resolver.Resolve(ctx, token)
		if res.Authenticated() {
			return res.Identity, nil
		}
		return nil, nil
	}

	res := g.resolver.Resolve(ctx, token)
	if !res.Authenticated() {
		return nil, ErrUnauthorized
	}

	if !allows(capability, res.Identity) {
		return nil, ErrUnauthorized
	}

	return res.Identity, nil
}

func allows(capability Capability, identity Identity) bool {
	switch capability {
	case CapabilityNone, CapabilitySession:
		return true
	case CapabilityAuthenticated:
		return identity.ID() != AdminSubject
	case CapabilityAdmin:
		return IsAdmin(identity)
	default:
		return false
	}
}

// Require returns a route middleware that enforces capability before the
// next handler runs
func (g *AccessGate) Require(capability Capability) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			token, _ := g.cookie.Extract(c.Header(fiber.HeaderCookie))

			ctx := c.Context()
			identity, err := g.Authorize(ctx, token, capability)
			if err != nil {
				g.metrics.AccessDenied(ctx, capability.String())
				recordActivity(ctx, g.activity, g.logger, ActivityEvent{
					EventType: ActivityEventAccessDenied,
					Metadata: map[string]any{
						"capability": capability.String(),
						"method":     c.Method(),
						"path":       c.Path(),
					},
				})
				return c.JSON(fiber.StatusUnauthorized, fiber.Map{
					"message": msgUnauthorized,
				})
			}

			if identity != nil {
				c.Set(IdentityLocalsKey, identity)
				c.SetContext(WithIdentity(ctx, identity))
			}

			return next(c)
		}
	}
}
