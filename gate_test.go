package marketplace_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	marketplace "github.com/goliatone/go-marketplace"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type gateFixture struct {
	gate     *marketplace.AccessGate
	tokens   *marketplace.TokenService
	users    *MockUserStore
	sink     *recordingSink
	metrics  *countingMetrics
	userID   uuid.UUID
	userTok  string
	adminTok string
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	f := &gateFixture{
		users:   &MockUserStore{},
		sink:    &recordingSink{},
		metrics: newCountingMetrics(),
		userID:  uuid.New(),
	}

	var resolver *marketplace.IdentityResolver
	resolver, f.tokens = newResolver(t, f.users)
	f.gate = marketplace.NewAccessGate(resolver, marketplace.NewSessionCookie(false),
		marketplace.WithGateLogger(nopLogger{}),
		marketplace.WithGateActivitySink(f.sink),
		marketplace.WithGateMetrics(f.metrics),
	)

	f.users.On("FindByID", mock.Anything, f.userID.String()).
		Return(&marketplace.User{ID: f.userID, Email: "a@x.io", Role: marketplace.RoleUser}, nil).Maybe()

	var err error
	f.userTok, err = f.tokens.Issue(marketplace.TokenClaims{Subject: f.userID.String(), Email: "a@x.io"})
	require.NoError(t, err)
	f.adminTok, err = f.tokens.Issue(marketplace.TokenClaims{Subject: marketplace.AdminSubject, Email: "admin@code4web.com", Role: marketplace.RoleAdmin})
	require.NoError(t, err)

	return f
}

func newFiberTestServer() router.Server[*fiber.App] {
	return router.NewFiberAdapter(func(*fiber.App) *fiber.App {
		return fiber.New(fiber.Config{DisableStartupMessage: true})
	})
}

func TestAccessGate_Authorize(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		token      string
		capability marketplace.Capability
		allowed    bool
		subject    string
	}{
		{"none without token", "", marketplace.CapabilityNone, true, ""},
		{"none with user", f.userTok, marketplace.CapabilityNone, true, f.userID.String()},
		{"none with garbage", "garbage", marketplace.CapabilityNone, true, ""},

		{"session without token", "", marketplace.CapabilitySession, false, ""},
		{"session with user", f.userTok, marketplace.CapabilitySession, true, f.userID.String()},
		{"session with admin", f.adminTok, marketplace.CapabilitySession, true, marketplace.AdminSubject},

		{"authenticated without token", "", marketplace.CapabilityAuthenticated, false, ""},
		{"authenticated with user", f.userTok, marketplace.CapabilityAuthenticated, true, f.userID.String()},
		{"authenticated rejects admin subject", f.adminTok, marketplace.CapabilityAuthenticated, false, ""},

		{"admin without token", "", marketplace.CapabilityAdmin, false, ""},
		{"admin with user", f.userTok, marketplace.CapabilityAdmin, false, ""},
		{"admin with admin", f.adminTok, marketplace.CapabilityAdmin, true, marketplace.AdminSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := f.gate.Authorize(ctx, tt.token, tt.capability)

			if !tt.allowed {
				assert.ErrorIs(t, err, marketplace.ErrUnauthorized)
				assert.Nil(t, identity)
				return
			}

			require.NoError(t, err)
			if tt.subject == "" {
				assert.Nil(t, identity)
				return
			}
			require.NotNil(t, identity)
			assert.Equal(t, tt.subject, identity.ID())
		})
	}
}

func TestAccessGate_RejectionIsUniform(t *testing.T) {
	f := newGateFixture(t)

	missing := uuid.New()
	f.users.On("FindByID", mock.Anything, missing.String()).Return(nil, marketplace.ErrRecordNotFound)
	ghostTok, err := f.tokens.Issue(marketplace.TokenClaims{Subject: missing.String(), Email: "ghost@x.io"})
	require.NoError(t, err)

	server := newFiberTestServer()
	server.Router().Get("/admin", func(c router.Context) error {
		return c.Send([]byte("secret"))
	}, f.gate.Require(marketplace.CapabilityAdmin))
	app := server.WrappedRouter()

	var bodies []string
	for _, cookie := range []string{"", "token=garbage", "token=" + f.userTok, "token=" + ghostTok} {
		req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
		if cookie != "" {
			req.Header.Set(fiber.HeaderCookie, cookie)
		}

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		bodies = append(bodies, string(raw))
	}

	for _, body := range bodies {
		assert.JSONEq(t, `{"message":"Unauthorized"}`, body)
	}

	assert.Equal(t, 4, f.metrics.denials["admin"])
	assert.Len(t, f.sink.Types(), 4)
	assert.Equal(t, marketplace.ActivityEventAccessDenied, f.sink.Types()[0])
}

func TestAccessGate_RequireStoresIdentity(t *testing.T) {
	f := newGateFixture(t)

	server := newFiberTestServer()
	server.Router().Get("/me", func(c router.Context) error {
		fromStore, ok := marketplace.IdentityFromRouter(c)
		if !ok {
			return fiber.ErrTeapot
		}
		fromCtx, ok := marketplace.IdentityFromContext(c.Context())
		if !ok || fromCtx.ID() != fromStore.ID() {
			return fiber.ErrTeapot
		}
		return c.JSON(fiber.StatusOK, marketplace.ViewOf(fromStore))
	}, f.gate.Require(marketplace.CapabilityAuthenticated))
	app := server.WrappedRouter()

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderCookie, "lang=en; token="+f.userTok)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var view marketplace.SessionView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, marketplace.SessionView{ID: f.userID.String(), Email: "a@x.io", Role: marketplace.RoleUser}, view)
}

func TestAccessGate_StoreFaultDenies(t *testing.T) {
	users := &MockUserStore{}
	id := uuid.New()
	users.On("FindByID", mock.Anything, id.String()).Return(nil, assert.AnError)

	resolver, tokens := newResolver(t, users)
	gate := marketplace.NewAccessGate(resolver, marketplace.NewSessionCookie(false), marketplace.WithGateLogger(nopLogger{}))

	token, err := tokens.Issue(marketplace.TokenClaims{Subject: id.String(), Email: "a@x.io"})
	require.NoError(t, err)

	identity, err := gate.Authorize(context.Background(), token, marketplace.CapabilityAuthenticated)
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, marketplace.ErrUnauthorized)
}

func TestCapability_String(t *testing.T) {
	assert.Equal(t, "none", marketplace.CapabilityNone.String())
	assert.Equal(t, "session", marketplace.CapabilitySession.String())
	assert.Equal(t, "authenticated", marketplace.CapabilityAuthenticated.String())
	assert.Equal(t, "admin", marketplace.CapabilityAdmin.String())
	assert.Equal(t, "unknown", marketplace.Capability(42).String())
}
