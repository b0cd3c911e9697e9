package marketplace_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	marketplace "github.com/goliatone/go-marketplace"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const testSigningKey = "test-signing-key"

// MockUserStore implements marketplace.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*marketplace.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*marketplace.User)
	return user, args.Error(1)
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (*marketplace.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*marketplace.User)
	return user, args.Error(1)
}

func (m *MockUserStore) Insert(ctx context.Context, user *marketplace.User) (*marketplace.User, error) {
	args := m.Called(ctx, user)
	if fn, ok := args.Get(0).(func(context.Context, *marketplace.User) *marketplace.User); ok {
		return fn(ctx, user), args.Error(1)
	}
	out, _ := args.Get(0).(*marketplace.User)
	return out, args.Error(1)
}

// MockLogger implements marketplace.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.Called(msg, args)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type testConfig struct {
	signingKey    string
	adminEmail    string
	adminPassword string
	production    bool
	hashid        bool
}

func (c testConfig) GetSigningKey() string    { return c.signingKey }
func (c testConfig) GetAdminEmail() string    { return c.adminEmail }
func (c testConfig) GetAdminPassword() string { return c.adminPassword }
func (c testConfig) IsProduction() bool       { return c.production }
func (c testConfig) GetPasswordCost() int     { return 4 }
func (c testConfig) UseHashidUserIDs() bool   { return c.hashid }

func defaultTestConfig() testConfig {
	return testConfig{
		signingKey: testSigningKey,
	}
}

// recordingSink collects activity events
type recordingSink struct {
	mu     sync.Mutex
	events []marketplace.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, e marketplace.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Types() []marketplace.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]marketplace.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

// countingMetrics implements marketplace.AuthMetrics
type countingMetrics struct {
	mu            sync.Mutex
	logins        map[string]int
	registrations map[string]int
	denials       map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		logins:        map[string]int{},
		registrations: map[string]int{},
		denials:       map[string]int{},
	}
}

func (m *countingMetrics) LoginAttempt(_ context.Context, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins[outcome]++
}

func (m *countingMetrics) Registration(_ context.Context, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations[outcome]++
}

func (m *countingMetrics) AccessDenied(_ context.Context, capability string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denials[capability]++
}

func newTokenService(t *testing.T, opts ...marketplace.TokenOption) *marketplace.TokenService {
	t.Helper()
	opts = append(opts, marketplace.WithTokenLogger(nopLogger{}))
	ts, err := marketplace.NewTokenService([]byte(testSigningKey), opts...)
	require.NoError(t, err)
	return ts
}

// newTestDB opens a private in-memory sqlite database with the schema applied
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		db.Close()
	})

	require.NoError(t, marketplace.CreateSchema(context.Background(), db))
	return db
}
