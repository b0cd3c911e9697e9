package marketplace

import (
	"context"
	"fmt"
	"strings"
)

// Logger is the logging surface used across the package. Args are key/value
// pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of a resolved caller
type Identity interface {
	ID() string
	Email() string
	Role() string
}

// Config holds the values the auth core reads at construction time
type Config interface {
	GetSigningKey() string
	GetAdminEmail() string
	GetAdminPassword() string
	IsProduction() bool
	GetPasswordCost() int
	UseHashidUserIDs() bool
}

// UserStore is the record store contract consumed by the auth core.
// Absent records are reported as ErrRecordNotFound.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Insert(ctx context.Context, user *User) (*User, error)
}

// HeaderSetter is satisfied by http.Header and route response writers
type HeaderSetter interface {
	Set(key, value string)
}

type authIdentity struct {
	id    string
	email string
	role  string
}

// NewIdentity builds an immutable Identity value
func NewIdentity(id, email, role string) Identity {
	return authIdentity{id: id, email: email, role: role}
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) Role() string {
	return a.role
}

var _ Identity = authIdentity{}

// IsAdmin reports whether the identity carries the admin role
func IsAdmin(identity Identity) bool {
	return identity != nil && identity.Role() == RoleAdmin
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] MARKET " + line(msg, args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] MARKET " + line(msg, args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] MARKET " + line(msg, args))
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] MARKET " + line(msg, args))
}

func line(msg string, args []any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	b.WriteString("\n")
	return b.String()
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}

// AuthMetrics receives auth outcome counters
type AuthMetrics interface {
	LoginAttempt(ctx context.Context, outcome string)
	Registration(ctx context.Context, outcome string)
	AccessDenied(ctx context.Context, capability string)
}

type noopMetrics struct{}

func (noopMetrics) LoginAttempt(context.Context, string) {}

func (noopMetrics) Registration(context.Context, string) {}

func (noopMetrics) AccessDenied(context.Context, string) {}

func normalizeMetrics(m AuthMetrics) AuthMetrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
