package marketplace

import (
	"context"
	"errors"
)

// Outcome classifies a token resolution
type Outcome int

const (
	// OutcomeDenied covers empty, malformed, forged and expired tokens
	OutcomeDenied Outcome = iota
	// OutcomeAuthenticated means Identity is set
	OutcomeAuthenticated
	// OutcomeNotFound means the token was valid but its subject no longer exists
	OutcomeNotFound
	// OutcomeFault means the record store failed during the lookup
	OutcomeFault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFault:
		return "fault"
	default:
		return "denied"
	}
}

// Resolution is the result of IdentityResolver.Resolve
type Resolution struct {
	Identity Identity
	Outcome  Outcome
	Err      error
}

// Authenticated reports whether the resolution produced an identity
func (r Resolution) Authenticated() bool {
	return r.Outcome == OutcomeAuthenticated && r.Identity != nil
}

// IdentityResolver turns a raw session token into an Identity
type IdentityResolver struct {
	tokens     *TokenService
	users      UserStore
	adminEmail string
	logger     Logger
}

// NewIdentityResolver creates a resolver. The admin email is taken from the
// verifier so that login and resolution agree on it.
func NewIdentityResolver(tokens *TokenService, users UserStore, verifier *CredentialVerifier) *IdentityResolver {
	return &IdentityResolver{
		tokens:     tokens,
		users:      users,
		adminEmail: verifier.AdminEmail(),
		logger:     defLogger{},
	}
}

// WithLogger sets the logger
func (r *IdentityResolver) WithLogger(logger Logger) *IdentityResolver {
	r.logger = normalizeLogger(logger)
	return r
}

// Resolve verifies the token and loads the identity it names. The admin
// bypass never touches the record store. Store failures are logged and
// reported as OutcomeFault, callers treat them like any other denial.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) Resolution {
	if token == "" {
		return Resolution{Outcome: OutcomeDenied, Err: ErrInvalidToken}
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		r.logger.Debug("session token rejected", "error", err)
		return Resolution{Outcome: OutcomeDenied, Err: err}
	}

	if claims.IsAdmin() || (claims.Email != "" && claims.Email == r.adminEmail) {
		subject := claims.UserID()
		if subject == "" {
			subject = AdminSubject
		}
		return Resolution{
			Identity: NewIdentity(subject, claims.Email, RoleAdmin),
			Outcome:  OutcomeAuthenticated,
		}
	}

	user, err := r.users.FindByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return Resolution{Outcome: OutcomeNotFound, Err: err}
		}
		r.logger.Error("identity lookup failed", "subject", claims.UserID(), "error", err)
		return Resolution{Outcome: OutcomeFault, Err: err}
	}

	if user == nil {
		return Resolution{Outcome: OutcomeNotFound, Err: ErrRecordNotFound}
	}

	return Resolution{
		Identity: user.Identity(),
		Outcome:  OutcomeAuthenticated,
	}
}
