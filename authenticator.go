package marketplace

import (
	"context"
	"errors"

	"github.com/goliatone/hashid/pkg/hashid"
)

const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeAdmin     = "admin"
	outcomeDuplicate = "duplicate"
	outcomeInvalid   = "invalid"
	outcomeError     = "error"
)

// Authenticator runs the login and registration flows
type Authenticator struct {
	users        UserStore
	tokens       *TokenService
	verifier     *CredentialVerifier
	useHashid    bool
	logger       Logger
	activitySink ActivitySink
	metrics      AuthMetrics
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(users UserStore, tokens *TokenService, verifier *CredentialVerifier, cfg Config) *Authenticator {
	return &Authenticator{
		users:        users,
		tokens:       tokens,
		verifier:     verifier,
		useHashid:    cfg.UseHashidUserIDs(),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		metrics:      noopMetrics{},
	}
}

func (s *Authenticator) WithLogger(logger Logger) *Authenticator {
	s.logger = normalizeLogger(logger)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Authenticator) WithActivitySink(sink ActivitySink) *Authenticator {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithMetrics configures the outcome counters
func (s *Authenticator) WithMetrics(m AuthMetrics) *Authenticator {
	s.metrics = normalizeMetrics(m)
	return s
}

// Login checks the admin shortcut first and then the record store. Every
// failure past validation is ErrInvalidCredentials.
func (s *Authenticator) Login(ctx context.Context, in CredentialsPayload) (*Session, error) {
	if err := in.Validate(); err != nil {
		s.metrics.LoginAttempt(ctx, outcomeInvalid)
		return nil, err
	}

	if s.verifier.CheckAdminShortcut(in.Email, in.Password) {
		identity := NewIdentity(AdminSubject, in.Email, RoleAdmin)
		session, err := s.issue(identity, RoleAdmin)
		if err != nil {
			s.metrics.LoginAttempt(ctx, outcomeError)
			return nil, err
		}
		s.metrics.LoginAttempt(ctx, outcomeAdmin)
		s.emit(ctx, ActivityEventAdminShortcut, identity.ID(), in.Email, nil)
		return session, nil
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			s.logger.Error("login lookup failed", "error", err)
		}
		return nil, s.loginFailed(ctx, in.Email, "lookup")
	}

	if !s.verifier.VerifyPassword(in.Password, user.PasswordHash) {
		return nil, s.loginFailed(ctx, in.Email, "password")
	}

	identity := user.Identity()
	session, err := s.issue(identity, roleClaim(identity))
	if err != nil {
		s.metrics.LoginAttempt(ctx, outcomeError)
		return nil, err
	}

	s.metrics.LoginAttempt(ctx, outcomeSuccess)
	s.emit(ctx, ActivityEventLoginSuccess, identity.ID(), in.Email, nil)
	return session, nil
}

// Register creates a user account and signs it in
func (s *Authenticator) Register(ctx context.Context, in CredentialsPayload) (*Session, error) {
	if err := in.ValidateRegistration(); err != nil {
		s.metrics.Registration(ctx, outcomeInvalid)
		return nil, err
	}

	// the admin email always resolves to admin, it can never become a user
	if s.verifier.IsAdminEmail(in.Email) {
		s.metrics.Registration(ctx, outcomeDuplicate)
		return nil, ErrDuplicateRegistration
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		s.metrics.Registration(ctx, outcomeDuplicate)
		return nil, ErrDuplicateRegistration
	} else if !errors.Is(err, ErrRecordNotFound) {
		s.metrics.Registration(ctx, outcomeError)
		s.logger.Error("registration lookup failed", "error", err)
		return nil, storeUnavailable(err)
	}

	hash, err := s.verifier.HashPassword(in.Password)
	if err != nil {
		s.metrics.Registration(ctx, outcomeError)
		return nil, err
	}

	user := &User{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         RoleUser,
	}

	if s.useHashid {
		if id, err := hashid.NewUUID(in.Email); err == nil {
			user.ID = id
		}
	}

	created, err := s.users.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, ErrDuplicateRegistration) {
			s.metrics.Registration(ctx, outcomeDuplicate)
			return nil, ErrDuplicateRegistration
		}
		s.metrics.Registration(ctx, outcomeError)
		s.logger.Error("registration insert failed", "error", err)
		if IsStoreUnavailable(err) {
			return nil, err
		}
		return nil, storeUnavailable(err)
	}

	identity := created.Identity()
	session, err := s.issue(identity, roleClaim(identity))
	if err != nil {
		s.metrics.Registration(ctx, outcomeError)
		return nil, err
	}

	s.metrics.Registration(ctx, outcomeSuccess)
	s.emit(ctx, ActivityEventRegistration, identity.ID(), in.Email, nil)
	return session, nil
}

// Logout only records the event, sessions live in the client cookie
func (s *Authenticator) Logout(ctx context.Context, identity Identity) {
	if identity == nil {
		s.emit(ctx, ActivityEventLogout, "", "", nil)
		return
	}
	s.emit(ctx, ActivityEventLogout, identity.ID(), identity.Email(), nil)
}

func (s *Authenticator) issue(identity Identity, role string) (*Session, error) {
	token, err := s.tokens.Issue(TokenClaims{
		Subject: identity.ID(),
		Email:   identity.Email(),
		Role:    role,
	})
	if err != nil {
		s.logger.Error("token issue failed", "error", err)
		return nil, err
	}
	return &Session{Token: token, Identity: identity}, nil
}

func (s *Authenticator) loginFailed(ctx context.Context, email, reason string) error {
	s.metrics.LoginAttempt(ctx, outcomeFailure)
	s.emit(ctx, ActivityEventLoginFailure, "", email, map[string]any{"reason": reason})
	return ErrInvalidCredentials
}

func (s *Authenticator) emit(ctx context.Context, eventType ActivityEventType, userID, email string, metadata map[string]any) {
	recordActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Metadata:  metadata,
	})
}

// roleClaim omits the role claim for ordinary users
func roleClaim(identity Identity) string {
	if IsAdmin(identity) {
		return RoleAdmin
	}
	return ""
}
