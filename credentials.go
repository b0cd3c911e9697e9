package marketplace

import (
	"crypto/subtle"
	"errors"
)

const (
	// DefaultAdminEmail is used when ADMIN_EMAIL is not set
	DefaultAdminEmail = "admin@code4web.com"
	// DefaultAdminPassword is used when ADMIN_PASSWORD is not set
	DefaultAdminPassword = "admin123"
)

// CredentialVerifier checks submitted passwords against stored hashes and the
// configured administrator pair
type CredentialVerifier struct {
	adminEmail    string
	adminPassword string
	cost          int
	logger        Logger
}

// NewCredentialVerifier copies the admin pair and bcrypt cost out of cfg
func NewCredentialVerifier(cfg Config) *CredentialVerifier {
	email := cfg.GetAdminEmail()
	if email == "" {
		email = DefaultAdminEmail
	}

	password := cfg.GetAdminPassword()
	if password == "" {
		password = DefaultAdminPassword
	}

	return &CredentialVerifier{
		adminEmail:    email,
		adminPassword: password,
		cost:          cfg.GetPasswordCost(),
		logger:        defLogger{},
	}
}

// WithLogger sets the logger
func (v *CredentialVerifier) WithLogger(logger Logger) *CredentialVerifier {
	v.logger = normalizeLogger(logger)
	return v
}

// AdminEmail returns the configured administrator email
func (v *CredentialVerifier) AdminEmail() string {
	return v.adminEmail
}

// VerifyPassword reports whether plain matches hash. A malformed hash counts
// as a mismatch.
func (v *CredentialVerifier) VerifyPassword(plain, hash string) bool {
	err := ComparePasswordAndHash(plain, hash)
	if err == nil {
		return true
	}

	if !errors.Is(err, ErrMismatchedHashAndPassword) {
		v.logger.Warn("password hash could not be compared", "error", err)
	}
	return false
}

// CheckAdminShortcut reports whether email and password are exactly the
// configured administrator credentials. It never touches the record store.
func (v *CredentialVerifier) CheckAdminShortcut(email, password string) bool {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(v.adminEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.adminPassword)) == 1
	return emailOK && passwordOK
}

// IsAdminEmail reports whether email is the configured administrator email
func (v *CredentialVerifier) IsAdminEmail(email string) bool {
	return email != "" && email == v.adminEmail
}

// HashPassword hashes plain with the configured cost
func (v *CredentialVerifier) HashPassword(plain string) (string, error) {
	return HashPassword(plain, v.cost)
}
