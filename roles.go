package marketplace

const (
	// RoleUser is the role of every registered account
	RoleUser = "user"
	// RoleAdmin grants access to catalog management and statistics
	RoleAdmin = "admin"

	// AdminSubject is the subject of tokens issued by the admin shortcut
	AdminSubject = "admin"
)

// NormalizeRole maps an empty or unknown stored role to RoleUser
func NormalizeRole(role string) string {
	switch role {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Capability is the minimum requirement a route declares through AccessGate
type Capability int

const (
	// CapabilityNone lets every request through
	CapabilityNone Capability = iota
	// CapabilitySession requires any resolved identity, the admin bypass included
	CapabilitySession
	// CapabilityAuthenticated requires a resolved user account. The admin
	// subject is rejected here, it has to use the admin routes.
	CapabilityAuthenticated
	// CapabilityAdmin requires the admin role
	CapabilityAdmin
)

func (c Capability) String() string {
	switch c {
	case CapabilityNone:
		return "none"
	case CapabilitySession:
		return "session"
	case CapabilityAuthenticated:
		return "authenticated"
	case CapabilityAdmin:
		return "admin"
	default:
		return "unknown"
	}
}
