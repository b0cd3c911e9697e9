package marketplace

// Session is the outcome of a successful login or registration
type Session struct {
	Token    string
	Identity Identity
}

// SessionView is the JSON shape of an identity returned to clients
type SessionView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ViewOf renders identity for a response body
func ViewOf(identity Identity) SessionView {
	if identity == nil {
		return SessionView{}
	}
	return SessionView{
		ID:    identity.ID(),
		Email: identity.Email(),
		Role:  identity.Role(),
	}
}
