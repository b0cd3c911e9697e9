package marketplace

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// SessionCookieName is the cookie key carrying the session token
	SessionCookieName = "token"
	// SessionCookieMaxAge matches SessionTTL in seconds
	SessionCookieMaxAge = 604800

	headerSetCookie = "Set-Cookie"
)

// SessionCookie maps session tokens to and from the cookie header
type SessionCookie struct {
	secure bool
}

// NewSessionCookie returns a cookie adapter. Secure is only emitted when
// production is true so plain http development keeps working.
func NewSessionCookie(production bool) SessionCookie {
	return SessionCookie{secure: production}
}

// Secure reports whether the Secure attribute is emitted
func (s SessionCookie) Secure() bool {
	return s.secure
}

// Attach sets the session cookie for the given token
func (s SessionCookie) Attach(h HeaderSetter, token string) {
	h.Set(headerSetCookie, s.Value(token))
}

// Clear expires the session cookie immediately
func (s SessionCookie) Clear(h HeaderSetter) {
	h.Set(headerSetCookie, s.ClearValue())
}

// Value renders the Set-Cookie value for a token
func (s SessionCookie) Value(token string) string {
	parts := []string{
		SessionCookieName + "=" + url.PathEscape(token),
		"Path=/",
		"HttpOnly",
		"SameSite=Strict",
	}
	if s.secure {
		parts = append(parts, "Secure")
	}
	parts = append(parts, "Max-Age="+strconv.Itoa(SessionCookieMaxAge))
	return strings.Join(parts, "; ")
}

// ClearValue renders the Set-Cookie value that deletes the session
func (s SessionCookie) ClearValue() string {
	return strings.Join([]string{
		SessionCookieName + "=",
		"Path=/",
		"HttpOnly",
		"SameSite=Strict",
		"Max-Age=0",
	}, "; ")
}

// Extract returns the session token from a raw Cookie header
func (s SessionCookie) Extract(rawCookieHeader string) (string, bool) {
	token, ok := ParseCookieHeader(rawCookieHeader)[SessionCookieName]
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// ParseCookieHeader splits a Cookie header into key/value pairs. Pairs are
// split on the first "=" and values are percent decoded, keeping the raw
// value when decoding fails. It never fails on empty input.
func ParseCookieHeader(raw string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, _ := strings.Cut(part, "=")
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		out[key] = value
	}
	return out
}
