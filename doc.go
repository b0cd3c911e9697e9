// Package marketplace implements the template marketplace service: session
// tokens, cookie transport, credential checks, identity resolution and the
// access gate that protects the template, purchase and statistics endpoints.
//
// Sessions:
//   - TokenService signs HS256 session tokens that carry sub, email and an
//     optional role claim. Tokens live for seven days and are never refreshed.
//   - SessionCookie moves the token in a "token" cookie with fixed attributes.
//     Secure is only set when the deployment runs in production.
//
// Identity:
//   - IdentityResolver turns a cookie token into an Identity. Administrator
//     tokens (role claim or the configured admin email) resolve without a
//     store lookup, everything else is checked against the users table.
//   - Resolution reports NotFound, Denied and Fault separately so only real
//     faults are logged as errors. Callers always see "unauthorized".
//
// Access:
//   - AccessGate wraps fiber handlers with a Capability. Every rejection has the
//     same shape so callers cannot tell a bad token from a missing role.
package marketplace
