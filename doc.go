// Package auth provides credential verification, signed-token issuance, and
// dual-tier token verification (stateless crypto checks layered with a
// persisted per-user session record for server-side revocation).
//
// Components:
//   - PasswordVerifier is an injected comparison strategy; bcrypt in
//     production, an explicit configuration-gated plaintext strategy for
//     dev/test environments.
//   - TokenService signs and validates HS256 claims using an immutable
//     signing key provided through Config at construction time.
//   - TokenVerifier walks the per-request verification states (NoToken,
//     CryptoInvalid, SessionExpired, SessionMismatch, Valid). Routes opt into
//     the strict tier, which cross-checks the presented token against the
//     persisted session record so a logged-out token stops working even while
//     cryptographically unexpired.
//   - SessionStore holds the single (token, expiry) pair per user. Writes are
//     unconditional last-write-wins; concurrent login/logout on the same user
//     race at the storage layer and exactly one write lands cleanly.
//
// The fiber controller in http_controller.go wires these into the JSON
// endpoints; Protected builds the per-route middleware and is where each
// route's verification tier is chosen.
package auth
