// Package auth authenticates portfolio administrators.
//
// Passwords are stored as bcrypt hashes. A successful login issues an HS256
// access token and a longer lived refresh token, each with a random token id.
// Logging out or refreshing records that id in the revoked_tokens table, and
// Verify rejects any token whose id is listed there.
//
// Admin accounts are created from the CLI:
//
//	portfolio-api admin create --email admin@example.com --password '...'
package auth
