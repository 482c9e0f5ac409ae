// Package session issues and verifies signed browser session tokens.
//
// It includes:
//   - A typed Claims wrapper carrying the authenticated account name.
//   - A symmetric HS512 implementation for minting and verifying tokens.
package session
