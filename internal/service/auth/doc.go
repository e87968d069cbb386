// Package auth verifies the bearer tokens that identify API callers.
package auth
