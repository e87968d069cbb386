// Package testutils holds helpers shared by tests across packages.
//
// Production code must not import it.
package testutils
