// Package sqlite provides SQLite implementations of the internal/store
// interfaces on top of the pure-Go modernc.org/sqlite driver. It backs
// single-node deployments and the in-process test suites.
package sqlite
