// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, so the same services run on PostgreSQL
// in production and on SQLite in tests and single-node deployments.
package store
