// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles query execution and the mapping between domain entities and
// database records. Timestamps are stored as BIGINT milliseconds since the
// Unix epoch so that rows round-trip identically to the SQLite backend.
package postgres
