// Package postgres provides PostgreSQL-backed implementations of the
// persistence interfaces defined in internal/store, using the pgx driver
// through database/sql.
package postgres
