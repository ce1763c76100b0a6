// Package postgres provides PostgreSQL-backed implementations of the
// content storage interfaces defined in the internal/store package. It
// handles query execution, error mapping, and the translation between
// domain entities and their relational representation.
package postgres
