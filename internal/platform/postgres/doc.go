// Package postgres implements store.SessionStore on PostgreSQL through the
// pgx database/sql driver. Documents and decks are stored as JSONB; the schema
// is created by embedded goose migrations.
package postgres
