// Package postgres implements the store interfaces on PostgreSQL through the
// pgx database/sql driver. It also embeds the goose migrations that create
// the schema those stores expect.
package postgres
