// Package pgstore implements goCred.UserProvider on PostgreSQL.
//
// Open connects through the pgx database/sql driver and applies the embedded goose
// migrations. New wraps any DBTX, so a *sql.Tx can be used to scope writes.
package pgstore
