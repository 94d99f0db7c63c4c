// Package pg connects the service to PostgreSQL through pgx/v5.
//
// Connect opens a *pgxpool.Pool from Config with a short retry loop. Migrate
// runs the goose migrations embedded in the binary over the same pool.
// Repositories depend on the Querier interface rather than the pool, and use
// IsNotFoundError and IsDuplicateKeyError to turn driver errors into their own
// domain errors.
package pg
