package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rghdrizzle/ockam/pkg/identity"
)

const repoLogPrefix = "db:repository"

// uniqueViolation is the Postgres SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// Repository is an identity.Store backed by Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// OpenStore connects to databaseURL, applies the migrations found in
// migrationPath (embedded ones when empty) and returns the repository with a
// close function. Failures are returned as *identity.StateError.
func OpenStore(ctx context.Context, databaseURL, migrationPath string) (*Repository, func(), error) {
	pool, err := NewPool(ctx, databaseURL)
	if err != nil {
		return nil, nil, &identity.StateError{Op: "connect state database", Err: err}
	}
	migrations, err := LoadMigrationFiles(migrationPath)
	if err != nil {
		pool.Close()
		return nil, nil, &identity.StateError{Op: "load migrations", Err: err}
	}
	if err := RunMigrations(ctx, pool, migrations); err != nil {
		pool.Close()
		return nil, nil, &identity.StateError{Op: "migrate state database", Err: err}
	}
	return NewRepository(pool), pool.Close, nil
}

const identityColumns = `name, identifier, public_key, is_default, created_at`

func (r *Repository) Get(ctx context.Context, name string) (*identity.Identity, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE name = $1`, name)
	ident, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, identity.ErrNotFound)
	}
	return ident, err
}

func (r *Repository) List(ctx context.Context) ([]identity.Identity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+identityColumns+` FROM identities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s - List failed: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var out []identity.Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s - List failed: %w", repoLogPrefix, err)
	}
	return out, nil
}

func (r *Repository) Default(ctx context.Context) (*identity.Identity, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE is_default LIMIT 1`)
	ident, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, identity.ErrNoDefault
	}
	return ident, err
}

func (r *Repository) Create(ctx context.Context, ident *identity.Identity) error {
	slog.Debug(fmt.Sprintf("%s - Create name=%s", repoLogPrefix, ident.Name))

	tag, err := r.pool.Exec(ctx,
		`INSERT INTO identities (name, identifier, public_key, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO NOTHING`,
		ident.Name, ident.Identifier, ident.PublicKey, ident.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s - Create failed: %w", repoLogPrefix, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", ident.Name, identity.ErrIdentityExists)
	}
	return nil
}

func (r *Repository) SetDefault(ctx context.Context, name string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s - SetDefault begin failed: %w", repoLogPrefix, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE identities SET is_default = FALSE WHERE is_default AND name <> $1`, name); err != nil {
		return fmt.Errorf("%s - SetDefault clear failed: %w", repoLogPrefix, err)
	}
	tag, err := tx.Exec(ctx, `UPDATE identities SET is_default = TRUE WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("%s - SetDefault failed: %w", repoLogPrefix, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", name, identity.ErrNotFound)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s - SetDefault commit failed: %w", repoLogPrefix, err)
	}
	return nil
}

// SetDefaultIfAbsent marks name as default unless another row already is.
// Concurrent claims are settled by the identities_single_default index.
func (r *Repository) SetDefaultIfAbsent(ctx context.Context, name string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE identities SET is_default = TRUE
		 WHERE name = $1 AND NOT EXISTS (SELECT 1 FROM identities WHERE is_default)`, name)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s - SetDefaultIfAbsent failed: %w", repoLogPrefix, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	if _, err := r.Get(ctx, name); err != nil {
		return false, err
	}
	return false, nil
}

func (r *Repository) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM identities WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("%s - Delete failed: %w", repoLogPrefix, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", name, identity.ErrNotFound)
	}
	return nil
}

func scanIdentity(row pgx.Row) (*identity.Identity, error) {
	var ident identity.Identity
	err := row.Scan(&ident.Name, &ident.Identifier, &ident.PublicKey, &ident.IsDefault, &ident.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%s - scan identity failed: %w", repoLogPrefix, err)
	}
	ident.CreatedAt = ident.CreatedAt.UTC()
	return &ident, nil
}

var _ identity.Store = (*Repository)(nil)
