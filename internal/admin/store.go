package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProfileNotFound = errors.New("profile not found")

type Profile struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

type TableCount struct {
	Table string
	Rows  int64
}

// dependents lists the tables holding a user's rows, children first.
var dependents = []struct {
	table  string
	column string
}{
	{"user_attempts", "user_id"},
	{"test_results", "user_id"},
	{"email_logs", "user_id"},
	{"subscriptions", "user_id"},
	{"visitors", "user_id"},
	{"profiles", "id"},
}

// Connect opens a pool and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	const op = "admin.Connect"

	connConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse database config: %w", op, err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, connConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create database pool: %w", op, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}
	return pool, nil
}

// Store runs the account maintenance queries against Postgres.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.Query(ctx, "SELECT id, email, created_at FROM profiles ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) findOne(ctx context.Context, query string, arg string) (*Profile, error) {
	var p Profile
	err := s.db.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Email, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (s *Store) FindProfile(ctx context.Context, id string) (*Profile, error) {
	return s.findOne(ctx, "SELECT id, email, created_at FROM profiles WHERE id = $1", id)
}

func (s *Store) FindProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	return s.findOne(ctx, "SELECT id, email, created_at FROM profiles WHERE lower(email) = lower($1)", email)
}

func (s *Store) Counts(ctx context.Context, id string) ([]TableCount, error) {
	out := make([]TableCount, 0, len(dependents))
	for _, d := range dependents {
		var n int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", d.table, d.column)
		if err := s.db.QueryRow(ctx, query, id).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", d.table, err)
		}
		out = append(out, TableCount{Table: d.table, Rows: n})
	}
	return out, nil
}

// Delete removes every row of the user in one transaction, finishing with
// the auth.users entry when that schema is visible to the connection.
func (s *Store) Delete(ctx context.Context, id string, progress io.Writer) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, d := range dependents {
		query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", d.table, d.column)
		tag, err := tx.Exec(ctx, query, id)
		if err != nil {
			return fmt.Errorf("failed to delete from %s: %w", d.table, err)
		}
		fmt.Fprintf(progress, "deleted %d row(s) from %s\n", tag.RowsAffected(), d.table)
	}

	var authUsers *string
	if err := tx.QueryRow(ctx, "SELECT to_regclass('auth.users')::text").Scan(&authUsers); err != nil {
		return fmt.Errorf("failed to probe auth schema: %w", err)
	}
	if authUsers == nil {
		fmt.Fprintln(progress, "auth.users not reachable, skipped")
	} else {
		tag, err := tx.Exec(ctx, "DELETE FROM auth.users WHERE id = $1::uuid", id)
		if err != nil {
			return fmt.Errorf("failed to delete auth user: %w", err)
		}
		fmt.Fprintf(progress, "deleted %d row(s) from auth.users\n", tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
