package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	goCred "github.com/MrEthical07/goCred"
	"github.com/google/uuid"
)

// DBTX is the subset of database/sql used by Store.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewUser is the input to [Store.Create].
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

// Store is a PostgreSQL-backed [goCred.UserProvider].
type Store struct {
	db DBTX
}

var _ goCred.UserProvider = (*Store)(nil)

func New(db DBTX) *Store {
	return &Store{db: db}
}

// Create inserts a user under a fresh UUID. Username and email are stored lower-cased.
func (s *Store) Create(ctx context.Context, in NewUser) (goCred.UserRecord, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" {
		return goCred.UserRecord{}, errors.New("username required")
	}

	query :=
		`INSERT INTO users (id, username, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 `

	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, query, id, username, nullable(email), in.PasswordHash); err != nil {
		return goCred.UserRecord{}, fmt.Errorf("db error: %w", err)
	}

	return goCred.UserRecord{
		UserID:       id,
		Username:     username,
		Email:        email,
		PasswordHash: in.PasswordHash,
	}, nil
}

// GetUserByIdentifier looks identifier up case-insensitively in the column named by kind.
func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string, kind goCred.IdentifierKind) (goCred.UserRecord, error) {
	column := "username"
	if kind == goCred.IdentifierEmail {
		column = "email"
	}

	query :=
		`SELECT id, username, email, password_hash FROM users
		 WHERE lower(` + column + `) = $1
		 `

	return s.scanOne(ctx, query, strings.ToLower(strings.TrimSpace(identifier)))
}

// GetUserByID loads a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id string) (goCred.UserRecord, error) {
	query :=
		`SELECT id, username, email, password_hash FROM users
		 WHERE id = $1
		 `

	return s.scanOne(ctx, query, id)
}

// UpdatePasswordHash replaces the stored credential of a single user. It returns
// [goCred.ErrUserNotFound] when no row was updated.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	query :=
		`UPDATE users SET password_hash = $2, updated_at = now()
		 WHERE id = $1
		 `

	res, err := s.db.ExecContext(ctx, query, userID, newHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return goCred.ErrUserNotFound
	}
	return nil
}

// ForEach calls fn for every user ordered by id. It stops at the first error.
func (s *Store) ForEach(ctx context.Context, fn func(goCred.UserRecord) error) error {
	query :=
		`SELECT id, username, email, password_hash FROM users
		 ORDER BY id
		 `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Store) scanOne(ctx context.Context, query string, arg any) (goCred.UserRecord, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return goCred.UserRecord{}, goCred.ErrUserNotFound
		}
		return goCred.UserRecord{}, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (goCred.UserRecord, error) {
	var (
		u     goCred.UserRecord
		email sql.NullString
	)
	if err := row.Scan(&u.UserID, &u.Username, &email, &u.PasswordHash); err != nil {
		return goCred.UserRecord{}, err
	}
	u.Email = email.String
	return u, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
