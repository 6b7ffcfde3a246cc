package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/sakif/image-describer/internal/apperror"
	"github.com/sakif/image-describer/internal/model"
	"github.com/sakif/image-describer/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new user row and fills in the assigned ID and CreatedAt.
//
// CONFLICT DETECTION AT INSERT TIME — NOT BEFORE:
// We do NOT check availability first. The INSERT itself is the uniqueness
// check: if another user holds the email, SQLite rejects the row with a
// UNIQUE-constraint error and we translate that into apperror.ErrConflict.
// Pre-checking would add a TOCTOU window (another request could insert the
// email between our check and our insert) without removing the need for
// this translation anyway.
//
// DRIVER ERROR CODES:
// modernc.org/sqlite returns a *sqlite.Error carrying SQLite's extended
// result code. SQLITE_CONSTRAINT_UNIQUE (2067) identifies a UNIQUE
// violation specifically — other constraint failures (NOT NULL, CHECK)
// keep propagating as generic storage faults.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email already exists")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	// AUTOINCREMENT assigned the ID inside SQLite — read it back.
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByEmail retrieves a user by email (case-sensitive, as stored).
// Returns an error matching apperror.ErrNotFound if no such user exists.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		email,
	).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}

	return &u, nil
}

// EmailAvailable reports whether the email is currently unclaimed.
//
// ADVISORY ONLY:
// The result can be stale by the time the caller acts on it. This query
// exists so the signup form can give early feedback; Create remains the
// only place uniqueness is actually enforced.
func (db *DB) EmailAvailable(ctx context.Context, email string) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE email = ?`, email,
	).Scan(&one)

	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking email availability: %w", err)
	}
	return false, nil
}

// isUniqueViolation reports whether err is SQLite rejecting a row for
// violating a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	var serr *sqlite3.Error
	return errors.As(err, &serr) && serr.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE
}
