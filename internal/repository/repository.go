// Package repository declares the storage interfaces consumed by the
// service layer. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/image-describer/internal/model"
)

// UserRepository persists user accounts.
//
// UNIQUENESS CONTRACT:
// Create is the ONLY authoritative uniqueness check. EmailAvailable is a
// purely advisory read for UI purposes — a concurrent request can create
// the email between the check and a later Create. Implementations must
// detect the store's unique-constraint rejection at INSERT time and return
// an error matching apperror.ErrConflict.
type UserRepository interface {
	// Create inserts the user and fills in ID and CreatedAt.
	// Returns an apperror.ErrConflict error if the email is taken.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail returns the user with the given email, or an error
	// matching apperror.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// EmailAvailable reports whether no user currently holds the email.
	// Advisory only — never a reservation.
	EmailAvailable(ctx context.Context, email string) (bool, error)
}
