package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sakif/image-describer/internal/apperror"
	"github.com/sakif/image-describer/internal/model"
)

// newTestDB creates an in-memory SQLite database for testing.
//
// ":memory:" gives every test its own fresh, isolated database that
// disappears when the connection closes — no files to clean up, no state
// leaking between tests. t.Cleanup registers the Close for us.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testUser(email string) *model.User {
	return &model.User{
		Email: email,
		// a real bcrypt hash is not needed at this layer — the repository
		// stores the hash opaquely
		PasswordHash: "$2a$04$fakehashfakehashfakehashfakehash",
	}
}

// =========================================================================
// Create TESTS
// =========================================================================

func TestCreate_AssignsIDAndCreatedAt(t *testing.T) {
	db := newTestDB(t)

	u := testUser("a@x.com")
	if err := db.Create(context.Background(), u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if u.ID == 0 {
		t.Error("Create() did not assign an ID")
	}
	if u.CreatedAt.IsZero() {
		t.Error("Create() did not set CreatedAt")
	}
}

func TestCreate_IDsIncrease(t *testing.T) {
	db := newTestDB(t)

	first := testUser("first@x.com")
	second := testUser("second@x.com")

	if err := db.Create(context.Background(), first); err != nil {
		t.Fatalf("Create(first) error = %v", err)
	}
	if err := db.Create(context.Background(), second); err != nil {
		t.Fatalf("Create(second) error = %v", err)
	}

	if second.ID <= first.ID {
		t.Errorf("second ID %d should be greater than first ID %d", second.ID, first.ID)
	}
}

func TestCreate_DuplicateEmailIsConflict(t *testing.T) {
	db := newTestDB(t)

	if err := db.Create(context.Background(), testUser("dup@x.com")); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	err := db.Create(context.Background(), testUser("dup@x.com"))
	if err == nil {
		t.Fatal("second Create() with same email should fail")
	}
	// The error must be the TYPED conflict, not a generic failure —
	// the API layer depends on this to answer 409 instead of 500.
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want apperror.ErrConflict", err)
	}
}

func TestCreate_EmailIsCaseSensitive(t *testing.T) {
	db := newTestDB(t)

	// Emails are stored case-sensitively; "A@x.com" and "a@x.com" are
	// two different accounts as far as the constraint is concerned.
	if err := db.Create(context.Background(), testUser("case@x.com")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := db.Create(context.Background(), testUser("CASE@x.com")); err != nil {
		t.Errorf("Create() with different case should succeed, got %v", err)
	}
}

// TestCreate_ConcurrentSameEmail exercises the check-then-act race directly:
// two inserts for the same email racing each other must resolve to exactly
// one success and one Conflict, never two successes. The UNIQUE constraint
// is what guarantees this — not any application-level lock.
func TestCreate_ConcurrentSameEmail(t *testing.T) {
	db := newTestDB(t)

	const attempts = 2
	errs := make([]error, attempts)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait() // line both goroutines up before racing
			errs[i] = db.Create(context.Background(), testUser("raced@x.com"))
		}(i)
	}
	start.Done()
	done.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, apperror.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 || conflicts != 1 {
		t.Errorf("got %d successes and %d conflicts, want exactly 1 of each", successes, conflicts)
	}
}

// =========================================================================
// GetByEmail TESTS
// =========================================================================

func TestGetByEmail_Found(t *testing.T) {
	db := newTestDB(t)

	created := testUser("find@x.com")
	if err := db.Create(context.Background(), created); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := db.GetByEmail(context.Background(), "find@x.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %d, want %d", got.ID, created.ID)
	}
	if got.PasswordHash != created.PasswordHash {
		t.Error("PasswordHash not round-tripped")
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByEmail(context.Background(), "nobody@x.com")
	if err == nil {
		t.Fatal("GetByEmail() should fail for an unknown email")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want apperror.ErrNotFound", err)
	}
}

// =========================================================================
// EmailAvailable TESTS
// =========================================================================

func TestEmailAvailable_FlipAfterCreate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	available, err := db.EmailAvailable(ctx, "flip@x.com")
	if err != nil {
		t.Fatalf("EmailAvailable() error = %v", err)
	}
	if !available {
		t.Fatal("email should be available before any user is created")
	}

	if err := db.Create(ctx, testUser("flip@x.com")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	available, err = db.EmailAvailable(ctx, "flip@x.com")
	if err != nil {
		t.Fatalf("EmailAvailable() error = %v", err)
	}
	if available {
		t.Error("email should NOT be available after a user was created with it")
	}
}

func TestEmailAvailable_HasNoSideEffect(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Checking availability is NOT a reservation: a create after the
	// check must still succeed.
	if _, err := db.EmailAvailable(ctx, "advisory@x.com"); err != nil {
		t.Fatalf("EmailAvailable() error = %v", err)
	}
	if err := db.Create(ctx, testUser("advisory@x.com")); err != nil {
		t.Errorf("Create() after availability check error = %v", err)
	}
}
