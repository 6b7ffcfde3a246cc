// Package disk stores uploaded images as plain files in a local directory.
//
// NAMING SCHEME:
// A stored file is named "<unix-milliseconds>-<original filename>", e.g.
// "1756500000000-cat.jpg". The timestamp prefix keeps uploads of the same
// filename from clobbering each other in practice; two uploads landing in
// the SAME millisecond with the SAME name would still collide. That risk
// is accepted rather than hardened against — the stored name is returned
// to the client, which can fetch the file back under /uploads/.
//
// WRITE DISCIPLINE (OR LACK OF IT):
// Save is a single unbuffered stream straight into the final file. There
// is no temp-file-then-rename step, so a write that dies midway leaves a
// partial file under the final name. That matches the upload contract:
// nothing is transactional here, and no cleanup policy exists.
package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store writes images into a single flat directory.
//
// WHY AN INJECTABLE CLOCK?
// The stored name is derived from "now". Tests need a fixed clock to
// assert on exact names; production uses time.Now. A function field is
// the lightest way to inject that — no interface needed for one method.
type Store struct {
	dir string
	now func() time.Time
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("disk: creating upload directory %s: %w", dir, err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// NewWithClock creates a Store with a fixed clock function. Test hook.
func NewWithClock(dir string, now func() time.Time) (*Store, error) {
	s, err := New(dir)
	if err != nil {
		return nil, err
	}
	s.now = now
	return s, nil
}

// Dir returns the directory uploads are stored in. The server uses this
// to mount the /uploads/ static file route over the same directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save streams content into the upload directory and returns the stored name.
//
// The original name is reduced to its base path component first —
// "../../etc/passwd" becomes "passwd" — so a hostile filename can't
// escape the upload directory.
func (s *Store) Save(ctx context.Context, originalName string, content io.Reader) (string, error) {
	// A request that was already cancelled (or timed out upstream)
	// shouldn't start a write it won't wait for.
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("disk: saving %s: %w", originalName, err)
	}

	storedName := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitizeName(originalName))

	f, err := os.Create(filepath.Join(s.dir, storedName))
	if err != nil {
		return "", fmt.Errorf("disk: creating %s: %w", storedName, err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		// The partial file is deliberately left in place — see the
		// package comment on write discipline.
		return "", fmt.Errorf("disk: writing %s: %w", storedName, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("disk: closing %s: %w", storedName, err)
	}

	return storedName, nil
}

// sanitizeName strips any directory components from a client-supplied
// filename and falls back to "upload" for degenerate inputs.
func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}
	return base
}
