package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/sakif/image-describer/internal/apperror"
	"github.com/sakif/image-describer/internal/describe"
)

// fakeImageStore records what was saved and can be told to fail.
type fakeImageStore struct {
	savedName    string
	savedContent string
	saveErr      error
}

func (f *fakeImageStore) Save(ctx context.Context, originalName string, content io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	f.savedName = "1700000000000-" + originalName
	f.savedContent = string(data)
	return f.savedName, nil
}

// countingDescriber wraps the static describer and counts invocations, so
// tests can assert the dispatcher is NOT consulted on ingest failure.
type countingDescriber struct {
	inner *describe.Static
	calls int
}

func (c *countingDescriber) Describe(level describe.Level) string {
	c.calls++
	return c.inner.Describe(level)
}

func newTestImageService(store *fakeImageStore, d describe.Describer) *ImageService {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewImageService(store, d, logger)
}

func TestDescribeUpload_SavesAndDescribes(t *testing.T) {
	store := &fakeImageStore{}
	svc := newTestImageService(store, describe.NewStatic())

	img, err := svc.DescribeUpload(context.Background(), 7, "cat.jpg", strings.NewReader("jpeg-bytes"), "comprehensive")
	if err != nil {
		t.Fatalf("DescribeUpload() error = %v", err)
	}

	if store.savedContent != "jpeg-bytes" {
		t.Errorf("saved content = %q, want %q", store.savedContent, "jpeg-bytes")
	}
	if img.StoredName != store.savedName {
		t.Errorf("StoredName = %q, want %q", img.StoredName, store.savedName)
	}
	if img.DescriptionLevel != "comprehensive" {
		t.Errorf("DescriptionLevel = %q, want %q", img.DescriptionLevel, "comprehensive")
	}
	if want := describe.NewStatic().Describe(describe.LevelComprehensive); img.Description != want {
		t.Errorf("Description = %q, want comprehensive tier", img.Description)
	}
}

func TestDescribeUpload_UnknownLevelFallsBackToBasic(t *testing.T) {
	store := &fakeImageStore{}
	svc := newTestImageService(store, describe.NewStatic())

	img, err := svc.DescribeUpload(context.Background(), 7, "cat.jpg", strings.NewReader("x"), "unknown-level")
	if err != nil {
		t.Fatalf("DescribeUpload() error = %v", err)
	}

	// The response carries the SANITIZED level, not the client's typo
	if img.DescriptionLevel != "basic" {
		t.Errorf("DescriptionLevel = %q, want %q", img.DescriptionLevel, "basic")
	}
	if want := describe.NewStatic().Describe(describe.LevelBasic); img.Description != want {
		t.Errorf("Description = %q, want basic tier", img.Description)
	}
}

func TestDescribeUpload_SaveFailureSkipsDescriber(t *testing.T) {
	store := &fakeImageStore{saveErr: errors.New("disk full")}
	counter := &countingDescriber{inner: describe.NewStatic()}
	svc := newTestImageService(store, counter)

	_, err := svc.DescribeUpload(context.Background(), 7, "cat.jpg", strings.NewReader("x"), "basic")
	if err == nil {
		t.Fatal("DescribeUpload() should fail when the store fails")
	}
	if !errors.Is(err, apperror.ErrDependency) {
		t.Errorf("error = %v, want apperror.ErrDependency", err)
	}
	if counter.calls != 0 {
		t.Errorf("describer ran %d times after a failed save, want 0", counter.calls)
	}
}
