// Package storage declares the byte-stream sink that uploaded images are
// persisted to. The local-disk implementation lives in the disk subpackage;
// the interface leaves room for an object-store implementation later.
package storage

import (
	"context"
	"io"
)

// ImageStore persists an uploaded byte stream under a generated name.
type ImageStore interface {
	// Save streams the content to durable storage and returns the name
	// it was stored under. The name embeds an ingestion-time prefix, so
	// it is unique in practice but NOT guaranteed collision-free for two
	// uploads with identical timestamps and filenames — an accepted risk.
	//
	// The write is a single non-resumable stream: if it fails midway, a
	// partial artifact may be left behind. Nothing is rolled back.
	Save(ctx context.Context, originalName string, content io.Reader) (storedName string, err error)
}
