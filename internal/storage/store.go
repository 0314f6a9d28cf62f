// Package storage anchors metadata to content-addressed storage.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Store is a content-addressed blob store: identical bytes always yield the same id.
type Store interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, id string) ([]byte, error)
	Name() string
}

// ContentID derives the id used by stores that address by digest.
func ContentID(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256-" + hex.EncodeToString(sum[:])
}
