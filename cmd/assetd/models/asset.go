package models

import (
	"time"

	"github.com/google/uuid"
)

// Asset is the registry row for a finished (or registered, not-yet-finished)
// artifact. The row is created at registration time, before any byte flows,
// and its size is patched once the finalizer knows the real byte count.
// The upload subsystem never deletes these rows.
type Asset struct {
	ID           uuid.UUID `json:"id"`
	StorageKey   string    `json:"storage_key"`
	OriginalName string    `json:"original_name"`
	Mime         string    `json:"mime"`
	SizeBytes    int64     `json:"size_bytes"`
	Kind         string    `json:"kind"`
	Public       bool      `json:"public"`
	CDNUrl       string    `json:"cdn_url"`
	CreatedAt    time.Time `json:"created_at"`
}
