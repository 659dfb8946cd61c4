package models

import "time"

// UploadSession tracks one in-flight chunked upload. Sessions are keyed by
// asset id and live in the session store, not the database; the accumulation
// file on disk is the byte-level state, the session is the bookkeeping
// around it (next expected chunk, declared size, creation time for sweeps).
type UploadSession struct {
	AssetID      string    `json:"asset_id"`
	FileName     string    `json:"file_name"`
	MimeType     string    `json:"mime_type"`
	DeclaredSize int64     `json:"declared_size"`
	Category     Category  `json:"category"`
	NextChunk    int       `json:"next_chunk"`
	ReceivedSize int64     `json:"received_size"`
	CreatedAt    time.Time `json:"created_at"`
}

// PresignRequest is the registration call payload
type PresignRequest struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
	Category string `json:"category"`
}

// PresignResponse carries the allocated asset id plus the destination the
// upload will land at. CDNUrl is a promise: the finalized artifact must be
// reachable there, so the naming scheme behind it can never change.
type PresignResponse struct {
	AssetID    string `json:"assetId"`
	UploadURL  string `json:"uploadUrl"`
	StorageKey string `json:"storageKey"`
	CDNUrl     string `json:"cdnUrl"`
}

// ChunkResult is returned by the chunk receiver. On intermediate chunks only
// Success/Complete/ChunkIndex are set; the final chunk fills URL and Size.
type ChunkResult struct {
	Success    bool   `json:"success"`
	Complete   bool   `json:"complete"`
	ChunkIndex int    `json:"chunkIndex"`
	URL        string `json:"url,omitempty"`
	Size       int64  `json:"size,omitempty"`
}

// DirectUploadResult is returned by the single-PUT upload path
type DirectUploadResult struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
	Size    int64  `json:"size"`
	URL     string `json:"url"`
}

// FinalizedEvent is published to the queue when an asset is materialized,
// signalling registry consumers that the artifact is addressable
type FinalizedEvent struct {
	AssetID   string    `json:"asset_id"`
	URL       string    `json:"url"`
	SizeBytes int64     `json:"size_bytes"`
	Finalized time.Time `json:"finalized"`
}
