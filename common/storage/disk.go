package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/creatorhub/assetd/common/logger"
)

// Sentinel errors surfaced to the service layer
var (
	// ErrNotFound means no finished artifact exists for the asset
	ErrNotFound = errors.New("asset file not found")
	// ErrAmbiguousIndex means an asset directory holds more than one index.* file
	ErrAmbiguousIndex = errors.New("asset directory contains multiple index files")
	// ErrNoTempArtifact means finalize was called before any chunk arrived
	ErrNoTempArtifact = errors.New("temp artifact missing")
	// ErrBadAssetID means the asset id is unusable as a path segment
	ErrBadAssetID = errors.New("invalid asset id")
)

// Store implements the on-disk layout shared by every upload path:
// finished assets at {root}/{assetID}/index.{ext}, staging files at
// {tempDir}/{assetID} with no extension. The staging directory is never
// served publicly.
type Store struct {
	root    string
	tempDir string
	log     *logger.Logger
}

// NewStore creates a disk store. Directories are created lazily on first
// write so that registration allocates nothing on disk.
func NewStore(root, tempDir string, log *logger.Logger) *Store {
	return &Store{
		root:    root,
		tempDir: tempDir,
		log:     log,
	}
}

// Root returns the finished-asset root directory
func (s *Store) Root() string {
	return s.root
}

// TempPath returns the accumulation file path for an asset.
// The name is derived from the asset id alone.
func (s *Store) TempPath(assetID string) string {
	return filepath.Join(s.tempDir, assetID)
}

// AssetDir returns the directory a finished asset lives in
func (s *Store) AssetDir(assetID string) string {
	return filepath.Join(s.root, assetID)
}

// AppendChunk appends one chunk's bytes to the asset's accumulation file,
// creating the staging directory and file on first use. Returns the number
// of bytes appended.
func (s *Store) AppendChunk(assetID string, payload io.Reader) (int64, error) {
	if err := checkAssetID(assetID); err != nil {
		return 0, err
	}

	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return 0, fmt.Errorf("create staging dir: %w", err)
	}

	f, err := os.OpenFile(s.TempPath(assetID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open accumulation file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, payload)
	if err != nil {
		return n, fmt.Errorf("append chunk: %w", err)
	}

	return n, nil
}

// TempSize returns the current byte size of the accumulation file
func (s *Store) TempSize(assetID string) (int64, error) {
	fi, err := os.Stat(s.TempPath(assetID))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNoTempArtifact
		}
		return 0, fmt.Errorf("stat accumulation file: %w", err)
	}
	return fi.Size(), nil
}

// RemoveTemp deletes an asset's accumulation file. Missing files are not
// an error so the orphan sweeper can call this unconditionally.
func (s *Store) RemoveTemp(assetID string) error {
	if err := checkAssetID(assetID); err != nil {
		return err
	}
	if err := os.Remove(s.TempPath(assetID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove accumulation file: %w", err)
	}
	return nil
}

// Materialize moves a complete accumulation file to its permanent location
// {root}/{assetID}/index.{ext} and returns the finished size. Rename is
// attempted first; when the staging dir and asset root are on different
// volumes it falls back to copy+fsync+delete. Success means the bytes are
// durably at the destination and the temp artifact is gone.
func (s *Store) Materialize(assetID, ext string) (int64, error) {
	if err := checkAssetID(assetID); err != nil {
		return 0, err
	}

	tmp := s.TempPath(assetID)
	fi, err := os.Stat(tmp)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNoTempArtifact
		}
		return 0, fmt.Errorf("stat accumulation file: %w", err)
	}
	size := fi.Size()

	dir := s.AssetDir(assetID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create asset dir: %w", err)
	}

	dst := filepath.Join(dir, "index."+ext)

	if err := os.Rename(tmp, dst); err == nil {
		if err := syncDir(dir); err != nil {
			s.log.Warn("asset dir fsync failed", "asset_id", assetID, "error", err)
		}
		return size, nil
	}

	// Cross-volume rename fails with EXDEV; fall back to a durable copy.
	if err := copyFileSync(tmp, dst); err != nil {
		return 0, fmt.Errorf("copy accumulation file: %w", err)
	}
	if err := os.Remove(tmp); err != nil {
		s.log.Warn("temp artifact cleanup failed", "asset_id", assetID, "error", err)
	}

	return size, nil
}

// WriteAsset writes a complete payload directly to {root}/{assetID}/{fileName}
// in a single blocking write. Used by the non-chunked upload path; fileName is
// expected to follow the index.{ext} convention.
func (s *Store) WriteAsset(assetID, fileName string, payload io.Reader) (int64, error) {
	if err := checkAssetID(assetID); err != nil {
		return 0, err
	}
	if fileName != filepath.Base(fileName) || fileName == "." || fileName == "" {
		return 0, fmt.Errorf("%w: bad file name %q", ErrBadAssetID, fileName)
	}

	dir := s.AssetDir(assetID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create asset dir: %w", err)
	}

	// A rewrite under a different extension must not leave the old index
	// behind; the directory may hold at most one index.* entry
	if strings.HasPrefix(fileName, "index.") {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return 0, fmt.Errorf("read asset dir: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || entry.Name() == fileName || !strings.HasPrefix(entry.Name(), "index.") {
				continue
			}
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return 0, fmt.Errorf("remove stale index file: %w", err)
			}
		}
	}

	f, err := os.OpenFile(filepath.Join(dir, fileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create asset file: %w", err)
	}

	n, err := io.Copy(f, payload)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("write asset file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return n, fmt.Errorf("sync asset file: %w", err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("close asset file: %w", err)
	}

	return n, nil
}

// FindIndexFile locates the one index.* file for an asset. Readers only know
// the asset id, so resolution scans the directory instead of consulting a
// metadata store. Exactly one index.* entry must exist.
func (s *Store) FindIndexFile(assetID string) (string, error) {
	if err := checkAssetID(assetID); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(s.AssetDir(assetID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read asset dir: %w", err)
	}

	var found string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "index.") {
			continue
		}
		if found != "" {
			return "", ErrAmbiguousIndex
		}
		found = entry.Name()
	}

	if found == "" {
		return "", ErrNotFound
	}

	return filepath.Join(s.AssetDir(assetID), found), nil
}

// checkAssetID rejects ids that could escape the storage root
func checkAssetID(assetID string) error {
	if assetID == "" || assetID != filepath.Base(assetID) || assetID == "." || assetID == ".." {
		return fmt.Errorf("%w: %q", ErrBadAssetID, assetID)
	}
	return nil
}

// copyFileSync copies src to dst and fsyncs the destination before returning
func copyFileSync(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// syncDir flushes directory metadata so a rename survives a crash
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
