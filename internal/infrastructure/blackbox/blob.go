// Package blackbox persists every command invocation: a content-addressable
// blob store for the captured output streams and a SQLite index of the
// invocations themselves.
package blackbox

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// ErrBlobNotFound is returned by Get for an unknown identity.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is git-like content-addressable storage: SHA-256 identity,
// zstd-compressed files under {dir}/{hash[0:2]}/{hash[2:]}.
type BlobStore struct {
	dir string
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewBlobStore initializes the store under dir, creating it if needed.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("init zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd decoder: %w", err)
	}
	return &BlobStore{dir: dir, enc: enc, dec: dec}, nil
}

// Put stores content and returns its hex identity. Empty content is never
// stored; the empty identity is returned instead. Storing already-present
// content is a no-op.
func (s *BlobStore) Put(content []byte) (string, error) {
	if len(content) == 0 {
		return "", nil
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])
	path := s.blobPath(hash)

	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create blob subdirectory: %w", err)
	}

	// Write to a temporary sibling and rename into place so concurrent
	// writers of the same content cannot leave a torn file.
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+hash+".tmp*")
	if err != nil {
		return "", fmt.Errorf("create blob temp file: %w", err)
	}
	compressed := s.enc.EncodeAll(content, nil)
	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close blob temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename blob into place: %w", err)
	}
	return hash, nil
}

// Get loads and decompresses the blob with the given identity.
func (s *BlobStore) Get(hash string) ([]byte, error) {
	compressed, err := os.ReadFile(s.blobPath(hash))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, hash)
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	content, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress blob %s: %w", hash, err)
	}
	return content, nil
}

// The two-character prefix directory spreads files across the filesystem.
func (s *BlobStore) blobPath(hash string) string {
	if len(hash) < 3 {
		return filepath.Join(s.dir, hash)
	}
	return filepath.Join(s.dir, hash[:2], hash[2:])
}
