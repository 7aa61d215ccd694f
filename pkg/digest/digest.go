package digest

import (
	"crypto/md5"  // #nosec G501 -- content fingerprint only
	"crypto/sha1" // #nosec G505 -- content fingerprint only
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/spf13/afero"
)

const bufferSize = 64 * 1024 // 64KB buffer

// Digest is the lowercase hex fingerprint of a file's content
type Digest string

// Unreadable is returned when a file could not be opened or read.
// It never equals the digest of an empty input.
const Unreadable Digest = ""

// Algorithm names a supported hash function
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
)

// DefaultAlgorithm is used when no algorithm is configured
const DefaultAlgorithm = MD5

// ParseAlgorithm validates an algorithm name
func ParseAlgorithm(name string) (Algorithm, error) {
	algo := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	if _, err := newHash(algo); err != nil {
		return "", err
	}
	return algo, nil
}

func newHash(algo Algorithm) (hash.Hash, error) {
	switch algo {
	case MD5:
		return md5.New(), nil // #nosec G401
	case SHA1:
		return sha1.New(), nil // #nosec G401
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported algorithm: %q", string(algo))
	}
}

// Empty returns the digest of a zero-byte input
func Empty(algo Algorithm) Digest {
	h, err := newHash(algo)
	if err != nil {
		return Unreadable
	}
	return Digest(hex.EncodeToString(h.Sum(nil)))
}

// Hasher computes file digests. It holds no mutable state and may be
// shared by any number of goroutines.
type Hasher struct {
	fs        afero.Fs
	algorithm Algorithm
}

// NewHasher creates a hasher reading files from fs
func NewHasher(fs afero.Fs, algo Algorithm) (*Hasher, error) {
	if _, err := newHash(algo); err != nil {
		return nil, err
	}
	return &Hasher{fs: fs, algorithm: algo}, nil
}

// Algorithm returns the configured algorithm
func (h *Hasher) Algorithm() Algorithm {
	return h.algorithm
}

// File digests the file at path. On any open or read failure it returns
// Unreadable together with the cause.
func (h *Hasher) File(path string) (d Digest, err error) {
	file, err := h.fs.Open(path)
	if err != nil {
		return Unreadable, fmt.Errorf("open file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			d, err = Unreadable, fmt.Errorf("close file: %w", cerr)
		}
	}()

	return h.Reader(file)
}

// Reader digests everything readable from r
func (h *Hasher) Reader(r io.Reader) (Digest, error) {
	sum, err := newHash(h.algorithm)
	if err != nil {
		return Unreadable, err
	}
	buffer := make([]byte, bufferSize)

	for {
		n, err := r.Read(buffer)
		if n > 0 {
			if _, err := sum.Write(buffer[:n]); err != nil {
				return Unreadable, fmt.Errorf("write to hash: %w", err)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Unreadable, fmt.Errorf("read: %w", err)
		}
	}

	return Digest(hex.EncodeToString(sum.Sum(nil))), nil
}
