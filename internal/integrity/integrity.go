// Package integrity verifies that a query file is unchanged since it was
// approved. A trusted step records hex(SHA-256(text || salt)) beside each
// query; Verify recomputes it with the same salt before the query may run.
package integrity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Outcome is the result of checking one query against its stored hash.
type Outcome string

const (
	Valid    Outcome = "valid"
	Missing  Outcome = "missing"
	Mismatch Outcome = "mismatch"
)

var (
	ErrMissing  = errors.New("integrity record missing")
	ErrMismatch = errors.New("integrity checksum mismatch")
)

// Err maps an outcome to its sentinel error, nil for Valid.
func (o Outcome) Err() error {
	switch o {
	case Missing:
		return ErrMissing
	case Mismatch:
		return ErrMismatch
	default:
		return nil
	}
}

// Enabled reports whether a salt turns integrity checking on. An empty salt
// disables it.
func Enabled(salt string) bool {
	return salt != ""
}

// Digest returns hex(SHA-256(text || salt)). The salt is appended to the raw
// text without any separator.
func Digest(text, salt string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte(salt))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify checks text against the stored hash. With an empty salt every query
// is Valid. A nil stored hash is Missing; any byte difference is Mismatch.
func Verify(text string, stored *string, salt string) Outcome {
	if !Enabled(salt) {
		return Valid
	}
	if stored == nil {
		return Missing
	}
	want := Digest(text, salt)
	if subtle.ConstantTimeCompare([]byte(want), []byte(*stored)) != 1 {
		return Mismatch
	}
	return Valid
}

// ReadRecord loads a hash record verbatim. A file that does not exist yields
// (nil, nil).
func ReadRecord(path string) (*string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read hash record: %w", err)
	}
	s := string(b)
	return &s, nil
}

// WriteRecord stores a digest with no trailing newline.
func WriteRecord(path, digest string) error {
	if err := os.WriteFile(path, []byte(digest), 0o644); err != nil {
		return fmt.Errorf("write hash record: %w", err)
	}
	return nil
}
