// Package hashbuilder accumulates bytes into a stable, streaming
// fingerprint. It underlies the artifact hash computation (see
// internal/artifact) and is deliberately dumb: callers decide what order
// and what bytes go in, and the builder's job is only to hash them
// deterministically.
package hashbuilder

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// Builder accumulates bytes into a stable digest. The zero value is not
// usable; construct with New.
type Builder struct {
	h io.Writer
	d interface {
		io.Writer
		Sum(b []byte) []byte
	}
}

// New returns an empty Builder ready for Append calls.
func New() *Builder {
	d := sha256.New()
	return &Builder{h: d, d: d}
}

// AppendBytes feeds raw bytes into the digest.
func (b *Builder) AppendBytes(p []byte) *Builder {
	// A length prefix keeps adjacent Append calls from colliding, e.g.
	// Append("ab") + Append("c") must not hash the same as Append("a") +
	// Append("bc").
	var lenPrefix [8]byte
	putUint64(lenPrefix[:], uint64(len(p)))
	_, _ = b.h.Write(lenPrefix[:])
	_, _ = b.h.Write(p)
	return b
}

// AppendString feeds a string into the digest.
func (b *Builder) AppendString(s string) *Builder {
	return b.AppendBytes([]byte(s))
}

// AppendSortedPairs canonically encodes a set of (key, value) string pairs
// via msgpack, sorting them first by key then value so that the same
// logical map always contributes identical bytes regardless of the
// caller's original ordering or Go's map iteration order.
func (b *Builder) AppendSortedPairs(pairs [][2]string) *Builder {
	sorted := append([][2]string(nil), pairs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})
	encoded, err := msgpack.Marshal(sorted)
	if err != nil {
		// pairs is always a slice of fixed-size string arrays; msgpack
		// cannot fail to encode it.
		panic("hashbuilder: unexpected msgpack encode failure: " + err.Error())
	}
	return b.AppendBytes(encoded)
}

// AppendSortedStrings canonically encodes a sorted string slice.
func (b *Builder) AppendSortedStrings(values []string) *Builder {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	encoded, err := msgpack.Marshal(sorted)
	if err != nil {
		panic("hashbuilder: unexpected msgpack encode failure: " + err.Error())
	}
	return b.AppendBytes(encoded)
}

// AppendPathContents recursively reads every regular file under root in
// sorted, deterministic order and feeds their relative path and contents
// into the digest. If root is a single file, its own contents are used.
func (b *Builder) AppendPathContents(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return b.appendFile(root, filepath.Base(root))
	}

	var relPaths []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPaths = append(relPaths, rel)
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(relPaths)

	for _, rel := range relPaths {
		if err := b.appendFile(filepath.Join(root, rel), rel); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) appendFile(path, relPath string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	b.AppendString(relPath)
	b.AppendBytes(content)
	return nil
}

// Finalize returns the hex-encoded digest of everything appended so far.
// The Builder remains usable afterwards (sha256.Sum does not reset state);
// callers that want a fresh digest should call New again.
func (b *Builder) Finalize() string {
	return hex.EncodeToString(b.d.Sum(nil))
}

func putUint64(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}
