// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/avolokitin/authgate/internal/errs"
)

// Parameters written by HashPassword. Verification reads the actual
// parameters from the stored header, so these can be raised later without
// invalidating hashes already in the store.
const (
	writeDigest     = "sha256"
	writeIterations = 26000
	saltBytes       = 16
	keyBytes        = 32
)

// digests maps the wire-format digest tag to its constructor.
var digests = map[string]func() hash.Hash{
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
}

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashPassword hashes password into the wire format
// pbkdf2_<digest>$<iterations>$<base64 salt>$<base64 key>.
//
// The base64 text of the random salt bytes is itself the PBKDF2 salt input.
// Hashes issued by Django and by the migrated PHP store are built the same
// way, and byte compatibility with them depends on it.
func HashPassword(password string) (string, error) {
	raw, err := RandBytes(saltBytes)
	if err != nil {
		return "", err
	}
	salt := base64.StdEncoding.EncodeToString(raw)
	key := pbkdf2.Key([]byte(password), []byte(salt), writeIterations, keyBytes, digests[writeDigest])
	return fmt.Sprintf("pbkdf2_%s$%d$%s$%s",
		writeDigest, writeIterations, salt, base64.StdEncoding.EncodeToString(key)), nil
}

// VerifyPassword reports whether password matches the stored wire-format
// hash. The digest and iteration count come from the stored header, not from
// the write-side constants. A stored value that does not parse returns
// ErrMalformedHash rather than false: it is corrupt data, not a bad login.
// On a clean mismatch the result is false with no indication of which field
// differed.
func VerifyPassword(password, stored string) (bool, error) {
	h, err := parseHash(stored)
	if err != nil {
		return false, err
	}
	got := pbkdf2.Key([]byte(password), []byte(h.salt), h.iterations, len(h.key), h.digest)
	return subtle.ConstantTimeCompare(got, h.key) == 1, nil
}

type storedHash struct {
	digest     func() hash.Hash
	iterations int
	salt       string
	key        []byte
}

// parseHash splits a stored hash into its four $-separated fields, strictly.
func parseHash(stored string) (storedHash, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 {
		return storedHash{}, fmt.Errorf("%w: want 4 fields, got %d", errs.ErrMalformedHash, len(parts))
	}

	tag, ok := strings.CutPrefix(parts[0], "pbkdf2_")
	if !ok {
		return storedHash{}, fmt.Errorf("%w: unsupported scheme %q", errs.ErrMalformedHash, parts[0])
	}
	digest, ok := digests[tag]
	if !ok {
		return storedHash{}, fmt.Errorf("%w: unknown digest %q", errs.ErrMalformedHash, tag)
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return storedHash{}, fmt.Errorf("%w: bad iteration count %q", errs.ErrMalformedHash, parts[1])
	}

	if parts[2] == "" {
		return storedHash{}, fmt.Errorf("%w: empty salt", errs.ErrMalformedHash)
	}

	key, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(key) == 0 {
		return storedHash{}, fmt.Errorf("%w: undecodable derived key", errs.ErrMalformedHash)
	}

	return storedHash{digest: digest, iterations: iterations, salt: parts[2], key: key}, nil
}
