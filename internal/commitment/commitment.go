// Package commitment implements the digest scheme binding hidden game facts.
//
// A commitment is keccak256 over the big-endian encoding of each field,
// followed by a 32-byte salt and, when the commitment must be bound to a
// single caller, the caller's identity bytes. The digest reveals nothing
// about the committed fact but pins it: once revealed, anyone can recompute
// the hash and compare.
package commitment

import (
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// DigestSize is the width of a commitment digest in bytes.
const DigestSize = 32

// SaltSize is the required salt width in bytes.
const SaltSize = 32

// Digest is a fixed-width commitment hash.
type Digest [DigestSize]byte

// Salt is the blinding value mixed into every commitment.
type Salt [SaltSize]byte

// Commit computes the digest over ordered big-endian fields, the salt, and
// an optional binder identity. An empty binder contributes no bytes.
func Commit(fields []uint32, salt Salt, binder string) Digest {
	h := sha3.NewLegacyKeccak256()
	var buf [4]byte
	for _, field := range fields {
		binary.BigEndian.PutUint32(buf[:], field)
		h.Write(buf[:])
	}
	h.Write(salt[:])
	if binder != "" {
		h.Write([]byte(binder))
	}

	var digest Digest
	copy(digest[:], h.Sum(nil))
	return digest
}

// Equal reports exact byte equality of two digests in constant time.
func Equal(a, b Digest) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// String returns the lowercase hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest decodes a hex-encoded digest, with or without a 0x prefix.
func ParseDigest(value string) (Digest, error) {
	return decode32[Digest](value, "digest")
}

// ParseSalt decodes a hex-encoded salt, with or without a 0x prefix.
func ParseSalt(value string) (Salt, error) {
	return decode32[Salt](value, "salt")
}

func decode32[T ~[32]byte](value, kind string) (T, error) {
	var out T
	value = strings.TrimPrefix(strings.TrimSpace(value), "0x")
	raw, err := hex.DecodeString(value)
	if err != nil {
		return out, fmt.Errorf("decode %s: %w", kind, err)
	}
	if len(raw) != len(out) {
		return out, fmt.Errorf("%s must be %d bytes, got %d", kind, len(out), len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
