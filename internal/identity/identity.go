// Package identity computes the stable hashes identedit uses to re-find a
// node after its byte offsets have drifted, and to verify a node or file has
// not changed since it was selected.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const hexLen = 16 // 8 bytes of digest, rendered as 16 hex chars

// unitSeparator is the ASCII Unit Separator (0x1F) used to join kind and
// normalized text before hashing, so "ab"+"c" and "a"+"bc" never collide.
const unitSeparator = "\x1f"

// HashText returns a stable, deterministic 16-hex-char digest of s.
func HashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:hexLen]
}

// Normalize collapses line-ending differences for identity purposes only.
// The text used for expected_old_hash and Handle.Text is never normalized;
// this function exists solely to feed Identity so two textually-identical
// nodes differing only by line ending still collide on purpose (per
// spec.md 4.3, such collisions are expected and resolved via span_hint).
func Normalize(text string) string {
	s := strings.ReplaceAll(text, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// Identity computes identity = hash_text(kind + "\u{1F}" + normalize(text)).
func Identity(kind, text string) string {
	return HashText(kind + unitSeparator + Normalize(text))
}

// ExpectedOldHash computes the hash of a node's exact current text,
// unnormalized, used as the apply-time precondition.
func ExpectedOldHash(text string) string {
	return HashText(text)
}

// ExpectedFileHash computes the hash of an entire file's current bytes
// (including BOM if present), used as the file-level apply-time
// precondition.
func ExpectedFileHash(content []byte) string {
	return HashText(string(content))
}
