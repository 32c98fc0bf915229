package submissions

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintLength is the number of hex characters retained from the
// content digest. 128 bits keeps collisions out of practical reach
// while staying short enough for log lines and URLs.
const fingerprintLength = 32

// Fingerprint derives the stable content identity for a document:
// lowercase hex of the SHA-256 digest, truncated. Identical bytes
// always produce the same fingerprint regardless of filename.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
