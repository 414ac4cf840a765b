package ocel

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefix for log content digests. Version suffix enables future
// canonical-form migration without colliding with older digests.
const domainLog = "ocelkit/log/v1"

// Digest computes a content digest of a log over its canonical form.
// Two logs that are Equal produce the same digest regardless of which
// codec they came from or what map iteration order produced them.
func Digest(l *Log) (string, error) {
	data, err := canonicalLog(l)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(domainLog))
	h.Write([]byte{0x00}) // separator prevents domain/data boundary ambiguity
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
