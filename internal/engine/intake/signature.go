package intake

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrInvalidSignature covers every way the signature check can fail. The
// caller gets no distinction between a missing header and a bad digest.
var ErrInvalidSignature = errors.New("invalid webhook signature")

const signaturePrefix = "sha256="

// Sign computes the hex HMAC-SHA256 of payload under secret.
func Sign(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature checks an X-Hub-Signature-256 header value against the raw
// request body. The digest is computed over the exact bytes received; the
// body must not be re-serialized before this runs. Comparison is constant
// time.
func VerifySignature(raw []byte, header, secret string) error {
	if !strings.HasPrefix(header, signaturePrefix) {
		return ErrInvalidSignature
	}

	theirs, err := hex.DecodeString(strings.TrimSpace(strings.TrimPrefix(header, signaturePrefix)))
	if err != nil {
		return ErrInvalidSignature
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(raw)

	if !hmac.Equal(h.Sum(nil), theirs) {
		return ErrInvalidSignature
	}
	return nil
}
