package checkout

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Signer produces and verifies the tamper-evident checkout signature.
// The signature is a deterministic HMAC over (prebooking_id,
// total_amount, issued_at) under a server-held secret; it is opaque to
// and unforgeable by the client.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) Sign(prebookingID string, totalCents int64, issuedAt time.Time) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d|%d", prebookingID, totalCents, issuedAt.Unix())
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Signer) Verify(prebookingID string, totalCents int64, issuedAt time.Time, signature string) bool {
	expected := s.Sign(prebookingID, totalCents, issuedAt)
	return hmac.Equal([]byte(expected), []byte(signature))
}
