package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureVerifier validates payment capture callbacks against the gateway
// key secret.
type SignatureVerifier struct {
	secret []byte
}

// NewSignatureVerifier creates a verifier for the given key secret.
func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: []byte(secret)}
}

// Verify recomputes the expected signature for the gateway order and payment
// ids and compares it with the supplied one in constant time. The signed
// payload is "<orderID>|<paymentID>" and the signature is the hex digest of
// its HMAC-SHA256.
func (v *SignatureVerifier) Verify(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
