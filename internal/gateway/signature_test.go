package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func expectedSig(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerify_ValidSignature(t *testing.T) {
	v := NewSignatureVerifier("s3cret")
	sig := expectedSig("s3cret", "order_1", "pay_1")

	assert.True(t, v.Verify("order_1", "pay_1", sig))
}

func TestVerify_InvalidSignature(t *testing.T) {
	v := NewSignatureVerifier("s3cret")

	assert.False(t, v.Verify("order_1", "pay_1", "deadbeef"))
}

func TestVerify_WrongSecret(t *testing.T) {
	v := NewSignatureVerifier("s3cret")
	sig := expectedSig("other-secret", "order_1", "pay_1")

	assert.False(t, v.Verify("order_1", "pay_1", sig))
}

func TestVerify_SwappedIDs(t *testing.T) {
	v := NewSignatureVerifier("s3cret")
	sig := expectedSig("s3cret", "order_1", "pay_1")

	assert.False(t, v.Verify("pay_1", "order_1", sig))
}

func TestVerify_EmptySignature(t *testing.T) {
	v := NewSignatureVerifier("s3cret")

	assert.False(t, v.Verify("order_1", "pay_1", ""))
}

func TestVerify_TamperedPaymentID(t *testing.T) {
	v := NewSignatureVerifier("s3cret")
	sig := expectedSig("s3cret", "order_1", "pay_1")

	assert.False(t, v.Verify("order_1", "pay_2", sig))
}
