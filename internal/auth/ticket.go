package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ResetTicketTTL bounds how long a password-reset ticket stays usable.
const ResetTicketTTL = 15 * time.Minute

// NewResetTicket generates a password-reset ticket: the plaintext token that
// goes into the email link, the SHA-256 hash stored on the account, and the
// expiry timestamp. Only the hash is ever persisted.
func NewResetTicket() (token, tokenHash string, expiresAt time.Time, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate reset token: %w", err)
	}
	token = hex.EncodeToString(buf)
	return token, HashResetToken(token), time.Now().UTC().Add(ResetTicketTTL), nil
}

// HashResetToken returns the hex SHA-256 digest of a reset token, the form
// the ticket is stored and looked up in.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
