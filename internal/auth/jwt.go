package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. Login tokens last a day; invite tokens give the invitee
// two days to complete registration.
const (
	LoginTokenTTL  = 24 * time.Hour
	InviteTokenTTL = 48 * time.Hour
)

// Claims represents the JWT claims for a login token.
type Claims struct {
	PrincipalID string `json:"id"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// InviteClaims represents the JWT claims for a staff invite token.
type InviteClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager handles JWT token generation and validation.
type TokenManager struct {
	secret []byte
}

// NewTokenManager creates a token manager signing with the given secret.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// IssueLogin creates a signed login token carrying the principal id and role.
func (m *TokenManager) IssueLogin(principalID, role string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		PrincipalID: principalID,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(LoginTokenTTL)),
			Issuer:    "backoffice",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign login token: %w", err)
	}

	return signedToken, nil
}

// IssueInvite creates a signed invite token carrying only the invitee email.
func (m *TokenManager) IssueInvite(email string) (string, error) {
	now := time.Now().UTC()
	claims := &InviteClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(InviteTokenTTL)),
			Issuer:    "backoffice",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign invite token: %w", err)
	}

	return signedToken, nil
}

// Verify parses and validates a login token, returning the claims.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse login token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid login token claims")
	}

	return claims, nil
}

// VerifyInvite parses and validates an invite token, returning the invitee email.
func (m *TokenManager) VerifyInvite(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &InviteClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse invite token: %w", err)
	}

	claims, ok := token.Claims.(*InviteClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid invite token claims")
	}

	return claims.Email, nil
}
