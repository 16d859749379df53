// Package video integrates with the video-call provider: it issues signed
// participant tokens for the call lobby and verifies webhook signatures on
// call-lifecycle events.
package video

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer signs short-lived participant tokens for the video provider.
// Tokens are standard HS256 JWTs keyed by the provider API secret.
type TokenIssuer struct {
	apiKey string
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer for the given provider credentials.
func NewTokenIssuer(apiKey, apiSecret string, ttl time.Duration) (*TokenIssuer, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("video api_key and api_secret are required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{
		apiKey: apiKey,
		secret: []byte(apiSecret),
		ttl:    ttl,
	}, nil
}

// ParticipantClaims are the claims embedded in a participant token.
type ParticipantClaims struct {
	jwt.RegisteredClaims
	APIKey string `json:"api_key"`
	CallID string `json:"call_id"`
}

// IssueParticipantToken signs a token allowing userID to join the call for
// the given meeting. The call ID is the meeting ID.
func (i *TokenIssuer) IssueParticipantToken(meetingID uuid.UUID, userID string) (string, error) {
	now := time.Now()
	claims := ParticipantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		APIKey: i.apiKey,
		CallID: meetingID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign participant token: %w", err)
	}
	return signed, nil
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}
