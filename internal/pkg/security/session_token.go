package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims carries the Slack identity inside the session cookie.
type SessionClaims struct {
	SlackID string `json:"slack_id"`
	TeamID  string `json:"team_id"`
	Email   string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a session token for the given Slack identity.
func GenerateSessionToken(slackID, teamID, email string, ttl time.Duration, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("secret is required for token generation")
	}
	now := time.Now()
	claims := SessionClaims{
		SlackID: slackID,
		TeamID:  teamID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifySessionToken validates a session token and returns its claims.
func VerifySessionToken(token, secret string) (*SessionClaims, error) {
	if secret == "" {
		return nil, errors.New("secret is required for token verification")
	}
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.SlackID == "" || claims.TeamID == "" {
		return nil, errors.New("token missing slack identity")
	}
	return claims, nil
}
