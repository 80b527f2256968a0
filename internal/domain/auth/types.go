package auth

import "time"

// Config drives token issuance.
type Config struct {
	Secret          string
	Issuer          string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
}

// IssueRequest names the client a token is minted for. Subject is usually a
// dispatcher, a driver app install or an agent host; Fleet is optional.
type IssueRequest struct {
	Subject string `json:"subject"`
	Fleet   string `json:"fleet,omitempty"`
}

// TokenResponse returns a signed access/refresh pair.
type TokenResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Claims are extracted from the JWT token.
type Claims struct {
	Subject   string
	Fleet     string
	TokenType string
	TokenID   string
	ExpiresAt time.Time
}

// RefreshRequest encapsulates refresh token payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
