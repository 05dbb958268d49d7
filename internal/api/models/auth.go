package models

// TokenRequest is the body of POST /api/auth/token.
type TokenRequest struct {
	APIKey  string `json:"apiKey"`
	Subject string `json:"subject"`
}

// TokenResponse carries an issued admin bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt Timestamp `json:"expiresAt"`
}
