package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// APITokenClaims represents the JWT claims for API authentication tokens
type APITokenClaims struct {
	jwt.RegisteredClaims
	Name           string   `json:"name"`
	RateLimit      uint     `json:"rate_limit"`
	CorsOrigins    []string `json:"cors_origins,omitempty"`
	DomainPatterns []string `json:"domain_patterns,omitempty"`
}

// APITokenInfo holds the validated token information for request handling
type APITokenInfo struct {
	Name           string
	RateLimit      uint
	CorsOrigins    []string
	DomainPatterns []string
	IssuedAt       time.Time
	ExpiresAt      *time.Time
}
