package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotConfigured is returned by NewVerifier when no key material is given.
var ErrNotConfigured = errors.New("auth: no verification key configured")

// VerifierConfig holds token verification settings.
type VerifierConfig struct {
	// Secret is an HMAC-SHA256 key.
	Secret string

	// PublicKeyPEM is a PEM-encoded RSA public key. It takes precedence over Secret.
	PublicKeyPEM string

	// Issuer, when set, must match the iss claim.
	Issuer string
}

// Verifier validates bearer tokens. It never issues them.
type Verifier struct {
	secret    []byte
	publicKey *rsa.PublicKey
	parser    *jwt.Parser
}

// NewVerifier creates a Verifier. RS256 is used when a public key is given,
// HS256 otherwise.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	v := &Verifier{}
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	switch {
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
		}
		v.publicKey = key
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	case cfg.Secret != "":
		v.secret = []byte(cfg.Secret)
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	default:
		return nil, ErrNotConfigured
	}

	v.parser = jwt.NewParser(opts...)
	return v, nil
}

// Verify parses and validates a token string.
func (v *Verifier) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		if v.publicKey != nil {
			return v.publicKey, nil
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// LoadKeyFromFile reads a PEM-encoded key from a file path.
func LoadKeyFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	return string(data), nil
}
