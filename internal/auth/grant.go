package auth

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/zkgames/internal/game"
	apperrors "github.com/louisbranch/zkgames/internal/platform/errors"
)

// grantEnv holds raw env values before post-parse validation.
type grantEnv struct {
	Issuer    string `env:"ZKGAMES_GRANT_ISSUER"`
	Audience  string `env:"ZKGAMES_GRANT_AUDIENCE"`
	PublicKey string `env:"ZKGAMES_GRANT_PUBLIC_KEY"`
}

// GrantConfig defines how grants are verified.
type GrantConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// grantClaims is the internal claims type used for JWT parsing.
type grantClaims struct {
	jwt.RegisteredClaims
	Role      string `json:"role,omitempty"`
	SessionID uint32 `json:"session_id,omitempty"`
	Stake     int64  `json:"stake,omitempty"`
}

// roleAdmin is the role claim value required for administrator operations.
const roleAdmin = "admin"

// LoadGrantConfigFromEnv reads grant verification configuration.
func LoadGrantConfigFromEnv(now func() time.Time) (GrantConfig, error) {
	var raw grantEnv
	if err := env.Parse(&raw); err != nil {
		return GrantConfig{}, fmt.Errorf("parse grant env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return GrantConfig{}, fmt.Errorf("ZKGAMES_GRANT_ISSUER is required")
	}
	if audience == "" {
		return GrantConfig{}, fmt.Errorf("ZKGAMES_GRANT_AUDIENCE is required")
	}
	if publicKey == "" {
		return GrantConfig{}, fmt.Errorf("ZKGAMES_GRANT_PUBLIC_KEY is required")
	}
	keyBytes, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return GrantConfig{}, fmt.Errorf("decode grant public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return GrantConfig{}, fmt.Errorf("grant public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return GrantConfig{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// GrantVerifier authorizes callers by verifying signed EdDSA grants.
type GrantVerifier struct {
	cfg GrantConfig
}

// NewGrantVerifier creates a GrantVerifier from a validated config.
func NewGrantVerifier(cfg GrantConfig) (*GrantVerifier, error) {
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return nil, errors.New("grant verifier is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &GrantVerifier{cfg: cfg}, nil
}

// RequireAdmin implements Authorizer.
func (v *GrantVerifier) RequireAdmin(ctx context.Context, credential string) error {
	claims, err := v.parse(credential)
	if err != nil {
		return err
	}
	if claims.Role != roleAdmin {
		return apperrors.WithMetadata(apperrors.CodeUnauthorized, "grant does not carry the admin role",
			map[string]string{"Field": "role"})
	}
	return nil
}

// RequireStake implements Authorizer.
func (v *GrantVerifier) RequireStake(ctx context.Context, credential string, identity game.Identity, sessionID uint32, stake int64) error {
	claims, err := v.parse(credential)
	if err != nil {
		return err
	}
	if claims.Subject != string(identity) {
		return apperrors.WithMetadata(apperrors.CodeUnauthorized, "grant subject mismatch",
			map[string]string{"Field": "subject"})
	}
	if claims.SessionID != sessionID {
		return apperrors.WithMetadata(apperrors.CodeUnauthorized, "grant session mismatch",
			map[string]string{"Field": "session_id"})
	}
	if claims.Stake != stake {
		return apperrors.WithMetadata(apperrors.CodeUnauthorized, "grant stake mismatch",
			map[string]string{"Field": "stake"})
	}
	return nil
}

// parse verifies the grant signature and registered claims.
func (v *GrantVerifier) parse(credential string) (grantClaims, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return grantClaims{}, apperrors.New(apperrors.CodeUnauthorized, "grant is required")
	}

	var parsed grantClaims
	_, err := jwt.ParseWithClaims(credential, &parsed, func(token *jwt.Token) (any, error) {
		return v.cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithAudience(v.cfg.Audience),
		jwt.WithTimeFunc(v.cfg.Now),
	)
	if err != nil {
		return grantClaims{}, apperrors.Wrap(apperrors.CodeUnauthorized, "grant verification failed", err)
	}
	return parsed, nil
}
