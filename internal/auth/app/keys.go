package app

import (
	"fmt"
	"log/slog"

	"github.com/fernlight/passage/pkg/jwtx"
)

// InitAuthKeys creates a new KeyManager with the configured algorithm.
//
// Keys are ephemeral: generated on startup and held only in memory, so all
// outstanding tokens become invalid when the service restarts. Refresh
// tokens survive in the database and let clients recover a session without
// re-entering credentials.
//
// Supported algorithms: RS256, ES256, EdDSA
//
// By default, generates 3 signing keys with random identifiers for improved
// availability and load distribution. Use AUTH_NUM_KEYS to customize.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	logger.Info("initializing ephemeral key manager",
		"algorithm", cfg.Algorithm,
		"num_keys", cfg.NumKeys,
	)

	keyManager, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: cfg.Algorithm,
		Issuer:    cfg.Issuer,
		Audience:  nil, // Empty audience list means no audience validation (tokens have dynamic audience = client ID)
		RSABits:   cfg.RSABits,
		NumKeys:   cfg.NumKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
	}

	logger.Info("generated ephemeral signing keys",
		"algorithm", keyManager.Algorithm(),
		"num_keys", keyManager.NumSigners(),
		"issuer", cfg.Issuer,
	)

	return keyManager, nil
}
