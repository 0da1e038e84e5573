package bootstrap

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/duogate/internal/data/cryptoutil"
)

// CreateEncryptor creates the at-rest encryptor for stored provider configuration.
// An empty key is tolerated only in development, where a noop encryptor is used.
// Unencrypted values written that way stay readable only in development.
//
//nolint:ireturn // Returning interface is intentional for encryptor abstraction
func CreateEncryptor(key string, isDev bool, logger *slog.Logger) (cryptoutil.Encryptor, error) {
	if key == "" {
		if !isDev {
			return nil, errors.New("data encryption key is required")
		}
		if logger != nil {
			logger.Warn("data encryption key is empty, using noop encryptor")
		}
		return &cryptoutil.NoopEncryptor{}, nil
	}

	enc, err := newAESGCM(key)
	if err != nil {
		return nil, fmt.Errorf("create data encryptor: %w", err)
	}
	if isDev {
		enc.AcceptNoopColumns()
		if logger != nil {
			logger.Warn("development mode reads unencrypted provider columns")
		}
	}
	return enc, nil
}

// CreateStateSealer creates the sealer used to protect state tokens.
// In development an empty key yields a random per-process key, so tokens do
// not survive a restart.
func CreateStateSealer(key string, isDev bool, logger *slog.Logger) (*cryptoutil.AESGCMEncryptor, error) {
	if key != "" {
		return newAESGCM(key)
	}
	if !isDev {
		return nil, errors.New("state token key is required")
	}
	if logger != nil {
		logger.Warn("state token key is empty, using an ephemeral key")
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate ephemeral state key: %w", err)
	}
	return cryptoutil.NewAESGCMEncryptor(raw)
}

func newAESGCM(key string) (*cryptoutil.AESGCMEncryptor, error) {
	keyBytes, err := cryptoutil.KeyFromString(key)
	if err != nil {
		return nil, err
	}
	return cryptoutil.NewAESGCMEncryptor(keyBytes)
}
