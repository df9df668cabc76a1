package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/recipic-shop/recipic/pkg/jwtx"
)

// InitAuthKeys loads the Ed25519 signing key from cfg.KeyFile, generating
// and persisting a fresh one when the file does not exist yet. The key
// survives restarts, so issued tokens stay verifiable across deploys.
func InitAuthKeys(cfg Config, logger *slog.Logger) (jwtx.Signer, *jwtx.KeySet, error) {
	pemKey, err := os.ReadFile(cfg.KeyFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		pemKey, err = jwtx.GenerateEd25519PEM()
		if err != nil {
			return nil, nil, fmt.Errorf("generate signing key: %w", err)
		}
		if err := os.WriteFile(cfg.KeyFile, pemKey, 0o600); err != nil {
			return nil, nil, fmt.Errorf("persist signing key: %w", err)
		}
		logger.Info("generated new Ed25519 signing key", "path", cfg.KeyFile, "kid", cfg.KeyID)
	case err != nil:
		return nil, nil, fmt.Errorf("read signing key: %w", err)
	default:
		logger.Info("loaded Ed25519 signing key", "path", cfg.KeyFile, "kid", cfg.KeyID)
	}

	signer, err := jwtx.NewSignerEdDSA(cfg.KeyID, pemKey)
	if err != nil {
		return nil, nil, fmt.Errorf("parse signing key: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, fmt.Errorf("register signing key: %w", err)
	}

	return signer, keys, nil
}
