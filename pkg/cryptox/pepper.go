package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Argon2id parameters for newly encoded hashes.
const (
	memory      = 19 * 1024 // KiB (19 MiB)
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	pepperOnce sync.Once
	pepper     string
	pepperFile = "pepper"
)

// SetPepperPath overrides where the pepper file is read from or written to.
// Call before the first hash or verify.
func SetPepperPath(file string) {
	pepperFile = file
}

// GetPepper returns the process-wide pepper, loading or generating it on
// first use. Failure to obtain a pepper is a startup-time fatal.
func GetPepper() string {
	pepperOnce.Do(func() {
		p, err := loadOrGeneratePepper()
		if err != nil {
			slog.Error("failed to load or generate pepper", slog.Any("err", err))
			os.Exit(1)
		}
		pepper = p
	})
	return pepper
}

func loadOrGeneratePepper() (string, error) {
	pepperFile = filepath.Clean(pepperFile)
	if err := os.MkdirAll(filepath.Dir(pepperFile), 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(pepperFile); os.IsNotExist(err) {
		buf := make([]byte, keyLength)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		p := base64.RawURLEncoding.EncodeToString(buf)
		if err := os.WriteFile(pepperFile, []byte(p), 0600); err != nil {
			return "", err
		}
		return p, nil
	}

	data, err := os.ReadFile(pepperFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
