// Package secrets loads the upstream API credential for the process.
// The credential is read lazily on first use and cached immutably; concurrent
// early callers share a single in-flight load instead of each reading the
// source themselves.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultKeyEnv is the environment variable holding the API key.
	DefaultKeyEnv = "STATUSGATOR_API_KEY"

	// DefaultKeyFileEnv optionally points at a file containing the key,
	// for mounted-secret deployments.
	DefaultKeyFileEnv = "STATUSGATOR_API_KEY_FILE"
)

// ErrNoAPIKey indicates no usable credential was found in the environment.
var ErrNoAPIKey = errors.New("no API key provided")

// LoaderConfig holds configuration for the credential loader.
type LoaderConfig struct {
	// KeyEnv overrides the key environment variable name.
	KeyEnv string

	// KeyFileEnv overrides the key-file environment variable name.
	KeyFileEnv string

	// Lookup overrides environment access (tests only).
	Lookup func(string) (string, bool)
}

// Loader resolves the process-level API credential.
type Loader struct {
	keyEnv     string
	keyFileEnv string
	lookup     func(string) (string, bool)

	group singleflight.Group

	mu     sync.RWMutex
	key    string
	loaded bool
}

// NewLoader creates a credential loader.
func NewLoader(cfg LoaderConfig) *Loader {
	keyEnv := cfg.KeyEnv
	if keyEnv == "" {
		keyEnv = DefaultKeyEnv
	}
	keyFileEnv := cfg.KeyFileEnv
	if keyFileEnv == "" {
		keyFileEnv = DefaultKeyFileEnv
	}
	lookup := cfg.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Loader{
		keyEnv:     keyEnv,
		keyFileEnv: keyFileEnv,
		lookup:     lookup,
	}
}

// APIKey returns the cached credential, loading it on first call. All
// concurrent first callers await the same load. Returns ErrNoAPIKey when
// neither the key variable nor the key file yields a non-empty value.
func (l *Loader) APIKey(ctx context.Context) (string, error) {
	l.mu.RLock()
	if l.loaded {
		key := l.key
		l.mu.RUnlock()
		if key == "" {
			return "", ErrNoAPIKey
		}
		return key, nil
	}
	l.mu.RUnlock()

	ch := l.group.DoChan("api-key", func() (any, error) {
		key, err := l.load()
		if err != nil {
			return "", err
		}
		l.mu.Lock()
		l.key = key
		l.loaded = true
		l.mu.Unlock()
		return key, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		key := res.Val.(string)
		if key == "" {
			return "", ErrNoAPIKey
		}
		return key, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// load reads the credential from the environment, preferring the direct
// variable over the file indirection.
func (l *Loader) load() (string, error) {
	if v, ok := l.lookup(l.keyEnv); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}

	if path, ok := l.lookup(l.keyFileEnv); ok && path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading API key file: %w", err)
		}
		if key := strings.TrimSpace(string(data)); key != "" {
			return key, nil
		}
	}

	// Cache the absence too: first caller wins, later callers see the
	// same answer until the process restarts.
	return "", nil
}
