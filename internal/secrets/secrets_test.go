package secrets_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswatch/statuswatch/internal/secrets"
)

func staticEnv(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestAPIKey_FromEnv(t *testing.T) {
	loader := secrets.NewLoader(secrets.LoaderConfig{
		Lookup: staticEnv(map[string]string{
			secrets.DefaultKeyEnv: "  sg_live_abc  ",
		}),
	})

	key, err := loader.APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sg_live_abc", key, "whitespace is trimmed")
}

func TestAPIKey_EnvTakesPrecedenceOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("sg_from_file"), 0o600))

	loader := secrets.NewLoader(secrets.LoaderConfig{
		Lookup: staticEnv(map[string]string{
			secrets.DefaultKeyEnv:     "sg_from_env",
			secrets.DefaultKeyFileEnv: path,
		}),
	})

	key, err := loader.APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sg_from_env", key)
}

func TestAPIKey_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("sg_from_file\n"), 0o600))

	loader := secrets.NewLoader(secrets.LoaderConfig{
		Lookup: staticEnv(map[string]string{
			secrets.DefaultKeyFileEnv: path,
		}),
	})

	key, err := loader.APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sg_from_file", key)
}

func TestAPIKey_MissingIsErrNoAPIKey(t *testing.T) {
	loader := secrets.NewLoader(secrets.LoaderConfig{
		Lookup: staticEnv(nil),
	})

	_, err := loader.APIKey(context.Background())
	assert.ErrorIs(t, err, secrets.ErrNoAPIKey)
}

func TestAPIKey_AbsenceIsCached(t *testing.T) {
	var lookups atomic.Int32
	loader := secrets.NewLoader(secrets.LoaderConfig{
		Lookup: func(string) (string, bool) {
			lookups.Add(1)
			return "", false
		},
	})

	for range 3 {
		_, err := loader.APIKey(context.Background())
		assert.ErrorIs(t, err, secrets.ErrNoAPIKey)
	}
	// Two lookups per load (key env, then file env), one load total.
	assert.Equal(t, int32(2), lookups.Load())
}

func TestAPIKey_ConcurrentCallersShareOneLoad(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})

	loader := secrets.NewLoader(secrets.LoaderConfig{
		Lookup: func(name string) (string, bool) {
			if name == secrets.DefaultKeyEnv {
				loads.Add(1)
				<-release
				return "sg_shared", true
			}
			return "", false
		},
	})

	const callers = 8
	keys := make([]string, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, err := loader.APIKey(context.Background())
			require.NoError(t, err)
			keys[i] = key
		}()
	}

	// Give all callers a chance to queue behind the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load(), "concurrent callers must share one load")
	for _, key := range keys {
		assert.Equal(t, "sg_shared", key)
	}
}

func TestAPIKey_ContextCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	loader := secrets.NewLoader(secrets.LoaderConfig{
		Lookup: func(string) (string, bool) {
			close(started)
			<-release
			return "", false
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := loader.APIKey(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
