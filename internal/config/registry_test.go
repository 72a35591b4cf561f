package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryan-gang/smtp-client/internal/config"
)

func TestRegistry_SetLookup(t *testing.T) {
	t.Parallel()

	r := config.NewRegistry(map[config.Key]string{
		config.KeyServer: "smtp.example.com",
		"bogus":          "dropped",
	})

	v, ok := r.Lookup(config.KeyServer)
	assert.True(t, ok)
	assert.Equal(t, "smtp.example.com", v)
	assert.NotContains(t, r.Snapshot(), config.Key("bogus"))

	r.Set(config.KeyPort, "2525")
	v, ok = r.Lookup(config.KeyPort)
	assert.True(t, ok)
	assert.Equal(t, "2525", v)

	r.Set(config.KeyPort, "  ")
	_, ok = r.Lookup(config.KeyPort)
	assert.False(t, ok)

	r.Unset(config.KeyServer)
	_, ok = r.Lookup(config.KeyServer)
	assert.False(t, ok)
}

func TestRegistry_SaveAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	r := config.NewRegistry(map[config.Key]string{
		config.KeyServer:   "smtp.example.com",
		config.KeyPort:     "2525",
		config.KeyTLS:      "false",
		config.KeyUsername: "user",
		config.KeyPassword: "hunter2",
		config.KeyFrom:     "from@example.com",
	})
	require.NoError(t, r.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")
	assert.Contains(t, string(raw), "from_address: from@example.com")

	loaded, err := config.LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, r.Snapshot(), loaded.Snapshot())
}

func TestLoadRegistry_Layers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	system := filepath.Join(dir, "system.yaml")
	user := filepath.Join(dir, "user.yaml")
	require.NoError(t, os.WriteFile(system, []byte("server: relay.internal\nport: 25\ntls: false\n"), 0o600))
	require.NoError(t, os.WriteFile(user, []byte("port: 2525\nfrom_address: me@example.com\n"), 0o600))

	r, err := config.LoadRegistry(system, filepath.Join(dir, "missing.yaml"), user)
	require.NoError(t, err)

	assert.Equal(t, map[config.Key]string{
		config.KeyServer: "relay.internal",
		config.KeyPort:   "2525",
		config.KeyTLS:    "false",
		config.KeyFrom:   "me@example.com",
	}, r.Snapshot())
}

func TestLoadRegistry_PlaintextPassword(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("username: u\npassword: plain\n"), 0o600))

	r, err := config.LoadRegistry(path)
	require.NoError(t, err)
	v, _ := r.Lookup(config.KeyPassword)
	assert.Equal(t, "plain", v)
}

func TestLoadRegistry_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed\n"), 0o600))

	_, err := config.LoadRegistry(path)
	assert.Error(t, err)
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	t.Parallel()

	r := config.NewRegistry(map[config.Key]string{config.KeyServer: "h"})
	resolver := config.NewResolver(r)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := resolver.Resolve(config.Overrides{})
			assert.NoError(t, err)
			assert.Equal(t, "h", conn.Host)
		}()
	}
	wg.Wait()
}

func TestEncryptDecrypt(t *testing.T) {
	t.Parallel()

	sealed, err := config.Encrypt("user", "s3cret")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "s3cret")

	plain, err := config.Decrypt("user", sealed)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", plain)

	_, err = config.Decrypt("someone-else", sealed)
	assert.Error(t, err)

	plain, err = config.Decrypt("user", "not-encrypted")
	require.NoError(t, err)
	assert.Equal(t, "not-encrypted", plain)
}

func TestParseKey(t *testing.T) {
	t.Parallel()

	k, err := config.ParseKey(" FROM_ADDRESS ")
	require.NoError(t, err)
	assert.Equal(t, config.KeyFrom, k)

	_, err = config.ParseKey("hostname")
	assert.Error(t, err)
}
