package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestNewAtPath(t *testing.T) {
	c, err := NewAtPath("/tmp/config.yml")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/config.yml", c.GetPath())
	assert.Equal(t, os.FileMode(0o644), c.Permissions.File)
	assert.Equal(t, os.FileMode(0o755), c.Permissions.Directory)
	assert.False(t, c.Debug)
	assert.Empty(t, c.Protected)
	assert.Equal(t, os.TempDir(), c.RecycleBin.GetRecycleBinDirectory())
}

func TestLoad(t *testing.T) {
	t.Run("values from the file override defaults", func(t *testing.T) {
		p := writeConfig(t, `
debug: true
recycle_bin:
  directory: /var/lib/transactfs/bin
permissions:
  file: 0600
protected:
  - "*.lock"
  - /etc/
`)
		c, err := Load(p)
		require.NoError(t, err)

		assert.True(t, c.Debug)
		assert.Equal(t, "/var/lib/transactfs/bin", c.RecycleBin.GetRecycleBinDirectory())
		assert.Equal(t, os.FileMode(0o600), c.Permissions.File)
		assert.Equal(t, os.FileMode(0o755), c.Permissions.Directory)
		assert.Equal(t, []string{"*.lock", "/etc/"}, c.Protected)
		assert.Equal(t, p, c.GetPath())
	})

	t.Run("environment variables are expanded", func(t *testing.T) {
		t.Setenv("TRANSACTFS_TEST_BIN", "/srv/bin")
		p := writeConfig(t, "recycle_bin:\n  directory: ${TRANSACTFS_TEST_BIN}\n")

		c, err := Load(p)
		require.NoError(t, err)
		assert.Equal(t, "/srv/bin", c.RecycleBin.Directory)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "debug: [\n"))
		assert.Error(t, err)
	})
}

func TestGetReturnsCopy(t *testing.T) {
	c, err := NewAtPath("")
	require.NoError(t, err)
	c.Protected = []string{"a"}
	Set(c)
	t.Cleanup(func() { Set(nil) })

	got := Get()
	got.Debug = true
	got.Protected[0] = "b"

	assert.False(t, Get().Debug)
	assert.Equal(t, []string{"a"}, Get().Protected)

	Update(func(c *Configuration) {
		c.Debug = true
	})
	assert.True(t, Get().Debug)
}
