package feed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecksumProvider struct {
	checksum string
	err      error
}

func (s *stubChecksumProvider) GetChecksum() (string, error) {
	return s.checksum, s.err
}

func writeFeedFile(t *testing.T, checksum string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "malicious_ips.txt")
	require.NoError(t, os.WriteFile(path, []byte("192.0.2.1\n"), 0644))
	if checksum != "" {
		require.NoError(t, os.WriteFile(path+checksumSuffix, []byte(checksum), 0644))
	}
	return path
}

func TestIsFileChanged(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		changed, err := IsFileChanged(&stubChecksumProvider{checksum: "abc"}, filepath.Join(t.TempDir(), "absent.txt"))
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("missing checksum file", func(t *testing.T) {
		changed, err := IsFileChanged(&stubChecksumProvider{checksum: "abc"}, writeFeedFile(t, ""))
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("checksum matches", func(t *testing.T) {
		changed, err := IsFileChanged(&stubChecksumProvider{checksum: "abc"}, writeFeedFile(t, "abc"))
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("checksum differs", func(t *testing.T) {
		changed, err := IsFileChanged(&stubChecksumProvider{checksum: "def"}, writeFeedFile(t, "abc"))
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("provider error", func(t *testing.T) {
		_, err := IsFileChanged(&stubChecksumProvider{err: errors.New("broken")}, writeFeedFile(t, "abc"))
		assert.Error(t, err)
	})
}

func TestWriteChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "malicious_ips.txt")

	require.NoError(t, WriteChecksum(&stubChecksumProvider{checksum: "0cc175b9c0f1b6a831c399e269772661"}, path))

	content, err := os.ReadFile(path + checksumSuffix)
	require.NoError(t, err)
	assert.Equal(t, "0cc175b9c0f1b6a831c399e269772661", string(content))

	assert.Error(t, WriteChecksum(&stubChecksumProvider{err: errors.New("broken")}, path))
}
