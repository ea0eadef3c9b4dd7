package hashutil

import (
	"testing"

	"github.com/arthur-debert/hostsub/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	sum := ChecksumString("127.0.0.1 localhost\n")
	assert.Contains(t, sum, "sha256:")
	assert.Len(t, sum, 71) // "sha256:" + 64 hex chars
	assert.Equal(t, sum, Checksum([]byte("127.0.0.1 localhost\n")))
	assert.NotEqual(t, sum, ChecksumString("127.0.0.1 localhost"))

	// Empty content has the well-known SHA256 of nothing
	assert.Equal(t, "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ChecksumString(""))
}

func TestFileChecksum(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/etc", 0755))
	require.NoError(t, fsys.WriteFile("/etc/hosts", []byte("10.0.0.1 box\n"), 0644))

	sum, err := FileChecksum(fsys, "/etc/hosts")
	require.NoError(t, err)
	assert.Equal(t, ChecksumString("10.0.0.1 box\n"), sum)

	_, err = FileChecksum(fsys, "/non/existent/file")
	assert.Error(t, err)
}
