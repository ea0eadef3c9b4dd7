package hashutil

import (
	"crypto/sha256"
	"fmt"

	"github.com/arthur-debert/hostsub/pkg/types"
)

// Checksum returns the SHA256 checksum of content as "sha256:<hex>".
func Checksum(content []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(content))
}

// ChecksumString is Checksum for string content.
func ChecksumString(content string) string {
	return Checksum([]byte(content))
}

// FileChecksum reads path through fsys and returns its checksum.
func FileChecksum(fsys types.FS, path string) (string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Checksum(data), nil
}
