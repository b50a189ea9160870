// Package secrets reads credential-like settings either from the environment
// or from a mounted file named by the <KEY>_FILE variable.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// FileSuffix is appended to a key to name the variable holding a file path
const FileSuffix = "_FILE"

// Get returns the value for key. <key>_FILE wins over key, and def is used
// when neither is set. Only an unreadable file is an error.
func Get(key, def string) (string, error) {
	if path := os.Getenv(key + FileSuffix); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s%s: %w", key, FileSuffix, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	return def, nil
}
