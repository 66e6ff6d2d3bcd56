// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider credentials from a directory of plain-text
// files. Each file in the directory represents one secret: the filename is
// the key name and the file contents (trimmed) are the value.
//
// Filenames are normalized to credential keys, so both BRAVE_API_KEY and
// brave-api-key populate BRAVE_API_KEY.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Key normalizes a secret filename to its credential key: upper case, with
// hyphens and dots replaced by underscores.
func Key(filename string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(filename))
}

// Load reads all files in dir and returns a map of credential key to
// trimmed contents. A missing directory is not an error; Load returns an
// empty map. Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("file", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[Key(name)] = value
		}
	}

	return secrets, nil
}
