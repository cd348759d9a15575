// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files. Each
// file is one secret: the file name is the key and the trimmed contents are
// the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/scholar-search/internal/logger"
)

// DefaultDir is where the CLI looks for secret files.
const DefaultDir = ".secrets"

// SemanticScholarAPIKey is the file holding the Semantic Scholar API key.
const SemanticScholarAPIKey = "semantic-scholar-api-key"

// Load reads all files in dir and returns a map of file name to trimmed
// contents. A missing directory is not an error and yields an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, log logger.Logger) (map[string]string, error) {
	if log == nil {
		log = logger.NewNop()
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
			log.Warn("could not read secret", logger.String("name", name), logger.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	if len(secrets) > 0 {
		log.Debug("loaded secrets", logger.Strings("keys", Keys(secrets)))
	}
	return secrets, nil
}

// Keys returns the secret names in sorted order.
func Keys(secrets map[string]string) []string {
	keys := make([]string, 0, len(secrets))
	for k := range secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
