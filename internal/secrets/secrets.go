// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the file name is the key and the trimmed
// contents are the value.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// DefaultDir is where the CLI looks for secret files.
const DefaultDir = ".secrets/"

// Recognized key files.
const (
	ClassifierAPIKey = "classifier-api-key"
	GeminiAPIKey     = "gemini-api-key"
	DatabaseURL      = "database-url"
	AWSAccessKey     = "aws-access-key-id"
	AWSSecretKey     = "aws-secret-access-key"
)

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty map. Unreadable files are logged and skipped.
func Load(dir string, log zerolog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			out[name] = v
		}
	}
	return out, nil
}

// Apply fills credential fields of cfg that are still empty from the loaded
// secrets. Values already set through the config file or environment win.
// It returns the keys it applied.
func Apply(cfg *types.Config, s map[string]string) []string {
	var applied []string
	fill := func(dst *string, key string) {
		if *dst != "" {
			return
		}
		if v, ok := s[key]; ok {
			*dst = v
			applied = append(applied, key)
		}
	}
	fill(&cfg.Classifier.APIKey, ClassifierAPIKey)
	fill(&cfg.Enrichment.APIKey, GeminiAPIKey)
	fill(&cfg.Store.DatabaseURL, DatabaseURL)
	fill(&cfg.Upload.AWSAccessKey, AWSAccessKey)
	fill(&cfg.Upload.AWSSecretKey, AWSSecretKey)
	return applied
}
