// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ClassifierAPIKey, "  hf_abc123  \n")
				writeFile(t, dir, GeminiAPIKey, "gm_xyz789")
				writeFile(t, dir, DatabaseURL, "postgres://u:p@localhost/compliance\n")
				return dir
			},
			want: map[string]string{
				ClassifierAPIKey: "hf_abc123",
				GeminiAPIKey:     "gm_xyz789",
				DatabaseURL:      "postgres://u:p@localhost/compliance",
			},
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GeminiAPIKey, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{GeminiAPIKey: "valid-key"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, DatabaseURL, "postgres://real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{DatabaseURL: "postgres://real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	var buf bytes.Buffer
	got, err := Load(dir, zerolog.New(&buf))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"good-key": "value123"}, got)
	assert.Contains(t, buf.String(), "bad-key")
}

func TestApply(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Enrichment.APIKey = "from-env"

	applied := Apply(&cfg, map[string]string{
		ClassifierAPIKey: "hf_file",
		GeminiAPIKey:     "gm_file",
		DatabaseURL:      "postgres://file",
	})

	assert.Equal(t, "hf_file", cfg.Classifier.APIKey)
	assert.Equal(t, "from-env", cfg.Enrichment.APIKey)
	assert.Equal(t, "postgres://file", cfg.Store.DatabaseURL)
	assert.Empty(t, cfg.Upload.AWSAccessKey)
	assert.Equal(t, []string{ClassifierAPIKey, DatabaseURL}, applied)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
