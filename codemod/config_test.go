package codemod

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/keyfold/internal/transform"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, c Config)
		wantErr bool
	}{
		{
			name:    "empty file keeps defaults",
			content: "",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, DefaultConfig(), c)
			},
		},
		{
			name: "package and ignore",
			content: `package: react-query
ignore:
  - vendor
`,
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "react-query", c.Package)
				assert.Equal(t, []string{"vendor"}, c.Ignore)
				assert.Equal(t, DefaultConfig().Extensions, c.Extensions)
				assert.Equal(t, transform.DefaultPasses(), c.Passes)
			},
		},
		{
			name: "custom passes",
			content: `passes:
  - keyName: queryKey
    hooks: [useSuspenseQuery]
    queryClientMethods: [invalidateQueries]
`,
			check: func(t *testing.T, c Config) {
				require.Len(t, c.Passes, 1)
				assert.Equal(t, transform.QueryKey, c.Passes[0].KeyName)
				assert.Equal(t, []string{"useSuspenseQuery"}, c.Passes[0].Hooks)
				assert.Equal(t, []string{"invalidateQueries"}, c.Passes[0].QueryClientMethods)
			},
		},
		{
			name: "unknown key name",
			content: `passes:
  - keyName: filters
`,
			wantErr: true,
		},
		{
			name:    "unsupported extension",
			content: "extensions: [.vue]\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			content: "passes: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), DefaultConfigFile)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			c, err := LoadConfig(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)

	c, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestConfigWriteRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)

	require.NoError(t, DefaultConfig().Write(path))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}
