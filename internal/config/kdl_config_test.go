package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Empty(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.ProjectRoot)
	assert.Empty(t, cfg.BuildDir)
	assert.Empty(t, cfg.Exclude)
	assert.False(t, cfg.JSON)
}

func TestParseKDL_Fields(t *testing.T) {
	kdlContent := `
root "/src/proj"
build-dir "/src/proj/build"
exclude "third_party/lib"
exclude "vendor"
json #true
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/src/proj", cfg.ProjectRoot)
	assert.Equal(t, "/src/proj/build", cfg.BuildDir)
	assert.Equal(t, []string{"third_party/lib", "vendor"}, cfg.Exclude)
	assert.True(t, cfg.JSON)
}

func TestParseKDL_MalformedDocument(t *testing.T) {
	_, err := parseKDL("root \"unterminated")
	assert.Error(t, err)
}
