package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestParseFlags_DotEnvSetsDefaultURL(t *testing.T) {
	unsetEnv(t, "FOOD_ANALYZER_URL")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FOOD_ANALYZER_URL=http://analyzer.test:9000\n"), 0o600))

	opts, err := parseFlags([]string{"plato.jpg"}, envFile)
	require.NoError(t, err)
	assert.Equal(t, "http://analyzer.test:9000", opts.apiURL)
	assert.Equal(t, "plato.jpg", opts.imagePath)
}

func TestParseFlags(t *testing.T) {
	unsetEnv(t, "FOOD_ANALYZER_URL")
	missing := filepath.Join(t.TempDir(), "missing.env")

	opts, err := parseFlags(nil, missing)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", opts.apiURL)
	assert.Equal(t, 10, opts.limit)
	assert.Equal(t, 2*time.Minute, opts.timeout)
	assert.Empty(t, opts.imagePath)

	opts, err = parseFlags([]string{"-api", "http://flag.test", "-history", "-limit", "3"}, missing)
	require.NoError(t, err)
	assert.Equal(t, "http://flag.test", opts.apiURL)
	assert.True(t, opts.history)
	assert.Equal(t, 3, opts.limit)

	_, err = parseFlags([]string{"-limit", "x"}, missing)
	assert.Error(t, err)
}
