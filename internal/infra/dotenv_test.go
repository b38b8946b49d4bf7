package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadDotEnv_NoFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	files, err := LoadDotEnv()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLoadDotEnv_LocalFirstWithoutOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeEnvFile(t, dir, ".env.local", "ODESSARP_DOTENV_TEST=local\n")
	writeEnvFile(t, dir, ".env", "ODESSARP_DOTENV_TEST=base\nODESSARP_DOTENV_KEEP=file\n")
	t.Setenv("ODESSARP_DOTENV_KEEP", "process")
	t.Cleanup(func() { os.Unsetenv("ODESSARP_DOTENV_TEST") })

	files, err := LoadDotEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{".env.local", ".env"}, files)
	assert.Equal(t, "local", os.Getenv("ODESSARP_DOTENV_TEST"))
	assert.Equal(t, "process", os.Getenv("ODESSARP_DOTENV_KEEP"))
}

func TestLoadDotEnv_MalformedFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeEnvFile(t, dir, ".env", "BAD-KEY=1\n")

	files, err := LoadDotEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
	assert.Nil(t, files)
}
