package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecretsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := SecretsDir
	SecretsDir = dir
	t.Cleanup(func() { SecretsDir = old })
	return dir
}

func TestReadSecret(t *testing.T) {
	dir := withSecretsDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("  s3cret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("\n"), 0o600))

	v, err := ReadSecret("jwt_secret")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	_, err = ReadSecret("empty")
	assert.Error(t, err)

	_, err = ReadSecret("missing")
	assert.Error(t, err)
}

func TestReadSecretOrEnv(t *testing.T) {
	dir := withSecretsDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pepper"), []byte("from-file"), 0o600))

	v, err := ReadSecretOrEnv("pepper", "from-env")
	require.NoError(t, err)
	assert.Equal(t, "from-file", v)

	v, err = ReadSecretOrEnv("missing", "from-env")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = ReadSecretOrEnv("missing", "")
	assert.Error(t, err)
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 10, ParseLimit("", 10, 100))
	assert.Equal(t, 10, ParseLimit("abc", 10, 100))
	assert.Equal(t, 1, ParseLimit("0", 10, 100))
	assert.Equal(t, 1, ParseLimit("-5", 10, 100))
	assert.Equal(t, 100, ParseLimit("500", 10, 100))
	assert.Equal(t, 42, ParseLimit("42", 10, 100))
}
