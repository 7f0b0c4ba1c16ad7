package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetServeFlags(t *testing.T) {
	t.Helper()
	servePort, serveStore, serveConfigPath = 0, "", ""
	t.Cleanup(func() { servePort, serveStore, serveConfigPath = 0, "", "" })
	for _, key := range []string{"PORT", "STORE", "DATABASE_URL", "GOOGLE_CLIENT_ID", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
}

func TestResolveConfig_Layering(t *testing.T) {
	resetServeFlags(t)

	path := filepath.Join(t.TempDir(), "resumed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
store: memory
google_client_id: from-file
cors_allowed_origins: ["http://file.test"]
`), 0o600))
	serveConfigPath = path

	t.Setenv("GOOGLE_CLIENT_ID", "from-env")
	servePort = 7000

	cfg, err := resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port, "flag beats file")
	assert.Equal(t, "from-env", cfg.GoogleClientID, "env beats file")
	assert.Equal(t, config.StoreMemory, cfg.Store, "file beats default")
	assert.Equal(t, []string{"http://file.test"}, cfg.CORSAllowedOrigins)
}

func TestResolveConfig_Defaults(t *testing.T) {
	resetServeFlags(t)
	t.Setenv("GOOGLE_CLIENT_ID", "client")
	t.Setenv("DATABASE_URL", "postgres://localhost/resume")

	cfg, err := resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, config.StorePostgres, cfg.Store)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestResolveConfig_Invalid(t *testing.T) {
	resetServeFlags(t)
	t.Setenv("GOOGLE_CLIENT_ID", "client")

	_, err := resolveConfig()
	require.Error(t, err, "postgres store needs DATABASE_URL")
	assert.Contains(t, err.Error(), "database_url")

	serveConfigPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = resolveConfig()
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	secret := "test-secret-key-for-jwt-signing-minimum-32-bytes"
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	t.Setenv("JWT_ISSUER", "")
	userID := uuid.New()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--user", userID.String(), "--email", "dev@example.com"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })
	require.NoError(t, rootCmd.Execute())

	cfg, err := config.NewJWTConfig()
	require.NoError(t, err)
	claims, err := server.NewJWTService(cfg).ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "dev@example.com", claims.Email)
}

func TestTokenCommand_BadUser(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-jwt-signing-minimum-32-bytes")
	rootCmd.SetArgs([]string{"token", "--user", "not-a-uuid"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil); rootCmd.SetErr(nil) })
	assert.Error(t, rootCmd.Execute())
}
