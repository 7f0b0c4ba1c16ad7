package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
port: 9090
store: memory
google_client_id: client-123
cors_allowed_origins:
  - http://localhost:5173
  - https://resume.example.com
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "client-123", cfg.GoogleClientID)
	assert.Equal(t, []string{"http://localhost:5173", "https://resume.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"port": 8081, "database_url": "postgres://localhost/resume"}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "postgres://localhost/resume", cfg.DatabaseURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeFile(t, "config.yaml", "port: [not, a, number]")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("STORE", "memory")
	t.Setenv("DATABASE_URL", "postgres://db/resume")
	t.Setenv("GOOGLE_CLIENT_ID", "client-env")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg := FromEnv()
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, "postgres://db/resume", cfg.DatabaseURL)
	assert.Equal(t, "client-env", cfg.GoogleClientID)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid postgres",
			cfg:  Config{Port: 8080, Store: StorePostgres, DatabaseURL: "postgres://x", GoogleClientID: "c"},
		},
		{
			name: "valid memory without database",
			cfg:  Config{Port: 8080, Store: StoreMemory, GoogleClientID: "c"},
		},
		{
			name:    "postgres without database",
			cfg:     Config{Port: 8080, Store: StorePostgres, GoogleClientID: "c"},
			wantErr: "database_url",
		},
		{
			name:    "unknown store",
			cfg:     Config{Port: 8080, Store: "mongo", GoogleClientID: "c"},
			wantErr: "unknown store",
		},
		{
			name:    "missing client id",
			cfg:     Config{Port: 8080, Store: StoreMemory},
			wantErr: "google_client_id",
		},
		{
			name:    "port out of range",
			cfg:     Config{Port: 70000, Store: StoreMemory, GoogleClientID: "c"},
			wantErr: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9000, GoogleClientID: "flag-client"}
	defaults := Config{
		Port:               8080,
		Store:              StoreMemory,
		DatabaseURL:        "postgres://file",
		GoogleClientID:     "file-client",
		CORSAllowedOrigins: []string{"http://file.test"},
	}

	merged := cfg.MergeWithDefaults(defaults)
	assert.Equal(t, 9000, merged.Port, "set values win")
	assert.Equal(t, "flag-client", merged.GoogleClientID)
	assert.Equal(t, StoreMemory, merged.Store, "empty values fall back")
	assert.Equal(t, "postgres://file", merged.DatabaseURL)
	assert.Equal(t, []string{"http://file.test"}, merged.CORSAllowedOrigins)
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, 8080, d.Port)
	assert.Equal(t, StorePostgres, d.Store)
	assert.Equal(t, []string{"*"}, d.CORSAllowedOrigins)
}
