package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"INSIGHTIQ_ENV",
	"INSIGHTIQ_LOG_LEVEL",
	"INSIGHTIQ_API_URL",
	"INSIGHTIQ_REQUEST_TIMEOUT",
	"INSIGHTIQ_PAGE_SIZE",
	"INSIGHTIQ_PREVIEW_LIMIT",
	"INSIGHTIQ_TEST_CONFIRM_DELAY",
	"INSIGHTIQ_CONNECT_SUCCESS_DELAY",
	"INSIGHTIQ_SHEET_DISCOVERY",
	"INSIGHTIQ_MAX_FILE_SIZE_MB",
	"INSIGHTIQ_REPORT_DIR",
	"INSIGHTIQ_REPROCESS_CONCURRENCY",
	"INSIGHTIQ_TOKEN",
}

// clearEnv unsets every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnvVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"), "test-version", false)
	require.NoError(t, err)

	assert.Equal(t, "test-version", cfg.Version)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.API.RequestTimeout)
	assert.Equal(t, 100, cfg.API.PageSize)
	assert.Equal(t, 2*time.Second, cfg.UI.TestConfirmDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.UI.ConnectSuccessDelay)
	assert.Equal(t, SheetDiscoveryRemote, cfg.Ingest.SheetDiscovery)
	assert.Equal(t, int64(100*1024*1024), cfg.Ingest.MaxFileSizeBytes())
	assert.Equal(t, 4, cfg.Reprocess.MaxConcurrent)
	assert.Empty(t, cfg.Token)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_MissingRequiredFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"), "v", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
env: "test"
log:
  level: "debug"
api:
  base_url: "https://yaml.example.com/api/v1/"
  page_size: 25
ui:
  test_confirm_delay: 3s
ingest:
  sheet_discovery: "local"
reprocess:
  max_concurrent: 2
`)

	t.Setenv("INSIGHTIQ_ENV", "production")
	t.Setenv("INSIGHTIQ_PAGE_SIZE", "50")
	t.Setenv("INSIGHTIQ_TOKEN", "secret-token")

	cfg, err := LoadFrom(path, "v1", true)
	require.NoError(t, err)

	// env wins
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 50, cfg.API.PageSize)
	assert.Equal(t, "secret-token", cfg.Token)
	assert.False(t, cfg.IsDevelopment())

	// yaml read, trailing slash trimmed
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "https://yaml.example.com/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.UI.TestConfirmDelay)
	assert.Equal(t, SheetDiscoveryLocal, cfg.Ingest.SheetDiscovery)
	assert.Equal(t, 2, cfg.Reprocess.MaxConcurrent)
}

func TestLoad_TokenNotReadFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
token: "should-be-ignored"
`)

	cfg, err := LoadFrom(path, "v", true)
	require.NoError(t, err)
	assert.Empty(t, cfg.Token)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "relative base url",
			yaml:    "api:\n  base_url: \"/api/v1\"\n",
			wantErr: "api.base_url",
		},
		{
			name:    "unknown sheet discovery",
			yaml:    "ingest:\n  sheet_discovery: \"magic\"\n",
			wantErr: "ingest.sheet_discovery",
		},
		{
			name:    "negative concurrency",
			yaml:    "reprocess:\n  max_concurrent: -2\n",
			wantErr: "reprocess.max_concurrent",
		},
		{
			name:    "negative file size",
			yaml:    "ingest:\n  max_file_size_mb: -1\n",
			wantErr: "ingest.max_file_size_mb",
		},
		{
			name:    "file size that overflows bytes",
			yaml:    "ingest:\n  max_file_size_mb: 9000000000000\n",
			wantErr: "ingest.max_file_size_mb",
		},
		{
			name:    "file size just above limit",
			yaml:    "ingest:\n  max_file_size_mb: 1048577\n",
			wantErr: "ingest.max_file_size_mb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := LoadFrom(writeConfig(t, tt.yaml), "v", true)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MaxFileSizeAtLimit(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom(writeConfig(t, "ingest:\n  max_file_size_mb: 1048576\n"), "v", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), cfg.Ingest.MaxFileSizeBytes())
	assert.Positive(t, cfg.Ingest.MaxFileSizeBytes())
}

func TestLoad_ReadsConfigYAMLFromWorkingDir(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("env: \"staging\"\n"), 0644))

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})

	cfg, err := Load("dev")
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Env)
}
