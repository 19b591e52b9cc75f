package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Environment(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		wantErr bool
	}{
		{"development", "development", false},
		{"staging", "staging", false},
		{"production", "production", false},
		{"invalid", "qa", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				App:    AppConfig{Environment: tt.env},
				Logger: LoggerConfig{Level: "info"},
				Data:   DataConfig{BasePath: "/tmp/bookhaven"},
			}

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "verbose"},
		Data:   DataConfig{BasePath: "/tmp/bookhaven"},
	}

	err := cfg.Validate()
	assert.ErrorContains(t, err, "invalid log level")
}

func TestValidate_DataPathRequired(t *testing.T) {
	cfg := &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
	}

	err := cfg.Validate()
	assert.ErrorContains(t, err, "data base path")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		fallback string
		expected string
	}{
		{"empty uses default", "", "/srv/data", "/srv/data"},
		{"tilde expansion", "~/books", "", filepath.Join(home, "books")},
		{"absolute untouched", "/var/lib/bookhaven", "", "/var/lib/bookhaven"},
		{"cleans trailing slash", "/var/lib/bookhaven/", "", "/var/lib/bookhaven"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandPath(tt.path, tt.fallback)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, splitOrigins("*"))
	assert.Equal(t,
		[]string{"http://localhost:5173", "http://localhost:5174"},
		splitOrigins("http://localhost:5173, http://localhost:5174"),
	)
	assert.Empty(t, splitOrigins(" , "))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	content := "# comment\nBOOKHAVEN_TEST_KEY=hello\nBOOKHAVEN_QUOTED=\"world\"\n\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Setenv("BOOKHAVEN_TEST_KEY", "") // ensure unset
	os.Unsetenv("BOOKHAVEN_TEST_KEY")
	os.Unsetenv("BOOKHAVEN_QUOTED")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("BOOKHAVEN_TEST_KEY"))
	assert.Equal(t, "world", os.Getenv("BOOKHAVEN_QUOTED"))

	os.Unsetenv("BOOKHAVEN_TEST_KEY")
	os.Unsetenv("BOOKHAVEN_QUOTED")
}

func TestLoadEnvFile_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("BOOKHAVEN_PRESET=file\n"), 0o600))

	t.Setenv("BOOKHAVEN_PRESET", "env")
	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "env", os.Getenv("BOOKHAVEN_PRESET"))
}

func TestLoadEnvFile_BadFormat(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("NOT A PAIR\n"), 0o600))

	err := loadEnvFile(envPath)
	assert.ErrorContains(t, err, "invalid format")
}
