package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv hides variables of the host environment from the test.
// Viper treats empty variables as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "diabetes.h5", config.Model.Path)
	assert.Equal(t, "scaler.pkl", config.Model.Scaler)
	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, ":8080", config.Server.Address())
	assert.Equal(t, 5*time.Second, config.Server.RequestTimeout)
	assert.Equal(t, "info", config.Logger.Level)
	assert.Empty(t, config.Logger.File)
	assert.Empty(t, config.Messages.Rules)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_PATH", "/models/diabetes.json")
	t.Setenv("SCALER_PATH", "/models/scaler.json")
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "250ms")
	t.Setenv("LOG_LEVEL", "DEBUG")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/models/diabetes.json", config.Model.Path)
	assert.Equal(t, "/models/scaler.json", config.Model.Scaler)
	assert.Equal(t, ":9090", config.Server.Address())
	assert.Equal(t, 250*time.Millisecond, config.Server.RequestTimeout)
	assert.Equal(t, "DEBUG", config.Logger.Level)
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
logger:
  level: warn
  file: /var/log/diabetes/app.log
server:
  port: "7000"
  read_timeout: 1s
model:
  path: model.json
  scaler: scaler.json
messages:
  rules: messages.yaml
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Logger.Level)
	assert.Equal(t, "/var/log/diabetes/app.log", config.Logger.File)
	assert.Equal(t, "7000", config.Server.Port)
	assert.Equal(t, time.Second, config.Server.ReadTimeout)
	assert.Equal(t, "model.json", config.Model.Path)
	assert.Equal(t, "messages.yaml", config.Messages.Rules)
}

func TestLoadConfig_EnvironmentBeatsFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9191")
	path := writeConfig(t, "server:\n  port: \"7000\"\n")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9191", config.Server.Port)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "http")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestLoggerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  LoggerConfig
		wantErr bool
	}{
		{name: "info", config: LoggerConfig{Level: "info"}},
		{name: "mixed case", config: LoggerConfig{Level: "Warning"}},
		{name: "empty", config: LoggerConfig{}, wantErr: true},
		{name: "unknown", config: LoggerConfig{Level: "trace"}, wantErr: true},
		{name: "negative size", config: LoggerConfig{Level: "info", MaxSize: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServerConfig_Validate(t *testing.T) {
	valid := ServerConfig{Port: "8080", ReadTimeout: time.Second, WriteTimeout: time.Second, RequestTimeout: time.Second}
	assert.NoError(t, valid.Validate())

	outOfRange := valid
	outOfRange.Port = "70000"
	assert.Error(t, outOfRange.Validate())

	noTimeout := valid
	noTimeout.RequestTimeout = 0
	assert.Error(t, noTimeout.Validate())
}

func TestModelConfig_Validate(t *testing.T) {
	assert.Error(t, (&ModelConfig{Scaler: "scaler.json"}).Validate())
	assert.Error(t, (&ModelConfig{Path: "model.json"}).Validate())
	assert.NoError(t, (&ModelConfig{Path: "model.json", Scaler: "scaler.json"}).Validate())

	remote := ModelConfig{Scaler: "scaler.json", URL: "http://tf-serving:8501/v1/models/diabetes:predict", Timeout: time.Second}
	assert.NoError(t, remote.Validate())

	noTimeout := remote
	noTimeout.Timeout = 0
	assert.Error(t, noTimeout.Validate())

	relative := remote
	relative.URL = "tf-serving/predict"
	assert.Error(t, relative.Validate())
}

func TestLoadConfig_ModelURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_URL", "http://localhost:8501/v1/models/diabetes:predict")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8501/v1/models/diabetes:predict", config.Model.URL)
	assert.Equal(t, 2*time.Second, config.Model.Timeout)
}
