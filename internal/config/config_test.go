package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	c := Defaults()

	require.True(t, c.AutoSync)
	require.Equal(t, 2, c.Sync.DebounceSeconds)
	require.Empty(t, c.Remote.DSN)
	require.False(t, c.Auth.SignedIn())
	require.False(t, c.Tracing.Enabled)
	require.Equal(t, "file", c.Tracing.Exporter)
	require.Equal(t, 1.0, c.Tracing.SampleRate)
}

func TestConfig_DBPath(t *testing.T) {
	c := Config{DataDir: "/srv/fitna"}
	require.Equal(t, filepath.Join("/srv/fitna", DBFileName), c.DBPath())
}

func TestSyncConfig_Debounce(t *testing.T) {
	require.Equal(t, 2*time.Second, SyncConfig{}.Debounce())
	require.Equal(t, 5*time.Second, SyncConfig{DebounceSeconds: 5}.Debounce())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"defaults are valid", Defaults(), ""},
		{"zero value is valid", Config{}, ""},
		{
			"relative data dir",
			Config{DataDir: "some/relative/path"},
			"data_dir must be an absolute path",
		},
		{
			"negative debounce",
			Config{Sync: SyncConfig{DebounceSeconds: -1}},
			"debounce_seconds must not be negative",
		},
		{
			"sample rate out of range",
			Config{Tracing: TracingConfig{SampleRate: 1.5}},
			"sample_rate must be between",
		},
		{
			"unknown exporter",
			Config{Tracing: TracingConfig{Exporter: "carrier-pigeon"}},
			"tracing.exporter must be",
		},
		{
			"otlp without endpoint",
			Config{Tracing: TracingConfig{Enabled: true, Exporter: "otlp"}},
			"otlp_endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.config)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestTracingConfig_ToTracing(t *testing.T) {
	tc := TracingConfig{
		Enabled:      true,
		Exporter:     "otlp",
		OTLPEndpoint: "collector:4317",
		SampleRate:   0.5,
	}
	out := tc.ToTracing()

	require.True(t, out.Enabled)
	require.Equal(t, "otlp", out.Exporter)
	require.Equal(t, "collector:4317", out.OTLPEndpoint)
	require.Equal(t, 0.5, out.SampleRate)
	require.Equal(t, "fitna", out.ServiceName)
	require.NotEmpty(t, out.FilePath, "empty file path falls back to the default")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "auto_sync: true")

	// The template must parse as valid YAML.
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Equal(t, true, doc["auto_sync"])
}

func TestSaveAuth_PreservesOtherSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# My tuned setup
auto_sync: false

sync:
  debounce_seconds: 10  # slow disk
`
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))

	require.NoError(t, SaveAuth(path, AuthConfig{UserID: "user-1", Email: "a@b.com"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "# My tuned setup", "comments survive the rewrite")
	require.Contains(t, content, "# slow disk")
	require.Contains(t, content, "user_id: user-1")
	require.Contains(t, content, "email: a@b.com")
	require.True(t, strings.Contains(content, "auto_sync: false"))
}

func TestSaveAuth_ReplacesExistingSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveAuth(path, AuthConfig{UserID: "old-user", Email: "old@b.com"}))
	require.NoError(t, SaveAuth(path, AuthConfig{UserID: "new-user", Email: "new@b.com"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "old-user")
	require.Contains(t, string(data), "new-user")
}

func TestSaveAuth_CreatesFileWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh", "config.yaml")

	require.NoError(t, SaveAuth(path, AuthConfig{UserID: "user-1"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "user_id: user-1")
}

func TestClearAuth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveAuth(path, AuthConfig{UserID: "user-1", Email: "a@b.com"}))

	require.NoError(t, ClearAuth(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "user-1")

	var parsed struct {
		Auth AuthConfig `yaml:"auth"`
	}
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	require.False(t, parsed.Auth.SignedIn())
}
