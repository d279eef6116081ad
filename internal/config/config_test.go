package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/fluxloop/internal/observability"
	"github.com/RMahshie/fluxloop/internal/sensor"
	"github.com/RMahshie/fluxloop/internal/storage"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.True(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, storage.BackendMinio, cfg.Storage.Backend)
	assert.Empty(t, cfg.Catalog.AWGTablePath)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, observability.ExporterStdout, cfg.Tracing.Exporter)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestLoadTracing(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	chdir(t, t.TempDir())
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_EXPORTER", "otlp")
	t.Setenv("OTLP_ENDPOINT", "collector:4317")
	t.Setenv("TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)
	tc := cfg.Tracing.Observability()
	assert.True(t, tc.Enabled)
	assert.Equal(t, observability.ExporterOTLP, tc.Exporter)
	assert.Equal(t, "collector:4317", tc.Endpoint)
	assert.Equal(t, "fluxloop-api", tc.ServiceName)
	assert.InDelta(t, 0.25, tc.SampleRatio, 1e-12)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)

	sc := cfg.Storage.ObjectStore()
	assert.Equal(t, storage.BackendS3, sc.Backend)
	assert.True(t, sc.UseSSL)
	assert.Equal(t, "fluxloop-traces", sc.Bucket)
}

func TestLoadEnvFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.dev"), []byte("S3_BUCKET=bench\nLOG_LEVEL=debug\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "bench", cfg.Storage.Bucket)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestDesignRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.yaml")
	want := sensor.ExampleDesign()
	require.NoError(t, SaveDesign(path, want))

	got, err := LoadDesign(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "key: TN10/6/4-4A11")
}

func TestDecodeDesignRejectsUnknownKeys(t *testing.T) {
	_, err := DecodeDesign(strings.NewReader("name: x\nloop:\n  radius: 106\n"))
	assert.ErrorIs(t, err, sensor.ErrInvalidConfig)

	_, err = DecodeDesign(strings.NewReader(""))
	assert.ErrorIs(t, err, sensor.ErrInvalidConfig)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
