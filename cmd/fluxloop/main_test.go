package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/fluxloop/internal/measurement"
	"github.com/RMahshie/fluxloop/internal/sensor"
)

func options(t *testing.T, args ...string) *viper.Viper {
	t.Helper()
	fs := newFlagSet()
	require.NoError(t, fs.Parse(args))
	v, err := bind(fs)
	require.NoError(t, err)
	return v
}

func writeTrace(t *testing.T, path string, level float64) {
	t.Helper()
	var b strings.Builder
	b.WriteString("Frequency [Hz],Level [dBm]\n")
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&b, "%d,%g\n", i*5000, level)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func TestRunModelOnly(t *testing.T) {
	dir := t.TempDir()
	design := filepath.Join(dir, "loop.yaml")
	out := filepath.Join(dir, "out")

	require.NoError(t, run(options(t, "--write-example", design)))
	require.NoError(t, run(options(t, "--design", design, "--out", out, "--points", "40")))

	for _, name := range []string{"tf.csv", "tf2.csv", "noise.csv", "noise_vb1.csv", "nemi_model.csv", "report.json", "charts.html"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	raw, err := os.ReadFile(filepath.Join(out, "report.json"))
	require.NoError(t, err)
	var report struct {
		Name    string `json:"name"`
		Derived struct {
			MaxTurns struct {
				Value float64 `json:"value"`
			} `json:"max_turns"`
		} `json:"derived"`
	}
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, "reference loop", report.Name)
	assert.InDelta(t, 56.92, report.Derived.MaxTurns.Value, 0.01)
}

func TestRunWithTraces(t *testing.T) {
	dir := t.TempDir()
	design := filepath.Join(dir, "loop.yaml")
	require.NoError(t, run(options(t, "--write-example", design)))
	writeTrace(t, filepath.Join(dir, "shunt.csv"), -30)
	writeTrace(t, filepath.Join(dir, "output.csv"), -10)
	writeTrace(t, filepath.Join(dir, "noise.csv"), -120)

	out := filepath.Join(dir, "out")
	require.NoError(t, run(options(t,
		"--design", design, "--out", out, "--points", "20",
		"--shunt", filepath.Join(dir, "shunt.csv"),
		"--output", filepath.Join(dir, "output.csv"),
		"--noise", filepath.Join(dir, "noise.csv"),
		"--distance-mm", "15",
		"--sg-half-width", "2", "--ma-window", "3",
	)))
	for _, name := range []string{"tf_measured.csv", "tf_measured_smoothed.csv", "nemi_measured.csv", "nemi_averaged.csv"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
}

func TestRunReferenceTolerance(t *testing.T) {
	dir := t.TempDir()
	design := filepath.Join(dir, "loop.yaml")
	require.NoError(t, run(options(t, "--write-example", design)))
	writeTrace(t, filepath.Join(dir, "shunt.csv"), -30)
	writeTrace(t, filepath.Join(dir, "output.csv"), -10)

	args := []string{
		"--design", design, "--out", filepath.Join(dir, "out"), "--points", "5",
		"--shunt", filepath.Join(dir, "shunt.csv"),
		"--output", filepath.Join(dir, "output.csv"),
		"--distance-mm", "15", "--reference", "173797",
	}
	require.NoError(t, run(options(t, args...)))

	err := run(options(t, append(args, "--reference-tolerance", "0")...))
	assert.ErrorIs(t, err, measurement.ErrCalibrationMismatch)
}

func TestRunRejectsShuntWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	design := filepath.Join(dir, "loop.yaml")
	require.NoError(t, run(options(t, "--write-example", design)))
	writeTrace(t, filepath.Join(dir, "shunt.csv"), -30)

	err := run(options(t, "--design", design, "--out", filepath.Join(dir, "out"),
		"--shunt", filepath.Join(dir, "shunt.csv"), "--distance-mm", "15"))
	assert.ErrorIs(t, err, sensor.ErrInvalidConfig)
}

func TestRunRequiresDesign(t *testing.T) {
	err := run(options(t))
	assert.ErrorIs(t, err, sensor.ErrInvalidConfig)
}

func TestEnvironmentFallback(t *testing.T) {
	t.Setenv("FLUXLOOP_POINTS", "17")
	v := options(t)
	assert.Equal(t, 17, v.GetInt("points"))

	v = options(t, "--points", "5")
	assert.Equal(t, 5, v.GetInt("points"))
}
