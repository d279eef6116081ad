// Command fluxloop evaluates a loop sensor design from a YAML file and,
// optionally, reduces spectrum analyzer exports of a calibration run. Curves
// are written as CSV together with a JSON report and an HTML chart page.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RMahshie/fluxloop/internal/analysis"
	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/internal/config"
	"github.com/RMahshie/fluxloop/internal/measurement"
	"github.com/RMahshie/fluxloop/internal/plot"
	"github.com/RMahshie/fluxloop/internal/sensor"
	"github.com/RMahshie/fluxloop/pkg/units"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	fs := newFlagSet()
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("Invalid arguments")
	}
	v, err := bind(fs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read options")
	}
	if level, err := zerolog.ParseLevel(v.GetString("log-level")); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if err := run(v); err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("fluxloop", pflag.ContinueOnError)
	fs.StringP("design", "d", "", "YAML sensor design")
	fs.String("write-example", "", "write the reference design to this path and exit")
	fs.StringP("out", "o", "out", "output directory")
	fs.String("awg-table", "", "AWG table CSV replacing the built-in one")
	fs.String("log-level", "info", "log level")
	fs.Bool("derive-only", false, "print derived properties and exit")

	fs.Float64("start", 10, "first sweep frequency in Hz")
	fs.Float64("stop", 10e6, "last sweep frequency in Hz")
	fs.Int("points", 200, "sweep points")
	fs.String("spacing", analysis.SpacingLog, "sweep spacing: log or lin")

	fs.String("shunt", "", "shunt voltage export (dBm)")
	fs.String("output", "", "amplifier output export (dBm)")
	fs.String("gain", "", "gain export (dB), replaces shunt and output")
	fs.String("noise", "", "output noise export (dBm)")
	fs.Int("frequency-column", 0, "zero-based frequency column of the exports")
	fs.Int("level-column", 1, "zero-based level column of the exports")
	fs.String("delimiter", ",", "field separator of the exports")

	fs.Float64("shunt-ohm", 1, "calibration shunt resistance in Ω")
	fs.Float64("distance-mm", 0, "driver loop to sensor distance in mm")
	fs.Float64("radius-mm", 106, "driver loop radius in mm")
	fs.Float64("impedance-ohm", 50, "analyzer input impedance in Ω")
	fs.Float64("reference", 0, "independent calibration constant in V/T, 0 skips the check")
	fs.Float64("reference-tolerance", measurement.DefaultReferenceTolerance, "relative tolerance of the reference check, 0 for an exact match")
	fs.Int("sg-half-width", 0, "Savitzky-Golay half window, 0 disables")
	fs.Int("sg-degree", 2, "Savitzky-Golay polynomial degree")
	fs.Int("ma-window", 0, "moving average window, 0 disables")
	return fs
}

// bind layers FLUXLOOP_* environment variables under the parsed flags.
func bind(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("FLUXLOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	return v, nil
}

func run(v *viper.Viper) error {
	if path := v.GetString("write-example"); path != "" {
		if err := config.SaveDesign(path, sensor.ExampleDesign()); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Reference design written")
		return nil
	}

	path := v.GetString("design")
	if path == "" {
		return fmt.Errorf("%w: --design is required", sensor.ErrInvalidConfig)
	}
	design, err := config.LoadDesign(path)
	if err != nil {
		return err
	}
	if design.Name == "" {
		design.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	awg := catalog.DefaultAWGTable()
	if p := v.GetString("awg-table"); p != "" {
		if awg, err = catalog.LoadAWGFile(p); err != nil {
			return err
		}
	}
	cfg, err := design.Resolve(awg)
	if err != nil {
		return err
	}

	if v.GetBool("derive-only") {
		derived, err := sensor.Derive(cfg)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(derived)
	}

	m, err := measurements(v)
	if err != nil {
		return err
	}
	sweep := analysis.Sweep{
		Start:   units.New(v.GetFloat64("start"), units.Hertz),
		Stop:    units.New(v.GetFloat64("stop"), units.Hertz),
		Points:  v.GetInt("points"),
		Spacing: v.GetString("spacing"),
	}
	report, err := analysis.Evaluate(cfg, sweep, m)
	if err != nil {
		return err
	}

	logSummary(report)
	for _, w := range report.Warnings {
		log.Warn().Msg(w)
	}
	return write(v.GetString("out"), report)
}

// measurements reads the trace files named on the command line. It returns
// nil when none are given.
func measurements(v *viper.Viper) (*analysis.Measurements, error) {
	comma, _ := utf8.DecodeRuneInString(v.GetString("delimiter"))
	read := func(role string, scale measurement.Scale) (*measurement.Trace, error) {
		path := v.GetString(role)
		if path == "" {
			return nil, nil
		}
		t, err := measurement.ReadTraceFile(path, measurement.CSVOptions{
			Name:            role,
			Scale:           scale,
			FrequencyColumn: v.GetInt("frequency-column"),
			LevelColumn:     v.GetInt("level-column"),
			Comma:           comma,
		})
		if err != nil {
			return nil, err
		}
		log.Debug().Str("role", role).Str("path", path).Int("points", t.Len()).Msg("Loaded trace")
		return &t, nil
	}

	m := &analysis.Measurements{
		Driver: analysis.Driver{
			ShuntResistance: units.New(v.GetFloat64("shunt-ohm"), units.Ohm),
			Distance:        units.New(v.GetFloat64("distance-mm"), units.Millimetre),
			Radius:          units.New(v.GetFloat64("radius-mm"), units.Millimetre),
		},
		Impedance:          units.New(v.GetFloat64("impedance-ohm"), units.Ohm),
		Smoothing: analysis.Smoothing{
			HalfWidth: v.GetInt("sg-half-width"),
			Degree:    v.GetInt("sg-degree"),
			Window:    v.GetInt("ma-window"),
		},
	}
	tol := v.GetFloat64("reference-tolerance")
	m.ReferenceTolerance = &tol
	if ref := v.GetFloat64("reference"); ref != 0 {
		q := units.New(ref, units.VoltPerTesla)
		m.Reference = &q
	}

	var err error
	if m.Shunt, err = read(analysis.RoleShunt, measurement.ScaleDBm); err != nil {
		return nil, err
	}
	if m.Output, err = read(analysis.RoleOutput, measurement.ScaleDBm); err != nil {
		return nil, err
	}
	if m.Gain, err = read(analysis.RoleGain, measurement.ScaleDB); err != nil {
		return nil, err
	}
	if m.Noise, err = read(analysis.RoleNoise, measurement.ScaleDBm); err != nil {
		return nil, err
	}
	if m.Shunt == nil && m.Output == nil && m.Gain == nil && m.Noise == nil {
		return nil, nil
	}
	return m, nil
}

func logSummary(r *analysis.Report) {
	d := r.Derived
	log.Info().
		Str("design", r.Name).
		Str("resonance", d.ResonantFrequency.Format(units.Megahertz)).
		Str("toroid_inductance", d.ToroidInductance.Format(units.Microhenry)).
		Str("winding_resistance", d.WindingResistance.Format(units.Ohm)).
		Str("wire_length", d.WireLength.Format(units.Metre)).
		Str("max_turns", d.MaxTurns.String()).
		Msg("Derived properties")
	if e := r.Empirical; e != nil {
		log.Info().Str("calibration", e.Calibration.Format(units.VoltPerTesla)).Msg("Calibration constant")
	}
}

func write(dir string, r *analysis.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for name, s := range r.Curves() {
		f, err := os.Create(filepath.Join(dir, name+".csv"))
		if err != nil {
			return err
		}
		err = s.WriteCSV(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.json"), body, 0o644); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, "charts.html"))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := plot.Render(f, r.Name, r.Figures()...); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	log.Info().Str("dir", dir).Int("curves", len(r.Curves())).Msg("Results written")
	return nil
}
