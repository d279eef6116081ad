package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/internal/measurement"
	"github.com/RMahshie/fluxloop/internal/observability"
	"github.com/RMahshie/fluxloop/internal/plot"
	"github.com/RMahshie/fluxloop/internal/repository"
	"github.com/RMahshie/fluxloop/internal/sensor"
	"github.com/RMahshie/fluxloop/internal/series"
	"github.com/RMahshie/fluxloop/internal/storage"
)

// ErrStorage wraps object store failures so callers can tell them apart from
// invalid input.
var ErrStorage = errors.New("object storage failure")

var tracer = otel.Tracer("github.com/RMahshie/fluxloop/internal/analysis")

// Trace roles in a calibration run.
const (
	RoleShunt  = "shunt"
	RoleOutput = "output"
	RoleGain   = "gain"
	RoleNoise  = "noise"
)

// TraceSource locates an instrument export in object storage.
type TraceSource struct {
	Role    string
	Key     string
	Options measurement.CSVOptions
}

// Job is one evaluation request.
type Job struct {
	Design sensor.Design
	Sweep  Sweep
	// Traces are optional; Setup applies only when traces are given.
	Traces []TraceSource
	Setup  Measurements
	Export bool
}

// Export is one result file written to object storage.
type Export struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	URL  string `json:"url,omitempty"`
}

// Result is the outcome of a service evaluation.
type Result struct {
	RunID   uuid.UUID `json:"run_id"`
	Report  *Report   `json:"report"`
	Exports []Export  `json:"exports,omitempty"`
}

// ReductionResult is the outcome of a measurement-only reduction.
type ReductionResult struct {
	RunID     uuid.UUID  `json:"run_id"`
	Empirical *Empirical `json:"empirical"`
	Exports   []Export   `json:"exports,omitempty"`
}

// Service evaluates designs for the HTTP surface.
type Service interface {
	Evaluate(ctx context.Context, job Job) (*Result, error)
	EvaluateStored(ctx context.Context, designID uuid.UUID, job Job) (*Result, error)
	Reduce(ctx context.Context, traces []TraceSource, setup Measurements, export bool) (*ReductionResult, error)
}

type service struct {
	store   storage.ObjectStore
	designs repository.DesignRepository
	awg     *catalog.AWGTable
	metrics *observability.Collector
}

// NewService creates the evaluation service. metrics may be nil.
func NewService(store storage.ObjectStore, designs repository.DesignRepository, awg *catalog.AWGTable, metrics *observability.Collector) Service {
	return &service{
		store:   store,
		designs: designs,
		awg:     awg,
		metrics: metrics,
	}
}

func (s *service) EvaluateStored(ctx context.Context, designID uuid.UUID, job Job) (*Result, error) {
	rec, err := s.designs.GetByID(ctx, designID)
	if err != nil {
		return nil, err
	}
	job.Design = rec.Design
	if job.Design.Name == "" {
		job.Design.Name = rec.Name
	}
	return s.Evaluate(ctx, job)
}

func (s *service) Evaluate(ctx context.Context, job Job) (res *Result, err error) {
	start := time.Now()
	runID := uuid.New()
	ctx, span := tracer.Start(ctx, "analysis.Evaluate", trace.WithAttributes(
		attribute.String("run.id", runID.String()),
		attribute.String("design.name", job.Design.Name),
		attribute.Int("traces", len(job.Traces)),
	))
	defer func() { s.observe(span, start, err) }()

	log.Info().Str("runID", runID.String()).Str("design", job.Design.Name).Int("traces", len(job.Traces)).Msg("Starting evaluation")

	cfg, err := job.Design.Resolve(s.awg)
	if err != nil {
		return nil, err
	}

	var m *Measurements
	if len(job.Traces) > 0 {
		setup := job.Setup
		if err := s.loadTraces(ctx, job.Traces, &setup); err != nil {
			return nil, err
		}
		m = &setup
	}

	report, err := Evaluate(cfg, job.Sweep, m)
	if err != nil {
		log.Warn().Err(err).Str("runID", runID.String()).Msg("Evaluation failed")
		return nil, err
	}

	res = &Result{RunID: runID, Report: report}
	if job.Export {
		if res.Exports, err = s.export(ctx, runID, report, report.Curves(), report.Figures()); err != nil {
			return nil, err
		}
	}
	log.Info().Str("runID", runID.String()).Int("exports", len(res.Exports)).Dur("elapsed", time.Since(start)).Msg("Evaluation complete")
	return res, nil
}

func (s *service) Reduce(ctx context.Context, traces []TraceSource, setup Measurements, export bool) (res *ReductionResult, err error) {
	start := time.Now()
	runID := uuid.New()
	ctx, span := tracer.Start(ctx, "analysis.Reduce", trace.WithAttributes(
		attribute.String("run.id", runID.String()),
		attribute.Int("traces", len(traces)),
	))
	defer func() { s.observe(span, start, err) }()

	if len(traces) == 0 {
		return nil, fmt.Errorf("%w: no traces to reduce", sensor.ErrInvalidConfig)
	}
	if err := s.loadTraces(ctx, traces, &setup); err != nil {
		return nil, err
	}
	e, err := Reduce(setup)
	if err != nil {
		return nil, err
	}
	res = &ReductionResult{RunID: runID, Empirical: e}
	if export {
		if res.Exports, err = s.export(ctx, runID, e, e.Curves(), e.Figures()); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *service) loadTraces(ctx context.Context, traces []TraceSource, m *Measurements) error {
	for _, src := range traces {
		data, err := s.store.Download(ctx, src.Key)
		if err != nil {
			return fmt.Errorf("%w: %s trace: %w", ErrStorage, src.Role, err)
		}
		s.metrics.AddTraceBytes(len(data))

		opts := src.Options
		if opts.Name == "" {
			opts.Name = src.Role
		}
		t, err := measurement.ReadTraceCSV(bytes.NewReader(data), opts)
		if err != nil {
			return fmt.Errorf("%s trace %s: %w", src.Role, src.Key, err)
		}
		switch src.Role {
		case RoleShunt:
			m.Shunt = &t
		case RoleOutput:
			m.Output = &t
		case RoleGain:
			m.Gain = &t
		case RoleNoise:
			m.Noise = &t
		default:
			return fmt.Errorf("%w: unknown trace role %q", sensor.ErrInvalidConfig, src.Role)
		}
		log.Debug().Str("role", src.Role).Str("key", src.Key).Int("points", t.Len()).Msg("Loaded trace")
	}
	return nil
}

// export writes every curve as CSV plus the JSON document and an HTML chart
// page under exports/<run>/.
func (s *service) export(ctx context.Context, runID uuid.UUID, doc any, curves map[string]*series.FrequencySeries, figures []plot.Figure) ([]Export, error) {
	prefix := fmt.Sprintf("exports/%s/", runID)
	var exports []Export
	put := func(name, key string, data []byte, contentType string) error {
		if err := s.store.Upload(ctx, key, data, contentType); err != nil {
			return fmt.Errorf("%w: export %s: %w", ErrStorage, name, err)
		}
		s.metrics.IncExports()
		url, err := s.store.GenerateDownloadURL(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("No download URL for export")
		}
		exports = append(exports, Export{Name: name, Key: key, URL: url})
		return nil
	}

	for _, name := range sortedNames(curves) {
		var buf bytes.Buffer
		if err := curves[name].WriteCSV(&buf); err != nil {
			return nil, fmt.Errorf("export %s: %w", name, err)
		}
		if err := put(name, prefix+name+".csv", buf.Bytes(), storage.ContentTypeCSV); err != nil {
			return nil, err
		}
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("export report: %w", err)
	}
	if err := put("report", prefix+"report.json", body, storage.ContentTypeJSON); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	switch err := plot.Render(&page, fmt.Sprintf("Run %s", runID), figures...); {
	case errors.Is(err, plot.ErrEmptyFigure):
	case err != nil:
		return nil, fmt.Errorf("export charts: %w", err)
	default:
		if err := put("charts", prefix+"charts.html", page.Bytes(), storage.ContentTypeHTML); err != nil {
			return nil, err
		}
	}
	return exports, nil
}

// observe closes the run span and records the outcome metrics.
func (s *service) observe(span trace.Span, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	s.metrics.ObserveEvaluation(outcome, time.Since(start))
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
