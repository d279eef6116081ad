package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/fluxloop/internal/analysis"
	"github.com/RMahshie/fluxloop/internal/measurement"
	"github.com/RMahshie/fluxloop/internal/storage"
	"github.com/RMahshie/fluxloop/pkg/models"
	"github.com/RMahshie/fluxloop/pkg/units"
)

// tracePrefix is the object key prefix of uploaded instrument exports
const tracePrefix = "traces/"

// EvaluateResponse returns a sensor evaluation
type EvaluateResponse struct {
	Body *analysis.Result
}

// ReduceResponse returns curves reduced from traces alone
type ReduceResponse struct {
	Body *analysis.ReductionResult
}

// AnalysisHandler handles evaluation HTTP requests
type AnalysisHandler struct {
	service analysis.Service
	store   storage.ObjectStore
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service analysis.Service, store storage.ObjectStore) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		store:   store,
	}
}

// CreateTraceUpload returns a pre-signed URL for an instrument export
func (h *AnalysisHandler) CreateTraceUpload(ctx context.Context, req *models.CreateTraceUploadRequest) (*models.CreateTraceUploadResponse, error) {
	key := fmt.Sprintf("%s%s/%s.csv", tracePrefix, uuid.New(), req.Body.Role)
	log.Info().Str("key", key).Int64("fileSize", req.Body.FileSize).Msg("Generating trace upload URL")

	uploadURL, err := h.store.GenerateUploadURL(ctx, key, storage.ContentTypeCSV)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidContentType) {
			return nil, huma.Error400BadRequest("Trace format not supported", err)
		}
		return nil, huma.Error502BadGateway("Failed to prepare upload. Please try again.", err)
	}

	resp := &models.CreateTraceUploadResponse{}
	resp.Body.Key = key
	resp.Body.UploadURL = uploadURL
	resp.Body.ExpiresIn = int(storage.UploadURLExpiry().Seconds())
	return resp, nil
}

// EvaluateDesign evaluates a stored design
func (h *AnalysisHandler) EvaluateDesign(ctx context.Context, req *models.EvaluateDesignRequest) (*EvaluateResponse, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid design ID", err)
	}
	job, err := jobFrom(req.Body)
	if err != nil {
		return nil, err
	}

	log.Info().Str("designID", id.String()).Int("traces", len(job.Traces)).Msg("Evaluating stored design")
	res, err := h.service.EvaluateStored(ctx, id, job)
	if err != nil {
		return nil, evaluationError("Evaluation failed", err)
	}
	return &EvaluateResponse{Body: res}, nil
}

// EvaluateInline evaluates a design sent with the request
func (h *AnalysisHandler) EvaluateInline(ctx context.Context, req *models.EvaluateInlineRequest) (*EvaluateResponse, error) {
	job, err := jobFrom(req.Body.EvaluateOptions)
	if err != nil {
		return nil, err
	}
	job.Design = req.Body.Design

	log.Info().Str("design", job.Design.Name).Int("traces", len(job.Traces)).Msg("Evaluating inline design")
	res, err := h.service.Evaluate(ctx, job)
	if err != nil {
		return nil, evaluationError("Evaluation failed", err)
	}
	return &EvaluateResponse{Body: res}, nil
}

// ReduceTraces reduces calibration traces without a sensor model
func (h *AnalysisHandler) ReduceTraces(ctx context.Context, req *models.ReduceTracesRequest) (*ReduceResponse, error) {
	traces, setup, err := measurementsFrom(&req.Body.MeasurementOptions)
	if err != nil {
		return nil, err
	}
	res, err := h.service.Reduce(ctx, traces, setup, req.Body.Export)
	if err != nil {
		return nil, evaluationError("Reduction failed", err)
	}
	return &ReduceResponse{Body: res}, nil
}

func jobFrom(opts models.EvaluateOptions) (analysis.Job, error) {
	job := analysis.Job{Sweep: sweepFrom(opts.Sweep), Export: opts.Export}
	if opts.Measurements != nil {
		traces, setup, err := measurementsFrom(opts.Measurements)
		if err != nil {
			return analysis.Job{}, err
		}
		job.Traces, job.Setup = traces, setup
	}
	return job, nil
}

func sweepFrom(o models.SweepOptions) analysis.Sweep {
	s := analysis.DefaultSweep()
	if o.StartHz > 0 {
		s.Start = units.New(o.StartHz, units.Hertz)
	}
	if o.StopHz > 0 {
		s.Stop = units.New(o.StopHz, units.Hertz)
	}
	if o.Points > 0 {
		s.Points = o.Points
	}
	if o.Spacing != "" {
		s.Spacing = o.Spacing
	}
	return s
}

func measurementsFrom(o *models.MeasurementOptions) ([]analysis.TraceSource, analysis.Measurements, error) {
	m := analysis.Measurements{
		Driver: analysis.Driver{
			ShuntResistance: units.New(o.ShuntResistanceOhm, units.Ohm),
			Distance:        units.New(o.DriverDistanceMM, units.Millimetre),
			Radius:          units.New(o.DriverRadiusMM, units.Millimetre),
		},
		Smoothing: analysis.Smoothing{
			HalfWidth: o.Smoothing.HalfWidth,
			Degree:    o.Smoothing.Degree,
			Window:    o.Smoothing.Window,
		},
	}
	if o.ImpedanceOhm > 0 {
		m.Impedance = units.New(o.ImpedanceOhm, units.Ohm)
	}
	if o.ReferenceTolerance != nil {
		tol := *o.ReferenceTolerance
		m.ReferenceTolerance = &tol
	}
	if o.ReferenceVPerT != nil {
		ref := units.New(*o.ReferenceVPerT, units.VoltPerTesla)
		m.Reference = &ref
	}

	seen := map[string]bool{}
	traces := make([]analysis.TraceSource, 0, len(o.Traces))
	for _, t := range o.Traces {
		if !strings.HasPrefix(t.Key, tracePrefix) {
			return nil, m, huma.Error400BadRequest(fmt.Sprintf("Trace key %q is not an uploaded trace", t.Key), nil)
		}
		if seen[t.Role] {
			return nil, m, huma.Error400BadRequest(fmt.Sprintf("Duplicate %s trace", t.Role), nil)
		}
		seen[t.Role] = true

		opts := measurement.CSVOptions{
			Name:            t.Role,
			Scale:           measurement.Scale(t.Scale),
			FrequencyColumn: t.FrequencyColumn,
			LevelColumn:     t.LevelColumn,
			FrequencyHeader: t.FrequencyHeader,
			LevelHeader:     t.LevelHeader,
		}
		if t.Delimiter != "" {
			opts.Comma, _ = utf8.DecodeRuneInString(t.Delimiter)
		}
		traces = append(traces, analysis.TraceSource{Role: t.Role, Key: t.Key, Options: opts})
	}
	return traces, m, nil
}
