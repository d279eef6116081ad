package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/internal/measurement"
	"github.com/RMahshie/fluxloop/internal/observability"
	"github.com/RMahshie/fluxloop/internal/repository"
	"github.com/RMahshie/fluxloop/internal/sensor"
	"github.com/RMahshie/fluxloop/internal/storage"
	"github.com/RMahshie/fluxloop/pkg/models"
)

// MockObjectStore implements storage.ObjectStore for testing
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Download(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockDesignRepository implements repository.DesignRepository for testing
type MockDesignRepository struct {
	mock.Mock
}

func (m *MockDesignRepository) Create(ctx context.Context, design *models.StoredDesign) error {
	args := m.Called(ctx, design)
	return args.Error(0)
}

func (m *MockDesignRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StoredDesign, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*models.StoredDesign)
	return d, args.Error(1)
}

func (m *MockDesignRepository) List(ctx context.Context, limit, offset int) ([]*models.StoredDesign, error) {
	args := m.Called(ctx, limit, offset)
	d, _ := args.Get(0).([]*models.StoredDesign)
	return d, args.Error(1)
}

func (m *MockDesignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func exportCSV(level float64) []byte {
	var b strings.Builder
	b.WriteString("Frequency [Hz],Level [dBm]\n")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&b, "%d,%g\n", i*1000, level)
	}
	return []byte(b.String())
}

func traceJob() Job {
	opts := measurement.CSVOptions{Scale: measurement.ScaleDBm, LevelColumn: 1}
	sweep := DefaultSweep()
	sweep.Points = 10
	return Job{
		Design: sensor.ExampleDesign(),
		Sweep:  sweep,
		Traces: []TraceSource{
			{Role: RoleShunt, Key: "traces/run/shunt.csv", Options: opts},
			{Role: RoleOutput, Key: "traces/run/output.csv", Options: opts},
		},
		Setup: Measurements{Driver: benchDriver()},
	}
}

func newTestService(t *testing.T) (*service, *MockObjectStore, *MockDesignRepository, *observability.Collector) {
	t.Helper()
	store := new(MockObjectStore)
	repo := new(MockDesignRepository)
	metrics, err := observability.NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	svc := NewService(store, repo, catalog.DefaultAWGTable(), metrics).(*service)
	return svc, store, repo, metrics
}

func TestServiceEvaluateExportsCurves(t *testing.T) {
	svc, store, _, metrics := newTestService(t)
	ctx := context.Background()

	store.On("Download", mock.Anything, "traces/run/shunt.csv").Return(exportCSV(-30), nil)
	store.On("Download", mock.Anything, "traces/run/output.csv").Return(exportCSV(-10), nil)
	store.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "exports/") }), mock.Anything, mock.Anything).Return(nil)
	store.On("GenerateDownloadURL", mock.Anything, mock.Anything).Return("http://minio/exports/x", nil)

	job := traceJob()
	job.Export = true
	res, err := svc.Evaluate(ctx, job)
	require.NoError(t, err)

	require.NotNil(t, res.Report.Empirical)
	assert.Equal(t, 8, res.Report.Empirical.TF.Len())
	// 8 model curves, measured TF, the JSON report and the chart page
	assert.Len(t, res.Exports, 11)
	assert.Equal(t, "nemi_model", res.Exports[0].Name)
	assert.Equal(t, fmt.Sprintf("exports/%s/report.json", res.RunID), res.Exports[9].Key)
	assert.Equal(t, "charts", res.Exports[10].Name)
	store.AssertNumberOfCalls(t, "Upload", 11)
	store.AssertCalled(t, "Upload", mock.Anything, fmt.Sprintf("exports/%s/tf.csv", res.RunID), mock.Anything, storage.ContentTypeCSV)
	store.AssertCalled(t, "Upload", mock.Anything, fmt.Sprintf("exports/%s/charts.html", res.RunID), mock.Anything, storage.ContentTypeHTML)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Evaluations.WithLabelValues("ok")))
	assert.Equal(t, 11.0, testutil.ToFloat64(metrics.Exports))
}

func TestServiceEvaluateStoredDesign(t *testing.T) {
	svc, _, repo, _ := newTestService(t)
	ctx := context.Background()
	id := uuid.New()
	design := sensor.ExampleDesign()
	design.Name = ""
	repo.On("GetByID", ctx, id).Return(&models.StoredDesign{ID: id, Name: "stored", Design: design}, nil)

	sweep := DefaultSweep()
	sweep.Points = 5
	res, err := svc.EvaluateStored(ctx, id, Job{Sweep: sweep})
	require.NoError(t, err)
	assert.Equal(t, "stored", res.Report.Name)
	assert.Empty(t, res.Exports)
}

func TestServiceEvaluateStoredMissing(t *testing.T) {
	svc, _, repo, _ := newTestService(t)
	ctx := context.Background()
	id := uuid.New()
	repo.On("GetByID", ctx, id).Return(nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id))

	_, err := svc.EvaluateStored(ctx, id, Job{Sweep: DefaultSweep()})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestServiceDownloadFailure(t *testing.T) {
	svc, store, _, metrics := newTestService(t)
	ctx := context.Background()
	store.On("Download", mock.Anything, "traces/run/shunt.csv").Return(nil, errors.New("connection refused"))

	_, err := svc.Evaluate(ctx, traceJob())
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Evaluations.WithLabelValues("error")))
}

func TestServiceRejectsInvalidDesign(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	job := Job{Design: sensor.ExampleDesign(), Sweep: DefaultSweep()}
	job.Design.Toroid.Key = "TN99"
	_, err := svc.Evaluate(context.Background(), job)
	assert.ErrorIs(t, err, catalog.ErrUnknownKey)
}

func TestServiceReduce(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()
	store.On("Download", mock.Anything, "traces/run/gain.csv").Return([]byte("f,g\n1000,40\n2000,40\n"), nil)

	res, err := svc.Reduce(ctx, []TraceSource{{
		Role: RoleGain, Key: "traces/run/gain.csv",
		Options: measurement.CSVOptions{Scale: measurement.ScaleDB, LevelColumn: 1},
	}}, Measurements{Driver: benchDriver()}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Empirical.TF.Len())

	_, err = svc.Reduce(ctx, nil, Measurements{Driver: benchDriver()}, false)
	assert.ErrorIs(t, err, sensor.ErrInvalidConfig)
}

func TestServiceReduceShuntWithoutOutput(t *testing.T) {
	svc, store, _, metrics := newTestService(t)
	store.On("Download", mock.Anything, "traces/run/shunt.csv").Return(exportCSV(-30), nil)

	res, err := svc.Reduce(context.Background(), traceJob().Traces[:1], Measurements{Driver: benchDriver()}, false)
	assert.ErrorIs(t, err, sensor.ErrInvalidConfig)
	assert.Nil(t, res)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Evaluations.WithLabelValues("error")))
}

func TestServiceEvaluateRecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	svc, store, _, _ := newTestService(t)
	store.On("Download", mock.Anything, "traces/run/shunt.csv").Return(nil, errors.New("connection refused"))

	_, err := svc.Evaluate(context.Background(), traceJob())
	require.ErrorIs(t, err, ErrStorage)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "analysis.Evaluate", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.Int("traces", 2))
}
