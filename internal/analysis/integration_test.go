package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	pgContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/internal/repository/postgres"
	"github.com/RMahshie/fluxloop/internal/sensor"
	"github.com/RMahshie/fluxloop/internal/storage"
	"github.com/RMahshie/fluxloop/pkg/models"
)

// TestContainer holds test infrastructure
type TestContainer struct {
	db    *sql.DB
	store storage.ObjectStore
}

// SetupIntegrationTest starts PostgreSQL and MinIO and wires the service
// dependencies against them
func SetupIntegrationTest(t *testing.T) *TestContainer {
	t.Helper()
	ctx := context.Background()

	pg, err := pgContainer.Run(ctx,
		"postgres:15-alpine",
		pgContainer.WithDatabase("fluxloop_test"),
		pgContainer.WithUsername("testuser"),
		pgContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	dbURL, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, postgres.Migrate(ctx, db))

	mc, err := minio.Run(ctx,
		"minio/minio:RELEASE.2024-10-29T16-01-48Z",
		minio.WithUsername("minioadmin"),
		minio.WithPassword("minioadmin"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mc.Terminate(ctx) })

	endpoint, err := mc.ConnectionString(ctx)
	require.NoError(t, err)
	store, err := storage.New(ctx, storage.Config{
		Backend:   storage.BackendMinio,
		Bucket:    "fluxloop-test-" + uuid.New().String()[:8],
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	return &TestContainer{db: db, store: store}
}

// TestFullEvaluationPipeline_Integration stores a design, uploads traces and
// reads the exported report back from object storage
func TestFullEvaluationPipeline_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tc := SetupIntegrationTest(t)
	ctx := context.Background()

	repo := postgres.NewPostgresDesignRepository(tc.db)
	design := &models.StoredDesign{
		ID:        uuid.New(),
		Name:      "bench loop",
		Design:    sensor.ExampleDesign(),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, design))

	require.NoError(t, tc.store.Upload(ctx, "traces/run/shunt.csv", exportCSV(-30), storage.ContentTypeCSV))
	require.NoError(t, tc.store.Upload(ctx, "traces/run/output.csv", exportCSV(-10), storage.ContentTypeCSV))

	svc := NewService(tc.store, repo, catalog.DefaultAWGTable(), nil)
	job := traceJob()
	job.Export = true
	res, err := svc.EvaluateStored(ctx, design.ID, job)
	require.NoError(t, err)
	require.NotEmpty(t, res.Exports)

	var reportKey string
	for _, e := range res.Exports {
		assert.NotEmpty(t, e.URL, e.Name)
		if e.Name == "report" {
			reportKey = e.Key
		}
	}
	raw, err := tc.store.Download(ctx, reportKey)
	require.NoError(t, err)

	var report struct {
		Name      string `json:"name"`
		Empirical struct {
			Calibration struct {
				Value float64 `json:"value"`
				Unit  string  `json:"unit"`
			} `json:"calibration"`
		} `json:"empirical"`
	}
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, "reference loop", report.Name)
	assert.InEpsilon(t, 173796.9576, report.Empirical.Calibration.Value, 1e-3)
	assert.Equal(t, "V/T", report.Empirical.Calibration.Unit)

	// Reduction alone reuses the uploaded traces
	red, err := svc.Reduce(ctx, job.Traces, job.Setup, false)
	require.NoError(t, err)
	assert.Equal(t, 8, red.Empirical.TF.Len())
}
