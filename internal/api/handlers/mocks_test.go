package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/RMahshie/fluxloop/internal/analysis"
	"github.com/RMahshie/fluxloop/pkg/models"
)

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

// MockAnalysisService implements analysis.Service for testing
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Evaluate(ctx context.Context, job analysis.Job) (*analysis.Result, error) {
	args := m.Called(ctx, job)
	r, _ := args.Get(0).(*analysis.Result)
	return r, args.Error(1)
}

func (m *MockAnalysisService) EvaluateStored(ctx context.Context, designID uuid.UUID, job analysis.Job) (*analysis.Result, error) {
	args := m.Called(ctx, designID, job)
	r, _ := args.Get(0).(*analysis.Result)
	return r, args.Error(1)
}

func (m *MockAnalysisService) Reduce(ctx context.Context, traces []analysis.TraceSource, setup analysis.Measurements, export bool) (*analysis.ReductionResult, error) {
	args := m.Called(ctx, traces, setup, export)
	r, _ := args.Get(0).(*analysis.ReductionResult)
	return r, args.Error(1)
}
