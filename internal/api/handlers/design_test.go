package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/internal/repository"
	"github.com/RMahshie/fluxloop/internal/sensor"
	"github.com/RMahshie/fluxloop/pkg/models"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	return se.GetStatus()
}

func TestCreateDesign(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*sensor.Design)
		mockSetup func(*MockDesignRepository)
		wantCode  int
	}{
		{
			name: "valid design",
			mockSetup: func(repo *MockDesignRepository) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(d *models.StoredDesign) bool {
					return d.Name == "bench" && d.ID != uuid.Nil && !d.CreatedAt.IsZero()
				})).Return(nil)
			},
		},
		{
			name:     "unknown toroid",
			mutate:   func(d *sensor.Design) { d.Toroid.Key = "TN99" },
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "gauge not in table",
			mutate:   func(d *sensor.Design) { d.Winding.Gauge = 99 },
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "zero loop resistance",
			mutate:   func(d *sensor.Design) { d.Loop.ResistanceOhm = 0 },
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name: "database failure",
			mockSetup: func(repo *MockDesignRepository) {
				repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockDesignRepository)
			if tt.mockSetup != nil {
				tt.mockSetup(repo)
			}
			h := NewDesignHandler(repo, catalog.DefaultAWGTable())

			req := &models.CreateDesignRequest{}
			req.Body.Name = "bench"
			req.Body.Design = sensor.ExampleDesign()
			if tt.mutate != nil {
				tt.mutate(&req.Body.Design)
			}

			resp, err := h.CreateDesign(context.Background(), req)
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, statusOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "bench", resp.Body.Name)
			repo.AssertExpectations(t)
		})
	}
}

func TestGetDesign(t *testing.T) {
	id := uuid.New()
	repo := new(MockDesignRepository)
	repo.On("GetByID", mock.Anything, id).Return(&models.StoredDesign{ID: id, Name: "bench"}, nil)
	missing := uuid.New()
	repo.On("GetByID", mock.Anything, missing).Return(nil, fmt.Errorf("%w: %s", repository.ErrNotFound, missing))
	h := NewDesignHandler(repo, catalog.DefaultAWGTable())

	resp, err := h.GetDesign(context.Background(), &models.GetDesignRequest{ID: id.String()})
	require.NoError(t, err)
	assert.Equal(t, id, resp.Body.ID)

	_, err = h.GetDesign(context.Background(), &models.GetDesignRequest{ID: missing.String()})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	_, err = h.GetDesign(context.Background(), &models.GetDesignRequest{ID: "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestListAndDeleteDesigns(t *testing.T) {
	repo := new(MockDesignRepository)
	repo.On("List", mock.Anything, 20, 0).Return([]*models.StoredDesign{{Name: "a"}, {Name: "b"}}, nil)
	id := uuid.New()
	repo.On("Delete", mock.Anything, id).Return(nil)
	h := NewDesignHandler(repo, catalog.DefaultAWGTable())

	list, err := h.ListDesigns(context.Background(), &models.ListDesignsRequest{Limit: 20})
	require.NoError(t, err)
	assert.Len(t, list.Body.Designs, 2)

	_, err = h.DeleteDesign(context.Background(), &models.DeleteDesignRequest{ID: id.String()})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDerive(t *testing.T) {
	h := NewDesignHandler(new(MockDesignRepository), catalog.DefaultAWGTable())

	resp, err := h.Derive(context.Background(), &models.DeriveRequest{Body: sensor.ExampleDesign()})
	require.NoError(t, err)
	assert.InDelta(t, 56.92, resp.Body.Derived.MaxTurns.Value(), 0.01)
	assert.Empty(t, resp.Body.Warnings)

	d := sensor.ExampleDesign()
	d.Winding.Turns = 80
	resp, err = h.Derive(context.Background(), &models.DeriveRequest{Body: d})
	require.NoError(t, err)
	assert.Len(t, resp.Body.Warnings, 1)
}
