package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RMahshie/fluxloop/internal/analysis"
	"github.com/RMahshie/fluxloop/internal/api/handlers"
	"github.com/RMahshie/fluxloop/internal/catalog"
	"github.com/RMahshie/fluxloop/internal/repository"
	"github.com/RMahshie/fluxloop/internal/storage"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, designRepo repository.DesignRepository, store storage.ObjectStore, svc analysis.Service, awg *catalog.AWGTable) {
	// Initialize handlers
	designHandler := handlers.NewDesignHandler(designRepo, awg)
	analysisHandler := handlers.NewAnalysisHandler(svc, store)
	catalogHandler := handlers.NewCatalogHandler(awg)

	// Register design routes
	huma.Register(api, huma.Operation{
		OperationID:   "createDesign",
		Method:        http.MethodPost,
		Path:          "/api/designs",
		Summary:       "Create a sensor design",
		Description:   "Validates a design against the catalogs and stores it",
		Tags:          []string{"Designs"},
		DefaultStatus: http.StatusCreated,
	}, designHandler.CreateDesign)

	huma.Register(api, huma.Operation{
		OperationID: "listDesigns",
		Method:      http.MethodGet,
		Path:        "/api/designs",
		Summary:     "List sensor designs",
		Tags:        []string{"Designs"},
	}, designHandler.ListDesigns)

	huma.Register(api, huma.Operation{
		OperationID: "getDesign",
		Method:      http.MethodGet,
		Path:        "/api/designs/{id}",
		Summary:     "Get a sensor design",
		Tags:        []string{"Designs"},
	}, designHandler.GetDesign)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteDesign",
		Method:        http.MethodDelete,
		Path:          "/api/designs/{id}",
		Summary:       "Delete a sensor design",
		Tags:          []string{"Designs"},
		DefaultStatus: http.StatusNoContent,
	}, designHandler.DeleteDesign)

	huma.Register(api, huma.Operation{
		OperationID: "deriveDesign",
		Method:      http.MethodPost,
		Path:        "/api/derive",
		Summary:     "Derive sensor properties",
		Description: "Returns winding, inductance and resonance figures of an inline design",
		Tags:        []string{"Designs"},
	}, designHandler.Derive)

	// Register evaluation routes
	huma.Register(api, huma.Operation{
		OperationID: "evaluateDesign",
		Method:      http.MethodPost,
		Path:        "/api/designs/{id}/evaluate",
		Summary:     "Evaluate a stored design",
		Description: "Computes model curves and, when traces are given, the measured transfer function and NEMI",
		Tags:        []string{"Evaluation"},
	}, analysisHandler.EvaluateDesign)

	huma.Register(api, huma.Operation{
		OperationID: "evaluateInline",
		Method:      http.MethodPost,
		Path:        "/api/evaluate",
		Summary:     "Evaluate an inline design",
		Tags:        []string{"Evaluation"},
	}, analysisHandler.EvaluateInline)

	huma.Register(api, huma.Operation{
		OperationID: "reduceTraces",
		Method:      http.MethodPost,
		Path:        "/api/reduce",
		Summary:     "Reduce calibration traces",
		Description: "Computes the measured transfer function and NEMI without a sensor model",
		Tags:        []string{"Evaluation"},
	}, analysisHandler.ReduceTraces)

	huma.Register(api, huma.Operation{
		OperationID: "createTraceUpload",
		Method:      http.MethodPost,
		Path:        "/api/traces",
		Summary:     "Create a trace upload",
		Description: "Returns a pre-signed URL for uploading an analyzer CSV export",
		Tags:        []string{"Evaluation"},
	}, analysisHandler.CreateTraceUpload)

	// Register catalog routes
	huma.Register(api, huma.Operation{
		OperationID: "getCatalog",
		Method:      http.MethodGet,
		Path:        "/api/catalog",
		Summary:     "List components",
		Description: "Returns the toroid, wire and AWG catalogs",
		Tags:        []string{"Catalog"},
	}, catalogHandler.GetCatalog)
}
