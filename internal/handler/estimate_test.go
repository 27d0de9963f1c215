package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cleberrangel/estimate-histogram-api/internal/config"
	"github.com/cleberrangel/estimate-histogram-api/internal/model"
	"github.com/cleberrangel/estimate-histogram-api/internal/repository"
	"github.com/cleberrangel/estimate-histogram-api/internal/service"
	"github.com/gin-gonic/gin"
)

// newTestRouter monta o router com serviços em memória, sem banco nem hub
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	estimateRepo := repository.NewEstimateRepository()
	holder := repository.NewSampleHolder()
	histService := service.NewHistogramService()

	estimateService := service.NewEstimateService(estimateRepo, nil)
	samplingService := service.NewSamplingService(
		service.NewSamplerService(config.SamplerModeLegacy),
		holder,
		histService,
		nil,
		service.SamplingDefaults{Count: 2000, Min: 0, Max: 10, Buckets: 40},
	)

	estimateHandler := NewEstimateHandler(estimateService, samplingService, service.NewExcelExporter())
	sampleHandler := NewSampleHandler(samplingService)

	router := gin.New()
	v1 := router.Group("/api/v1")
	{
		v1.GET("/estimates", estimateHandler.List)
		v1.POST("/estimates", estimateHandler.Create)
		v1.GET("/estimates/export", estimateHandler.Export)
		v1.DELETE("/estimates/:id", estimateHandler.Delete)
		v1.PATCH("/estimates/:id", estimateHandler.Update)

		v1.POST("/samples", sampleHandler.Resample)
		v1.GET("/samples", sampleHandler.Current)
		v1.GET("/histogram", sampleHandler.Histogram)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEstimates(t *testing.T, w *httptest.ResponseRecorder) []model.Estimate {
	t.Helper()
	var resp struct {
		Success bool             `json:"success"`
		Data    []model.Estimate `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.Data
}

func decodeEstimate(t *testing.T, w *httptest.ResponseRecorder) model.Estimate {
	t.Helper()
	var resp struct {
		Success bool           `json:"success"`
		Data    model.Estimate `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.Data
}

func TestEstimateLifecycle(t *testing.T) {
	router := newTestRouter()

	// Coleção começa vazia
	w := doJSON(t, router, "GET", "/api/v1/estimates", "")
	if w.Code != http.StatusOK {
		t.Fatalf("List returned %d", w.Code)
	}
	if got := decodeEstimates(t, w); len(got) != 0 {
		t.Fatalf("Expected empty collection, got %d", len(got))
	}

	// Duas criações geram IDs sequenciais com defaults
	w = doJSON(t, router, "POST", "/api/v1/estimates", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Create returned %d", w.Code)
	}
	first := decodeEstimate(t, w)
	if first.ID != 1 || first.Min != 0 || first.Max != 10 || first.Description != "" {
		t.Errorf("Unexpected first estimate: %+v", first)
	}

	w = doJSON(t, router, "POST", "/api/v1/estimates", "")
	second := decodeEstimate(t, w)
	if second.ID != 2 {
		t.Errorf("Expected ID 2, got %d", second.ID)
	}

	// Edição altera só o campo alvo
	w = doJSON(t, router, "PATCH", "/api/v1/estimates/2",
		`{"field":"description","value":"latência p99"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Update returned %d: %s", w.Code, w.Body.String())
	}
	updated := decodeEstimate(t, w)
	if updated.Description != "latência p99" || updated.Min != 0 || updated.Max != 10 {
		t.Errorf("Unexpected updated estimate: %+v", updated)
	}

	// Remoção preserva a ordenação do restante
	w = doJSON(t, router, "DELETE", "/api/v1/estimates/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Delete returned %d", w.Code)
	}
	w = doJSON(t, router, "GET", "/api/v1/estimates", "")
	remaining := decodeEstimates(t, w)
	if len(remaining) != 1 || remaining[0].ID != 2 {
		t.Errorf("Expected only estimate 2, got %+v", remaining)
	}
}

func TestUpdateSilentCoercions(t *testing.T) {
	router := newTestRouter()
	doJSON(t, router, "POST", "/api/v1/estimates", "")

	// Texto não numérico em campo numérico vira 0.0
	w := doJSON(t, router, "PATCH", "/api/v1/estimates/1",
		`{"field":"min","value":"abc"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Update returned %d", w.Code)
	}
	if est := decodeEstimate(t, w); est.Min != 0 {
		t.Errorf("Invalid number should coerce to 0, got %g", est.Min)
	}

	// Vírgula decimal não é aceita
	w = doJSON(t, router, "PATCH", "/api/v1/estimates/1",
		`{"field":"max","value":"12,5"}`)
	if est := decodeEstimate(t, w); est.Max != 0 {
		t.Errorf("Comma decimal should coerce to 0, got %g", est.Max)
	}

	// Número válido é aplicado
	w = doJSON(t, router, "PATCH", "/api/v1/estimates/1",
		`{"field":"max","value":"7.25"}`)
	if est := decodeEstimate(t, w); est.Max != 7.25 {
		t.Errorf("Expected max 7.25, got %g", est.Max)
	}
}

func TestUpdateAbsentIDFabricatesRecord(t *testing.T) {
	router := newTestRouter()

	// Edição de ID inexistente cria o registro zerado e aplica o campo
	w := doJSON(t, router, "PATCH", "/api/v1/estimates/42",
		`{"field":"description","value":"fantasma"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Update returned %d: %s", w.Code, w.Body.String())
	}
	est := decodeEstimate(t, w)
	if est.ID != 42 || est.Description != "fantasma" || est.Min != 0 || est.Max != 0 {
		t.Errorf("Unexpected fabricated estimate: %+v", est)
	}

	w = doJSON(t, router, "GET", "/api/v1/estimates", "")
	if got := decodeEstimates(t, w); len(got) != 1 || got[0].ID != 42 {
		t.Errorf("Fabricated record should persist in the collection: %+v", got)
	}
}

func TestUpdateRejectsUnknownField(t *testing.T) {
	router := newTestRouter()
	doJSON(t, router, "POST", "/api/v1/estimates", "")

	w := doJSON(t, router, "PATCH", "/api/v1/estimates/1",
		`{"field":"cor","value":"azul"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Unknown field should return 400, got %d", w.Code)
	}

	w = doJSON(t, router, "PATCH", "/api/v1/estimates/1", `{"value":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Missing field should return 400, got %d", w.Code)
	}
}

func TestDeleteIsAlwaysSuccessful(t *testing.T) {
	router := newTestRouter()

	// ID inexistente e ID não numérico respondem sucesso
	for _, id := range []string{"99", "abc"} {
		w := doJSON(t, router, "DELETE", "/api/v1/estimates/"+id, "")
		if w.Code != http.StatusOK {
			t.Errorf("Delete %q should return 200, got %d", id, w.Code)
		}
	}
}

func TestResampleEndpoint(t *testing.T) {
	router := newTestRouter()

	// Corpo vazio cai nos defaults
	w := doJSON(t, router, "POST", "/api/v1/samples", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Resample returned %d", w.Code)
	}
	var resp struct {
		Data model.SampleSet `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Data.Count != 2000 || resp.Data.Version != 1 {
		t.Errorf("Unexpected default run: count=%d version=%d", resp.Data.Count, resp.Data.Version)
	}

	// Payload malformado é tratado como vazio, nunca rejeitado
	w = doJSON(t, router, "POST", "/api/v1/samples", `{invalid`)
	if w.Code != http.StatusOK {
		t.Errorf("Malformed body should still return 200, got %d", w.Code)
	}

	// Parâmetros explícitos são respeitados
	w = doJSON(t, router, "POST", "/api/v1/samples",
		`{"count":1500,"min":1,"max":3,"seed":42}`)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Data.Count != 1500 || resp.Data.Min != 1 || resp.Data.Max != 3 {
		t.Errorf("Unexpected explicit run: %+v", resp.Data)
	}
}

func TestHistogramEndpoint(t *testing.T) {
	router := newTestRouter()
	doJSON(t, router, "POST", "/api/v1/samples", `{"count":2000}`)

	w := doJSON(t, router, "GET", "/api/v1/histogram?buckets=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Histogram returned %d", w.Code)
	}
	var resp struct {
		Data model.Histogram `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Data.Buckets) != 10 || resp.Data.Total != 2000 {
		t.Errorf("Unexpected histogram: buckets=%d total=%d", len(resp.Data.Buckets), resp.Data.Total)
	}

	// Query inválida cai nos defaults em vez de falhar
	w = doJSON(t, router, "GET", "/api/v1/histogram?min=abc&buckets=xyz", "")
	if w.Code != http.StatusOK {
		t.Errorf("Invalid query should fall back to defaults, got %d", w.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	router := newTestRouter()
	doJSON(t, router, "POST", "/api/v1/estimates", "")
	doJSON(t, router, "POST", "/api/v1/samples", `{"count":1000}`)

	w := doJSON(t, router, "GET", "/api/v1/estimates/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Export returned %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "estimativas_") {
		t.Errorf("Unexpected content disposition: %s", cd)
	}
	if w.Body.Len() == 0 {
		t.Error("Export body should not be empty")
	}
}
