package assessment

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/afi-risk/pkg/features"
	"github.com/synaptica-ai/afi-risk/pkg/report"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	svc, _ := newTestService(t, nil)
	router := mux.NewRouter()
	NewHTTPHandler(svc, 1<<20).Register(router.PathPrefix("/api/v1").Subrouter())
	return router
}

func do(router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func submit(t *testing.T, router http.Handler, view string, edit func(features.Record)) *httptest.ResponseRecorder {
	t.Helper()
	inputs := features.DefaultSchema().DefaultRecord()
	if edit != nil {
		edit(inputs)
	}
	body, err := json.Marshal(Request{View: view, Inputs: inputs})
	require.NoError(t, err)
	return do(router, http.MethodPost, "/api/v1/assessments", body)
}

func TestAssessmentLifecycle(t *testing.T) {
	router := newTestRouter(t)

	created := submit(t, router, "model", func(r features.Record) {
		r["Renal"] = features.Label("Dialysis")
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var resp Response
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "High Risk", string(resp.Tier))
	assert.Equal(t, "High Risk of Mortality", resp.Outcome)
	require.NotEmpty(t, resp.Table)
	assert.Equal(t, "Renal", resp.Table[0].Feature)
	assert.Equal(t, "-5.00", resp.Table[0].RiskImpact)
	require.NotNil(t, resp.Table[0].RiskWeight)
	assert.Equal(t, report.SignCaption, resp.SignCaption)
	assert.Equal(t, "/api/v1/assessments/"+resp.ID, created.Header().Get("Location"))

	clinical := do(router, http.MethodGet, "/api/v1/assessments/"+resp.ID+"?view=clinical", nil)
	require.Equal(t, http.StatusOK, clinical.Code)
	assert.NotContains(t, clinical.Body.String(), "risk_weight")
	assert.Contains(t, clinical.Body.String(), `"view":"clinical"`)

	pdf := do(router, http.MethodGet, "/api/v1/assessments/"+resp.ID+"/report.pdf", nil)
	require.Equal(t, http.StatusOK, pdf.Code)
	assert.Equal(t, "application/pdf", pdf.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(pdf.Body.String(), "%PDF-"))

	chart := do(router, http.MethodGet, "/api/v1/assessments/"+resp.ID+"/chart.png", nil)
	require.Equal(t, http.StatusOK, chart.Code)
	assert.Equal(t, "image/png", chart.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(chart.Body.String(), "\x89PNG"))

	reset := do(router, http.MethodDelete, "/api/v1/assessments/"+resp.ID, nil)
	assert.Equal(t, http.StatusNoContent, reset.Code)

	gone := do(router, http.MethodGet, "/api/v1/assessments/"+resp.ID, nil)
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestAssessRejectsMalformedJSON(t *testing.T) {
	router := newTestRouter(t)
	rec := do(router, http.MethodPost, "/api/v1/assessments", []byte(`{"inputs":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssessReportsFailingStage(t *testing.T) {
	router := newTestRouter(t)
	rec := submit(t, router, "", func(r features.Record) {
		r["Airway & breathing"] = features.Label("Tracheostomy")
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, StageEncode, errResp.Stage)
	assert.Contains(t, errResp.Error, "Tracheostomy")
}

func TestFormListsOptions(t *testing.T) {
	router := newTestRouter(t)
	rec := do(router, http.MethodGet, "/api/v1/form", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Fields []features.FormField `json:"fields"`
		Views  []string             `json:"views"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Fields, len(features.DefaultSchema()))
	assert.Equal(t, []string{"model", "clinical"}, body.Views)
	for _, f := range body.Fields {
		if f.Name == "Renal" {
			assert.Equal(t, []string{"Dialysis", "AKI", "Normal"}, f.Options)
		}
	}
}

func TestUnknownAssessmentIsNotFound(t *testing.T) {
	router := newTestRouter(t)
	for _, path := range []string{
		"/api/v1/assessments/3b0f5a5e-8a0e-4bd7-9d0c-7a4a3a0f8f11",
		"/api/v1/assessments/not-a-uuid/report.pdf",
		"/api/v1/assessments/3b0f5a5e-8a0e-4bd7-9d0c-7a4a3a0f8f11/chart.png",
	} {
		rec := do(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
