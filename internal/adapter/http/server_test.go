package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/couchcryptid/flood-risk-service/internal/adapter/http"
	"github.com/couchcryptid/flood-risk-service/internal/assessment"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/sweep"
)

func testService(t *testing.T) *assessment.Service {
	t.Helper()
	reg, err := domain.NewRegistry([]domain.District{
		{Region: "서울특별시", Name: "강남구", Lat: 37.5172, Lon: 127.0473, GridX: 61, GridY: 126, BaselineDepth: 1.2},
		{Region: "서울특별시", Name: "종로구", Lat: 37.5735, Lon: 126.9790, GridX: 60, GridY: 127, BaselineDepth: 0.3},
		{Region: "부산광역시", Name: "해운대구", Lat: 35.1631, Lon: 129.1636, GridX: 99, GridY: 75, BaselineDepth: 0.8},
	})
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return assessment.New(reg, nil, domain.NewSeededDepthSimulator(42), nil, logger, observability.NewMetricsForTesting())
}

func newTestHandlerWith(t *testing.T, opts api.Options) *api.Handler {
	t.Helper()
	return api.NewHandler(opts, testService(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestHandler(t *testing.T) *api.Handler {
	return newTestHandlerWith(t, api.Options{})
}

func do(t *testing.T, srv http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegions(t *testing.T) {
	rec := do(t, newTestHandler(t), http.MethodGet, "/api/v1/regions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Regions []struct {
			Name          string `json:"name"`
			DistrictCount int    `json:"district_count"`
		} `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Regions, 2)
	assert.Equal(t, "서울특별시", body.Regions[0].Name)
	assert.Equal(t, 2, body.Regions[0].DistrictCount)
}

func TestDistricts(t *testing.T) {
	srv := newTestHandler(t)

	rec := do(t, srv, http.MethodGet, "/api/v1/regions/"+url.PathEscape("서울특별시")+"/districts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Districts []domain.District `json:"districts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Districts, 2)
	assert.Equal(t, "강남구", body.Districts[0].Name)
	assert.Equal(t, 61, body.Districts[0].GridX)

	rec = do(t, srv, http.MethodGet, "/api/v1/regions/"+url.PathEscape("울릉도")+"/districts", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNearest(t *testing.T) {
	srv := newTestHandler(t)

	rec := do(t, srv, http.MethodGet, "/api/v1/districts/nearest?lat=35.16&lon=129.16", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	district := body["district"].(map[string]any)
	assert.Equal(t, "해운대구", district["name"])

	rec = do(t, srv, http.MethodGet, "/api/v1/districts/nearest?lat=abc&lon=129", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, srv, http.MethodGet, "/api/v1/districts/nearest?lat=35", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssess_Defaults(t *testing.T) {
	rec := do(t, newTestHandler(t), http.MethodPost, "/api/v1/assessments",
		map[string]string{"region": "서울특별시", "district": "강남구"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report assessment.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 100.0, report.Assessment.RainfallMM)
	assert.Equal(t, 10.0, report.Assessment.ElevationM)
	assert.InDelta(t, 90.909, report.Assessment.RiskScore, 0.001)
	assert.True(t, report.Assessment.IsHighRisk)
	assert.Equal(t, domain.SourceFallback, report.Rainfall.Source)
	assert.Equal(t, domain.ReasonDisabled, report.Rainfall.Reason)
	assert.Equal(t, "강남구", report.District.Name)
}

func TestAssess_ExplicitInputs(t *testing.T) {
	rec := do(t, newTestHandler(t), http.MethodPost, "/api/v1/assessments",
		map[string]any{"region": "서울특별시", "district": "종로구", "rainfall_mm": 50, "elevation_m": 49})
	require.Equal(t, http.StatusOK, rec.Code)

	var report assessment.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 10.0, report.Assessment.RiskScore)
	assert.False(t, report.Assessment.IsHighRisk)
	assert.Equal(t, "저위험", report.Recommendation.Tier)
}

func TestAssess_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"malformed JSON", `{"region":`, http.StatusBadRequest},
		{"unknown field", `{"region":"서울특별시","district":"강남구","depth":1}`, http.StatusBadRequest},
		{"missing district", map[string]string{"region": "서울특별시"}, http.StatusBadRequest},
		{"elevation at minus one", map[string]any{"region": "서울특별시", "district": "강남구", "elevation_m": -1}, http.StatusBadRequest},
		{"unknown district", map[string]string{"region": "서울특별시", "district": "해운대구"}, http.StatusNotFound},
		{"score overflows", map[string]any{"region": "서울특별시", "district": "강남구", "rainfall_mm": 1e308, "elevation_m": 0}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestHandler(t), http.MethodPost, "/api/v1/assessments", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestAssess_MethodNotAllowed(t *testing.T) {
	rec := do(t, newTestHandler(t), http.MethodGet, "/api/v1/assessments", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHeatmap(t *testing.T) {
	srv := newTestHandler(t)

	rec := do(t, srv, http.MethodGet, "/api/v1/heatmap", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Points []domain.HeatmapPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Points, 3)

	rec = do(t, srv, http.MethodGet, "/api/v1/heatmap?region="+url.QueryEscape("부산광역시"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Points, 1)
	assert.InDelta(t, 8.0, body.Points[0].Weight, 1e-9)

	rec = do(t, srv, http.MethodGet, "/api/v1/heatmap?region=nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCharts(t *testing.T) {
	srv := newTestHandler(t)

	for _, path := range []string{
		"/api/v1/charts/rainfall",
		"/api/v1/charts/rainfall?rainfall_mm=150",
		"/api/v1/charts/trend",
		"/api/v1/charts/simulation",
	} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			body := decode(t, rec)
			assert.NotEmpty(t, body["title"])
			assert.NotEmpty(t, body["series"])
		})
	}

	rec := do(t, srv, http.MethodGet, "/api/v1/charts/rainfall?rainfall_mm=NaN", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdvisoriesAndAttribution(t *testing.T) {
	srv := newTestHandler(t)

	rec := do(t, srv, http.MethodGet, "/api/v1/advisories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["recommendations"], 3)
	assert.Len(t, body["past_cases"], 3)

	rec = do(t, srv, http.MethodGet, "/api/v1/attribution", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Attribution, decode(t, rec)["attribution"])
}

func TestAPIRateLimit(t *testing.T) {
	srv := newTestHandlerWith(t, api.Options{APIRateLimit: 2})

	for i := 0; i < 2; i++ {
		rec := do(t, srv, http.MethodGet, "/api/v1/regions", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, srv, http.MethodGet, "/api/v1/regions", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", decode(t, rec)["error"])
}

func TestAPIRateLimit_ZeroDisables(t *testing.T) {
	srv := newTestHandler(t)

	for i := 0; i < 50; i++ {
		rec := do(t, srv, http.MethodGet, "/api/v1/regions", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestSnapshot(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		rec := do(t, newTestHandler(t), http.MethodGet, "/api/v1/snapshot", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	svc := testService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sweeper := sweep.New(svc, domain.Settings{FloodSimulationEnabled: true}, time.Minute, logger, observability.NewMetricsForTesting())
	srv := api.NewHandler(api.Options{Snapshots: sweeper}, svc, logger)

	t.Run("before first sweep", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/snapshot", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	_, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)

	t.Run("after sweep", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/snapshot", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		assert.Len(t, body["reports"], 3)
		assert.EqualValues(t, 3, body["high_risk"])
		assert.NotEmpty(t, body["completed_at"])
	})
}
