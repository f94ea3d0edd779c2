package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/flood-risk-service/internal/assessment"
	"github.com/couchcryptid/flood-risk-service/internal/chart"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

const maxRequestBytes = 1 << 16

type regionSummary struct {
	Name          string `json:"name"`
	DistrictCount int    `json:"district_count"`
}

func (h *Handler) handleRegions(w http.ResponseWriter, _ *http.Request) {
	reg := h.svc.Registry()
	regions := reg.Regions()
	out := make([]regionSummary, 0, len(regions))
	for _, name := range regions {
		ds, _ := reg.Districts(name)
		out = append(out, regionSummary{Name: name, DistrictCount: len(ds)})
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"regions": out})
}

func (h *Handler) handleDistricts(w http.ResponseWriter, r *http.Request) {
	region := r.PathValue("region")
	ds, ok := h.svc.Registry().Districts(region)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown region %q", region))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"region": region, "districts": ds})
}

func (h *Handler) handleNearest(w http.ResponseWriter, r *http.Request) {
	lat, err := floatParam(r, "lat", math.NaN())
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		writeError(w, http.StatusBadRequest, "lat must be a number between -90 and 90")
		return
	}
	lon, err := floatParam(r, "lon", math.NaN())
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "lon must be a number between -180 and 180")
		return
	}

	d, km, ok := h.svc.Registry().Nearest(lat, lon)
	if !ok {
		writeError(w, http.StatusNotFound, "registry has no districts")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"district": d, "distance_km": km})
}

type assessmentRequest struct {
	Region     string   `json:"region"`
	District   string   `json:"district"`
	RainfallMM *float64 `json:"rainfall_mm"`
	ElevationM *float64 `json:"elevation_m"`
}

func (h *Handler) handleAssess(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()

	var body assessmentRequest
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if body.Region == "" || body.District == "" {
		writeError(w, http.StatusBadRequest, "region and district are required")
		return
	}

	req := assessment.Request{
		Region:     body.Region,
		District:   body.District,
		RainfallMM: assessment.DefaultRainfallMM,
		ElevationM: assessment.DefaultElevationM,
	}
	if body.RainfallMM != nil {
		req.RainfallMM = *body.RainfallMM
	}
	if body.ElevationM != nil {
		req.ElevationM = *body.ElevationM
	}
	// elevation+1 is the score denominator.
	if req.ElevationM <= -1 {
		writeError(w, http.StatusBadRequest, "elevation_m must be greater than -1")
		return
	}

	report, err := h.svc.Evaluate(r.Context(), h.settings, req)
	if errors.Is(err, assessment.ErrUnknownDistrict) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if errors.Is(err, assessment.ErrNonFiniteScore) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("assessment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "assessment failed")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	points, err := h.svc.HeatPoints(region)
	if errors.Is(err, assessment.ErrUnknownRegion) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "heatmap failed")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"points": points})
}

func (h *Handler) handleRainfallChart(w http.ResponseWriter, r *http.Request) {
	rainfall, err := floatParam(r, "rainfall_mm", assessment.DefaultRainfallMM)
	if err != nil {
		writeError(w, http.StatusBadRequest, "rainfall_mm must be a number")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, chart.RainfallProbability(rainfall))
}

func (h *Handler) handleTrendChart(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, chart.RainfallTrend())
}

func (h *Handler) handleSimulationChart(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, chart.RiskSimulation())
}

func (h *Handler) handleAdvisories(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"recommendations": domain.Recommendations(),
		"past_cases":      domain.PastFloodCases(),
	})
}

func (h *Handler) handleAttribution(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]string{
		"attribution": domain.Attribution,
		"source_url":  "https://www.data.go.kr/data/15007722/openapi.do",
		"license":     "KOGL Type 1",
	})
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	if h.snapshots == nil {
		writeError(w, http.StatusNotFound, "scheduled sweep is disabled")
		return
	}
	snap, ok := h.snapshots.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no sweep has completed yet")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

// floatParam parses a finite query parameter, returning fallback when absent.
func floatParam(r *http.Request, name string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be finite", name)
	}
	return v, nil
}
