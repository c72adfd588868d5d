// Package report exposes the reporting pipeline over HTTP. Filters arrive
// as query parameters; every endpoint accepts an optional ref=YYYY-MM-DD
// parameter pinning the reference date, which defaults to the server clock
// only here at the edge.
package report

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pawprint-labs/pawprint/internal/report"
	"github.com/pawprint-labs/pawprint/internal/report/aggregate"
	"github.com/pawprint-labs/pawprint/internal/report/drill"
)

type Handler struct {
	svc *report.Service
	now func() time.Time
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/overview", h.overview)
	r.Get("/table", h.table)
	r.Get("/chart", h.chart)
	r.Get("/drill", h.drill)
	r.Get("/metrics", h.metrics)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	f, ref := parseFilters(r, h.now)

	view, err := h.svc.Overview(r.Context(), f, ref)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, toOverviewResponse(view))
}

func (h *Handler) table(w http.ResponseWriter, r *http.Request) {
	dim := aggregate.Dimension(r.URL.Query().Get("dimension"))
	if dim == "" {
		http.Error(w, "dimension parameter is required", http.StatusBadRequest)
		return
	}

	f, ref := parseFilters(r, h.now)

	rows, err := h.svc.Table(r.Context(), f, dim, ref)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, tableResponse{Dimension: dim, Rows: rows})
}

func (h *Handler) chart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	dim := aggregate.Dimension(q.Get("dimension"))
	if dim == "" {
		http.Error(w, "dimension parameter is required", http.StatusBadRequest)
		return
	}

	metricID := q.Get("metric")
	if metricID == "" {
		http.Error(w, "metric parameter is required", http.StatusBadRequest)
		return
	}

	f, ref := parseFilters(r, h.now)

	points, err := h.svc.Chart(r.Context(), f, dim, metricID, ref)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, chartResponse{Dimension: dim, Metric: metricID, Points: points})
}

func (h *Handler) drill(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("key")
	if raw == "" {
		http.Error(w, "key parameter is required", http.StatusBadRequest)
		return
	}

	key, ok := drill.Parse(raw)
	if !ok {
		http.Error(w, "invalid drill key, expected kind:value", http.StatusBadRequest)
		return
	}

	f, ref := parseFilters(r, h.now)

	result, err := h.svc.Drill(r.Context(), f, key, ref)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, result)
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Definitions())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
