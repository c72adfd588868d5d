// Package ingestcsv accepts booking-platform CSV exports over HTTP and
// persists the parsed raw records.
package ingestcsv

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pawprint-labs/pawprint/internal/ingest"
	"github.com/pawprint-labs/pawprint/internal/raw"
)

// Writer persists ingested raw records.
type Writer interface {
	SaveAppointments(ctx context.Context, appts []raw.Appointment) error
	SaveTransactions(ctx context.Context, txns []raw.Transaction) error
}

type Handler struct {
	svc    *ingest.Service
	writer Writer
}

func NewHandler(svc *ingest.Service, writer Writer) *Handler {
	return &Handler{svc: svc, writer: writer}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/appointments", h.appointments)
	r.Post("/sales", h.sales)
}

type ingestSuccessResponse struct {
	Ingested int `json:"ingested"`
}

func (h *Handler) appointments(w http.ResponseWriter, r *http.Request) {
	platform, file, ok := parseUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	appts, err := h.svc.Appointments(platform, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.writer.SaveAppointments(r.Context(), appts); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeCreated(w, ingestSuccessResponse{Ingested: len(appts)})
}

func (h *Handler) sales(w http.ResponseWriter, r *http.Request) {
	platform, file, ok := parseUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	txns, err := h.svc.Sales(platform, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.writer.SaveTransactions(r.Context(), txns); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeCreated(w, ingestSuccessResponse{Ingested: len(txns)})
}

// parseUpload extracts the platform field and uploaded file from a
// multipart form, writing the error response itself on failure.
func parseUpload(w http.ResponseWriter, r *http.Request) (ingest.Platform, multipart.File, bool) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}

	platform := ingest.Platform(r.FormValue("platform"))
	if platform == "" {
		http.Error(w, "platform field is required", http.StatusBadRequest)
		return "", nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return "", nil, false
	}

	return platform, file, true
}

func writeCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
