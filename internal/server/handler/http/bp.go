package http

import (
	"context"
	"net/http"

	"github.com/bpmonitor/capstone/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BPService defines the blood-pressure operations required by BPHandler.
type BPService interface {
	FindAllForUser(ctx context.Context, userID string) ([]models.BloodPressure, error)
	ImportSample(ctx context.Context, sample models.Sample) (*models.Sample, error)
	FindSampleDataForUser(ctx context.Context, userID string) ([]models.Sample, error)
}

// BPHandler serves /api/capstone.
type BPHandler struct {
	BPService BPService
	Logger    *zap.Logger
}

// GetAllBPForUser handles GET /user/{userId}/bp.
func (h *BPHandler) GetAllBPForUser(w http.ResponseWriter, r *http.Request) {
	records, err := h.BPService.FindAllForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		storageFailure(w, h.Logger, "find bp", err)
		return
	}
	writeJSON(w, records)
}

// GetSampleDataForUser handles GET /user/{userId}/sampledata.
func (h *BPHandler) GetSampleDataForUser(w http.ResponseWriter, r *http.Request) {
	samples, err := h.BPService.FindSampleDataForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		storageFailure(w, h.Logger, "find samples", err)
		return
	}
	writeJSON(w, samples)
}

// ImportSample handles POST /bp.
func (h *BPHandler) ImportSample(w http.ResponseWriter, r *http.Request) {
	var sample models.Sample
	if !decodeJSON(w, r, &sample) {
		return
	}

	created, err := h.BPService.ImportSample(r.Context(), sample)
	if err != nil {
		storageFailure(w, h.Logger, "import sample", err)
		return
	}
	writeJSON(w, created)
}
