package prediction

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/medlink/dosage-service/internal/artifacts"
	"github.com/medlink/dosage-service/internal/shared/errors"
)

// Handler provides HTTP handlers for the prediction module
type Handler struct {
	service *Service
	store   *artifacts.Store
	repo    *Repository // optional, history endpoints error when unset
}

// NewHandler creates a new prediction handler
func NewHandler(service *Service, store *artifacts.Store, repo *Repository) *Handler {
	return &Handler{service: service, store: store, repo: repo}
}

// Routes registers the prediction routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/predict", h.Predict)
	r.Get("/drugs", h.ListDrugs)
	r.Get("/health", h.Health)
	r.Get("/predictions", h.ListPredictions)
	r.Post("/artifacts/reload", h.ReloadArtifacts)

	return r
}

// Predict classifies one medication administration
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	result, err := h.service.Predict(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListDrugs returns the known drug names
func (h *Handler) ListDrugs(w http.ResponseWriter, r *http.Request) {
	drugs, err := h.service.KnownDrugs()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"drugs": drugs,
		"total": len(drugs),
	})
}

// Health reports whether the service can serve predictions
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.service.Health()

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// ListPredictions returns recently stored predictions
func (h *Handler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeError(w, errors.Internal(fmt.Errorf("prediction history is not enabled")))
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			writeError(w, errors.BadRequest("invalid limit"))
			return
		}
		limit = parsed
	}

	records, err := h.repo.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  records,
		"total": len(records),
	})
}

// ReloadArtifacts rebuilds the artifact bundle from disk. On failure the
// previous bundle keeps serving.
func (h *Handler) ReloadArtifacts(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Load(r.Context()); err != nil {
		log.Printf("artifact reload failed: %v", err)
		writeError(w, errors.Wrap(err, "artifact reload failed"))
		return
	}

	bundle, _ := h.store.Bundle()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "reloaded",
		"model":     bundle.ModelName,
		"loaded_at": bundle.LoadedAt,
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*errors.AppError); ok {
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
