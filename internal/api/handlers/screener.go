package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// Runner executes one screener batch on demand and persists its snapshot
type Runner interface {
	Refresh(ctx context.Context, id contracts.ScreenerID) (*contracts.Report, error)
}

// ScreenerHandler handles screener API endpoints
// ⭐ SSOT: 스크리너 API 핸들러는 이 구조체에서만
type ScreenerHandler struct {
	store  contracts.SnapshotStore
	runner Runner
	logger *logger.Logger
}

// NewScreenerHandler creates a new screener handler
func NewScreenerHandler(store contracts.SnapshotStore, runner Runner, log *logger.Logger) *ScreenerHandler {
	return &ScreenerHandler{
		store:  store,
		runner: runner,
		logger: log,
	}
}

// ScreenerInfo describes one available screener
type ScreenerInfo struct {
	ID    contracts.ScreenerID `json:"id"`
	Title string               `json:"title"`
}

// List returns the available screeners
// GET /api/screeners
func (h *ScreenerHandler) List(w http.ResponseWriter, r *http.Request) {
	out := make([]ScreenerInfo, 0, len(contracts.AllScreeners))
	for _, id := range contracts.AllScreeners {
		out = append(out, ScreenerInfo{ID: id, Title: id.Title()})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"screeners": out,
		"count":     len(out),
	})
}

// Latest returns the most recent snapshot of a screener
// GET /api/screeners/{id}
func (h *ScreenerHandler) Latest(w http.ResponseWriter, r *http.Request) {
	id, err := screenerID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.store.Latest(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("screener", string(id)).Error("Failed to load snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve snapshot")
		return
	}
	if report == nil {
		respondError(w, http.StatusNotFound, "No snapshot for "+string(id))
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Run executes a screener batch now and returns the fresh report
// POST /api/screeners/{id}/run
func (h *ScreenerHandler) Run(w http.ResponseWriter, r *http.Request) {
	id, err := screenerID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.runner == nil {
		respondError(w, http.StatusServiceUnavailable, "On-demand runs are disabled")
		return
	}

	log := h.logger.WithField("screener", string(id))
	log.Info("On-demand screener run requested")

	report, err := h.runner.Refresh(r.Context(), id)
	if err != nil && report == nil {
		log.WithError(err).Error("Screener run failed")
		respondError(w, statusFor(err), err.Error())
		return
	}
	if err != nil {
		// 결과는 정상, 저장만 실패
		log.WithError(err).Warn("Snapshot not persisted")
	}

	respondJSON(w, http.StatusOK, report)
}
