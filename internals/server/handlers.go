package server

import (
	"net/http"
	"strconv"
	"upwatch/internals/modules/reconciler"
	"upwatch/internals/modules/worker"
	"upwatch/pkg/apperror"
	"upwatch/pkg/redisstore"
	"upwatch/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handler exposes the read-only ops surface of a running shard.
type Handler struct {
	recon  *reconciler.Reconciler
	stats  *worker.Stats
	cache  *redisstore.Client // may be nil
	logger *zerolog.Logger
}

func NewHandler(recon *reconciler.Reconciler, stats *worker.Stats, cache *redisstore.Client, logger *zerolog.Logger) *Handler {
	return &Handler{
		recon:  recon,
		stats:  stats,
		cache:  cache,
		logger: logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type statusResponse struct {
	Workers     int   `json:"workers"`
	TotalChecks int64 `json:"total_checks"`
	Successes   int64 `json:"successes"`
	Failures    int64 `json:"failures"`
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	total, successes, failures := h.stats.Snapshot()
	utils.WriteJSON(w, http.StatusOK, reqID, "shard status", statusResponse{
		Workers:     h.recon.WorkerCount(),
		TotalChecks: total,
		Successes:   successes,
		Failures:    failures,
	})
}

func (h *Handler) Workers(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	utils.WriteJSON(w, http.StatusOK, reqID, "managed items", h.recon.WorkerIDs())
}

func (h *Handler) ItemStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	if h.cache == nil {
		utils.WriteError(w, http.StatusNotFound, reqID, apperror.NotFound, "status cache not configured")
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "item id must be an integer")
		return
	}

	status, err := h.cache.GetStatus(r.Context(), itemID)
	if err != nil {
		h.logger.Error().Err(err).Int64("item_id", itemID).Msg("status cache read failed")
		utils.WriteError(w, http.StatusBadGateway, reqID, apperror.Dependency, "status cache unavailable")
		return
	}
	if len(status) == 0 {
		utils.WriteError(w, http.StatusNotFound, reqID, apperror.NotFound, "no status recorded for item")
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "last check status", status)
}
