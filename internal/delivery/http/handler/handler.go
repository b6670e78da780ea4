package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/user/phishguard/internal/delivery/http/request"
	"github.com/user/phishguard/internal/delivery/http/response"
	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/internal/usecase"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// CycleStarter launches a batch cycle without waiting for it.
type CycleStarter interface {
	StartCycle(ctx context.Context, done func(*entity.CycleResult, error)) error
}

type Handler struct {
	submissions *usecase.SubmissionUseCase
	cycles      CycleStarter
	keyTTL      time.Duration
	logger      *zap.Logger
}

func NewHandler(submissions *usecase.SubmissionUseCase, cycles CycleStarter, keyTTL time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		submissions: submissions,
		cycles:      cycles,
		keyTTL:      keyTTL,
		logger:      logger.Named("http"),
	}
}

func (h *Handler) HandleIssueAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.submissions.IssueAPIKey(r.Context())
	if err != nil {
		h.logger.Error("failed to issue api key", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.APIKeyResponse{
		APIKey:    key,
		ExpiresAt: time.Now().Add(h.keyTTL).UTC(),
	})
}

func (h *Handler) HandleSubmitURLs(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitURLsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DailyURLs == nil {
		h.writeJSONError(w, "daily_urls must be a list of URLs", http.StatusBadRequest)
		return
	}

	res, err := h.submissions.SubmitURLs(r.Context(), req.DailyURLs)
	if err != nil {
		if errors.Is(err, usecase.ErrNoURLs) {
			h.writeJSONError(w, "daily_urls contains no URLs", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to submit URLs", zap.Int("count", len(req.DailyURLs)), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.SubmitURLsResponse{
		Status:   "success",
		Message:  "URLs accepted",
		Received: res.Received,
		Added:    res.Added,
		Pending:  res.Pending,
	})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.submissions.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to read stats", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandlePending(w http.ResponseWriter, r *http.Request) {
	urls, err := h.submissions.PendingURLs(r.Context())
	if err != nil {
		h.logger.Error("failed to list pending URLs", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if urls == nil {
		urls = []string{}
	}
	h.writeJSON(w, http.StatusOK, response.PendingResponse{Count: len(urls), DailyURLs: urls})
}

func (h *Handler) HandleRecentRegistry(w http.ResponseWriter, r *http.Request) {
	// An unparsable limit falls back to the default.
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := h.submissions.RecentEntries(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list registry", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []*entity.RegistryEntry{}
	}
	h.writeJSON(w, http.StatusOK, response.RegistryResponse{Count: len(rows), Rows: rows})
}

func (h *Handler) HandleTriggerCycle(w http.ResponseWriter, r *http.Request) {
	err := h.cycles.StartCycle(context.WithoutCancel(r.Context()), func(res *entity.CycleResult, err error) {
		if err != nil {
			h.logger.Error("manually triggered cycle failed", zap.Error(err))
			return
		}
		h.logger.Info("manually triggered cycle finished", zap.String("cycle_id", res.ID))
	})
	if errors.Is(err, usecase.ErrCycleInProgress) {
		h.writeJSONError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Error("failed to start cycle", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusAccepted, response.CycleTriggerResponse{
		Status:  "accepted",
		Message: "batch cycle triggered",
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := response.JSON(w, status, data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
