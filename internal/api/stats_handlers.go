package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"biolink/internal/content"
	"biolink/internal/store"
)

func (s *Server) ownPage(w http.ResponseWriter, r *http.Request) (*content.Page, bool) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated", "unauthorized")
		return nil, false
	}
	page, err := s.store.Pages.ByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "page not found", "not_found")
			return nil, false
		}
		s.logger.Error("Failed to load page", zap.Error(err), zap.String("user_id", userID))
		respondError(w, http.StatusInternalServerError, "failed to load page", "internal_error")
		return nil, false
	}
	return page, true
}

// StatsSummaryResponse is the owner's per-day traffic report
type StatsSummaryResponse struct {
	PageID string             `json:"page_id"`
	Days   []store.DaySummary `json:"days"`
}

// HandleStatsSummary reports per-day views and clicks for the
// caller's page. Buffered counters are flushed first so the report
// includes up-to-the-minute traffic.
func (s *Server) HandleStatsSummary(w http.ResponseWriter, r *http.Request) {
	page, ok := s.ownPage(w, r)
	if !ok {
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 365 {
			respondError(w, http.StatusBadRequest, "days must be between 1 and 365", "validation_error")
			return
		}
		days = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if s.stats != nil {
		if err := s.stats.Flush(ctx); err != nil {
			s.logger.Warn("Stats flush before summary failed", zap.Error(err))
		}
	}

	summary, err := s.store.Stats.Summary(ctx, page.ID, days)
	if err != nil {
		s.logger.Error("Failed to load stats summary", zap.Error(err), zap.String("page_id", page.ID))
		respondError(w, http.StatusInternalServerError, "failed to load stats", "internal_error")
		return
	}

	respondJSON(w, http.StatusOK, StatsSummaryResponse{PageID: page.ID, Days: summary})
}

// HandleBlockStats reports total clicks per block for the caller's page
func (s *Server) HandleBlockStats(w http.ResponseWriter, r *http.Request) {
	page, ok := s.ownPage(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if s.stats != nil {
		if err := s.stats.Flush(ctx); err != nil {
			s.logger.Warn("Stats flush before block report failed", zap.Error(err))
		}
	}

	clicks, err := s.store.Stats.BlockClicks(ctx, page.ID)
	if err != nil {
		s.logger.Error("Failed to load block stats", zap.Error(err), zap.String("page_id", page.ID))
		respondError(w, http.StatusInternalServerError, "failed to load stats", "internal_error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"page_id": page.ID,
		"clicks":  clicks,
	})
}
