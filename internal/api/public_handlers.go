package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"biolink/internal/content"
	"biolink/internal/render"
	"biolink/internal/store"
)

// loadPublicPage fetches a live page by username. Pages taken offline
// are indistinguishable from missing ones.
func (s *Server) loadPublicPage(ctx context.Context, username string) (*content.Page, error) {
	page, err := s.store.Pages.ByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !page.Live {
		return nil, store.ErrNotFound
	}
	return page, nil
}

// HandlePublicPage renders a user's public page
func (s *Server) HandlePublicPage(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, err := s.loadPublicPage(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "page not found", "not_found")
			return
		}
		s.logger.Error("Failed to load public page", zap.Error(err), zap.String("username", username))
		respondError(w, http.StatusInternalServerError, "failed to load page", "internal_error")
		return
	}

	blocks, err := s.store.Blocks.ListByPage(ctx, page.ID)
	if err != nil {
		s.logger.Error("Failed to load blocks", zap.Error(err), zap.String("page_id", page.ID))
		respondError(w, http.StatusInternalServerError, "failed to load page", "internal_error")
		return
	}
	socials, err := s.store.Socials.ListByPage(ctx, page.ID)
	if err != nil {
		s.logger.Error("Failed to load social links", zap.Error(err), zap.String("page_id", page.ID))
		respondError(w, http.StatusInternalServerError, "failed to load page", "internal_error")
		return
	}

	if s.stats != nil {
		s.stats.View(page.ID)
	}

	doc := render.Page(page, content.NewList(blocks), socials, render.ModePublic)
	respondJSON(w, http.StatusOK, doc)
}

// HandleBlockClick counts a click on a public page's block
func (s *Server) HandleBlockClick(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	blockID := chi.URLParam(r, "blockId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, err := s.loadPublicPage(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "page not found", "not_found")
			return
		}
		s.logger.Error("Failed to load public page", zap.Error(err), zap.String("username", username))
		respondError(w, http.StatusInternalServerError, "failed to count click", "internal_error")
		return
	}

	if s.stats != nil {
		s.stats.Click(page.ID, blockID)
	}
	respondJSON(w, http.StatusAccepted, nil)
}

// HandlePageQR renders a QR code pointing at the public page
func (s *Server) HandlePageQR(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.loadPublicPage(ctx, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "page not found", "not_found")
			return
		}
		s.logger.Error("Failed to load public page", zap.Error(err), zap.String("username", username))
		respondError(w, http.StatusInternalServerError, "failed to render QR code", "internal_error")
		return
	}

	target := strings.TrimSuffix(s.config.PublicBaseURL, "/") + "/" + username
	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		s.logger.Error("Failed to encode QR code", zap.Error(err), zap.String("target", target))
		respondError(w, http.StatusInternalServerError, "failed to render QR code", "internal_error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
