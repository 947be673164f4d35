package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"biolink/internal/images"
)

// HandleUploadImage stores an uploaded image and returns its reference
func (s *Server) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		respondError(w, http.StatusServiceUnavailable, "image storage not configured", "unavailable")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field", "invalid_request")
		return
	}
	defer file.Close()

	ref, err := s.images.Save(file)
	if err != nil {
		switch {
		case errors.Is(err, images.ErrTooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, "image too large", "too_large")
		case errors.Is(err, images.ErrUnsupportedType):
			respondError(w, http.StatusUnsupportedMediaType, "unsupported image type", "unsupported_type")
		default:
			s.logger.Error("Failed to store image", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to store image", "internal_error")
		}
		return
	}

	respondJSON(w, http.StatusCreated, ref)
}

// HandleServeImage streams a stored image
func (s *Server) HandleServeImage(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		respondError(w, http.StatusServiceUnavailable, "image storage not configured", "unavailable")
		return
	}

	name := chi.URLParam(r, "name")
	path, err := s.images.Path(name)
	if err != nil {
		respondError(w, http.StatusNotFound, "image not found", "not_found")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}

// HandleDeleteImage removes a stored image
func (s *Server) HandleDeleteImage(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		respondError(w, http.StatusServiceUnavailable, "image storage not configured", "unavailable")
		return
	}

	name := chi.URLParam(r, "name")
	if err := s.images.Delete(name); err != nil {
		if errors.Is(err, images.ErrNotFound) {
			respondError(w, http.StatusNotFound, "image not found", "not_found")
			return
		}
		s.logger.Error("Failed to delete image", zap.Error(err), zap.String("name", name))
		respondError(w, http.StatusInternalServerError, "failed to delete image", "internal_error")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
