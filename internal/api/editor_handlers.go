package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"biolink/internal/content"
	"biolink/internal/draft"
	"biolink/internal/editor"
	"biolink/internal/store"
	"biolink/internal/theme"
)

// editorError maps domain errors onto HTTP replies.
func editorError(w http.ResponseWriter, err error) {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error(), "validation_error")
	case errors.Is(err, content.ErrUnknownType):
		respondError(w, http.StatusBadRequest, "unknown block type", "unknown_type")
	case errors.Is(err, content.ErrNotFound):
		respondError(w, http.StatusNotFound, "block not found", "not_found")
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found", "not_found")
	default:
		respondError(w, http.StatusInternalServerError, "internal error", "internal_error")
	}
}

func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated", "unauthorized")
		return nil, false
	}
	sess, err := s.session(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "page not found", "not_found")
			return nil, false
		}
		s.logger.Error("Failed to start editing session", zap.Error(err), zap.String("user_id", userID))
		respondError(w, http.StatusInternalServerError, "failed to start session", "internal_error")
		return nil, false
	}
	return sess, true
}

// EditorStateResponse is the full editing surface state
type EditorStateResponse struct {
	PageID string         `json:"page_id"`
	State  draft.State    `json:"state"`
	Dirty  bool           `json:"dirty"`
	UI     editor.UIState `json:"ui"`
}

func (s *Server) editorState(sess *editor.Session) EditorStateResponse {
	return EditorStateResponse{
		PageID: sess.PageID(),
		State:  sess.State(),
		Dirty:  sess.Dirty(),
		UI:     sess.UI(),
	}
}

// HandleEditorState reports the session's draft and UI state
func (s *Server) HandleEditorState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.editorState(sess))
}

// HandleEndEditorSession discards the session and its unsaved draft
func (s *Server) HandleEndEditorSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated", "unauthorized")
		return
	}
	s.dropSession(userID)
	respondJSON(w, http.StatusNoContent, nil)
}

// HandleEditorPreview renders the draft in edit mode
func (s *Server) HandleEditorPreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	doc, err := sess.Preview()
	if err != nil {
		editorError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// HandleEditorPublicPreview renders the draft the way visitors would see it
func (s *Server) HandleEditorPublicPreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	doc, err := sess.PublicPreview()
	if err != nil {
		editorError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// SubmitBlockRequest carries a block form submission. BlockID set
// means editing an existing block.
type SubmitBlockRequest struct {
	BlockID string           `json:"block_id,omitempty"`
	Type    content.Type     `json:"type"`
	Input   editor.FormInput `json:"input"`
}

// HandleSubmitBlock creates or edits a block through the form flow
func (s *Server) HandleSubmitBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req SubmitBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}

	if req.BlockID != "" {
		if err := sess.SelectBlock(req.BlockID); err != nil {
			editorError(w, err)
			return
		}
	} else {
		if err := sess.OpenForm(req.Type); err != nil {
			editorError(w, err)
			return
		}
	}

	b, err := sess.SubmitForm(req.Type, req.Input)
	if err != nil {
		editorError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

// MoveBlockRequest is the drop position of a drag gesture
type MoveBlockRequest struct {
	Target int `json:"target"`
}

// HandleMoveBlock reorders a block within the visible sequence
func (s *Server) HandleMoveBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var req MoveBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}
	if err := sess.MoveBlock(chi.URLParam(r, "blockId"), req.Target); err != nil {
		editorError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.editorState(sess))
}

// HandleToggleBlock flips a block's visibility
func (s *Server) HandleToggleBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if err := sess.ToggleBlock(chi.URLParam(r, "blockId")); err != nil {
		editorError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.editorState(sess))
}

// HandleDeleteBlock removes a block from the draft
func (s *Server) HandleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if err := sess.DeleteBlock(chi.URLParam(r, "blockId")); err != nil {
		editorError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.editorState(sess))
}

// AssignBlockRequest nests a block under a category ("" clears it)
type AssignBlockRequest struct {
	ParentID string `json:"parent_id"`
}

// HandleAssignBlock nests a block under a category block
func (s *Server) HandleAssignBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var req AssignBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}
	if err := sess.AssignToCategory(chi.URLParam(r, "blockId"), req.ParentID); err != nil {
		editorError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.editorState(sess))
}

// PageRequest is the full editable page record
type PageRequest struct {
	DisplayName     string             `json:"display_name"`
	Bio             string             `json:"bio"`
	AvatarImages    []content.ImageRef `json:"avatar_images"`
	Alignment       content.Alignment  `json:"alignment"`
	BrandColor      string             `json:"brand_color"`
	BackgroundColor string             `json:"background_color"`
	Theme           string             `json:"theme"`
	Language        string             `json:"language"`
	FooterText      string             `json:"footer_text"`
	MultiLanguage   bool               `json:"multi_language"`
	Live            bool               `json:"live"`
}

// HandleUpdateEditorPage replaces the draft's page settings
func (s *Server) HandleUpdateEditorPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var req PageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}

	if !theme.ID(req.Theme).Valid() {
		respondError(w, http.StatusBadRequest, "unknown theme "+req.Theme, "validation_error")
		return
	}
	err := sess.UpdatePage(func(p *content.Page) {
		p.Theme = req.Theme
		p.DisplayName = req.DisplayName
		p.Bio = req.Bio
		p.AvatarImages = req.AvatarImages
		p.Alignment = req.Alignment
		p.BrandColor = req.BrandColor
		p.BackgroundColor = req.BackgroundColor
		p.Language = req.Language
		p.FooterText = req.FooterText
		p.MultiLanguage = req.MultiLanguage
		p.Live = req.Live
	})
	if err != nil {
		editorError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.editorState(sess))
}

// SocialLinksRequest replaces the page's social link set
type SocialLinksRequest struct {
	Links []content.SocialLink `json:"links"`
}

// HandleSetSocialLinks replaces the draft's social links
func (s *Server) HandleSetSocialLinks(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var req SocialLinksRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "invalid_request")
		return
	}
	if err := sess.SetSocialLinks(req.Links); err != nil {
		editorError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.editorState(sess))
}

// HandleSaveDraft persists the draft
func (s *Server) HandleSaveDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if err := sess.Save(r.Context()); err != nil {
		s.logger.Error("Draft save failed", zap.Error(err), zap.String("page_id", sess.PageID()))
		respondError(w, http.StatusBadGateway, "failed to save draft", "save_failed")
		return
	}
	respondJSON(w, http.StatusOK, s.editorState(sess))
}
