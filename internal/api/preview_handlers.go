package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"biolink/internal/preview"
)

var previewUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS already gates the HTTP surface; the socket carries only
	// page ids, never content.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandlePreviewSocket upgrades to a WebSocket and joins the caller's
// page room; the client refetches the preview on every event.
func (s *Server) HandlePreviewSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "live preview not available", "unavailable")
		return
	}

	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	userID, _ := GetUserID(r)

	conn, err := previewUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Preview socket upgrade failed", zap.Error(err))
		return
	}

	client := &preview.Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 64),
	}
	s.hub.Join(client, sess.PageID())
}
