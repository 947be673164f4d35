package api

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"biolink/internal/auth"
	"biolink/internal/config"
	"biolink/internal/content"
	"biolink/internal/db"
	"biolink/internal/draft"
	"biolink/internal/editor"
	"biolink/internal/images"
	"biolink/internal/preview"
	"biolink/internal/stats"
	"biolink/internal/store"
)

// Server holds the application dependencies
type Server struct {
	db     *db.DB
	store  *store.Store
	config *config.Config
	logger *zap.Logger

	auth   *auth.Service
	hub    *preview.Hub
	images *images.Store
	stats  *stats.Collector

	sessionsMu sync.Mutex
	sessions   map[string]*editor.Session // keyed by user id
}

// NewServer creates a new API server
func NewServer(database *db.DB, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		db:       database,
		store:    store.New(database),
		config:   cfg,
		logger:   logger,
		sessions: make(map[string]*editor.Session),
	}
}

// SetAuthService sets the auth service
func (s *Server) SetAuthService(authService *auth.Service) {
	s.auth = authService
}

// SetPreviewHub sets the live preview hub
func (s *Server) SetPreviewHub(hub *preview.Hub) {
	s.hub = hub
}

// SetImageStore sets the image store
func (s *Server) SetImageStore(imgs *images.Store) {
	s.images = imgs
}

// SetStatsCollector sets the stats collector
func (s *Server) SetStatsCollector(collector *stats.Collector) {
	s.stats = collector
}

// persistence adapts the store to the editing session's load and save
// contracts.
type persistence struct {
	store *store.Store
}

func (p persistence) PageByUser(ctx context.Context, userID string) (*content.Page, error) {
	return p.store.Pages.ByUserID(ctx, userID)
}

func (p persistence) Blocks(ctx context.Context, pageID string) ([]*content.Block, error) {
	return p.store.Blocks.ListByPage(ctx, pageID)
}

func (p persistence) SocialLinks(ctx context.Context, pageID string) ([]content.SocialLink, error) {
	return p.store.Socials.ListByPage(ctx, pageID)
}

func (p persistence) SavePage(ctx context.Context, page *content.Page) error {
	return p.store.Pages.Update(ctx, page)
}

func (p persistence) ReplaceBlocks(ctx context.Context, pageID string, blocks []*content.Block) error {
	return p.store.Blocks.ReplaceAll(ctx, pageID, blocks)
}

func (p persistence) ReplaceSocialLinks(ctx context.Context, pageID string, links []content.SocialLink) error {
	return p.store.Socials.ReplaceAll(ctx, pageID, links)
}

var _ editor.Loader = persistence{}
var _ draft.Saver = persistence{}

// session returns the user's editing session, starting one on first
// use. A session lives until the process stops or EndSession drops
// it; its draft survives across requests.
func (s *Server) session(ctx context.Context, userID string) (*editor.Session, error) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		return sess, nil
	}

	var notifier editor.Notifier
	if s.hub != nil {
		notifier = editor.NotifierFunc(s.hub.NotifyDraftChanged)
	}
	p := persistence{store: s.store}
	sess, err := editor.Start(ctx, userID, p, p, notifier, s.logger)
	if err != nil {
		return nil, err
	}
	s.sessions[userID] = sess
	return sess, nil
}

// dropSession discards a user's session and its draft.
func (s *Server) dropSession(userID string) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, userID)
}
