package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"schemebot/internal/session"
	"schemebot/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	sessions  *session.Store
	templates *template.Template

	cookie *securecookie.SecureCookie

	// how long a form post waits for its request before redirecting
	settleWindow time.Duration

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	sessions *session.Store,
) (*Service, error) {
	mux := flow.New()

	hashKey, blockKey, err := cookieKeys(config, logger)
	if err != nil {
		return nil, err
	}

	s := &Service{
		logger:       logger,
		config:       config,
		sessions:     sessions,
		cookie:       securecookie.New(hashKey, blockKey),
		settleWindow: 1500 * time.Millisecond,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	if config.SessionMaxAgeSec > 0 {
		s.cookie.MaxAge(config.SessionMaxAgeSec)
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	if err := s.buildRouter(mux); err != nil {
		return nil, err
	}

	// wraps the whole mux so unmatched paths are redirected and logged too
	s.handler = s.LoggingMiddleware(s.StripTrailingSlash(mux))
	s.server.Handler = s.handler

	return s, nil
}

func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) error {
	r.Group(func(r *flow.Mux) {
		r.Use(s.LoadSession)

		r.HandleFunc("/", s.handleHome, http.MethodGet)
		r.HandleFunc("/search", s.handlePostSearch, http.MethodPost)

		r.HandleFunc("/verify/open", s.handlePostVerifyOpen, http.MethodPost)
		r.HandleFunc("/verify/submit", s.handlePostVerifySubmit, http.MethodPost)
		r.HandleFunc("/verify/close", s.handlePostVerifyClose, http.MethodPost)
	})

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", promhttp.Handler(), http.MethodGet)

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		return fmt.Errorf("failed to mount static assets: %w", err)
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)

	return nil
}

func cookieKeys(config *types.Config, logger *logrus.Logger) ([]byte, []byte, error) {
	if config.CookieHashKey == "" || config.CookieBlockKey == "" {
		logger.Warn("cookie keys not configured, generating ephemeral keys; sessions will not survive a restart")
		return securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32), nil
	}

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, nil, fmt.Errorf("decode COOKIE_HASH_KEY: %w", err)
	}

	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, nil, fmt.Errorf("decode COOKIE_BLOCK_KEY: %w", err)
	}

	switch len(blockKey) {
	case 16, 24, 32:
	default:
		return nil, nil, fmt.Errorf("COOKIE_BLOCK_KEY must decode to 16, 24, or 32 bytes, got %d", len(blockKey))
	}

	return hashKey, blockKey, nil
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}
