package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/skillgraph/pkg/buildinfo"
	"github.com/matzehuels/skillgraph/pkg/catalog"
	"github.com/matzehuels/skillgraph/pkg/pipeline"
	"github.com/matzehuels/skillgraph/pkg/session"
)

// Config configures a Server. Only Store is required.
type Config struct {
	Addr           string
	AllowedOrigins []string

	Store   session.Store
	Runner  *pipeline.Runner
	Catalog catalog.Catalog
	Logger  *log.Logger

	// Metrics is served on /metrics when set.
	Metrics http.Handler

	// SessionTTL is the idle lifetime of a session. Zero keeps sessions
	// until they are deleted.
	SessionTTL time.Duration
}

// Server is the HTTP API.
type Server struct {
	cfg      Config
	store    session.Store
	runner   *pipeline.Runner
	catalog  catalog.Catalog
	logger   *log.Logger
	validate *validator.Validate
	locks    *keyedMutex
}

// New creates a server. Missing collaborators get defaults: the built-in
// catalog, a runner without cache and the default logger.
func New(cfg Config) *Server {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Catalog, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = session.NewMemoryStore()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return &Server{
		cfg:      cfg,
		store:    cfg.Store,
		runner:   cfg.Runner,
		catalog:  cfg.Catalog,
		logger:   cfg.Logger,
		validate: validator.New(),
		locks:    &keyedMutex{m: make(map[string]*lockEntry)},
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(instrument)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate", s.validateGraph)
		r.Post("/encode", s.encode)
		r.Post("/decode", s.decode)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.listSessions)
			r.Post("/", s.createSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.deleteSession)
				r.Get("/validate", s.validateSession)
				r.Post("/commit", s.commit)

				r.Post("/nodes", s.addNode)
				r.Delete("/nodes/{nodeID}", s.removeNode)
				r.Put("/nodes/{nodeID}/config", s.configureNode)
				r.Put("/nodes/{nodeID}/name", s.renameNode)
				r.Put("/nodes/{nodeID}/position", s.moveNode)

				r.Post("/edges", s.addEdge)
				r.Delete("/edges/{edgeID}", s.removeEdge)
			})
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": info.Version,
		"commit":  info.Short(),
	})
}

// keyedMutex serializes work per session id.
type keyedMutex struct {
	mu sync.Mutex
	m  map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.m[key]
	if !ok {
		e = &lockEntry{}
		k.m[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		if e.refs--; e.refs == 0 {
			delete(k.m, key)
		}
		k.mu.Unlock()
	}
}
