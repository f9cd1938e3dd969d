package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"viewshed-explorer/internal/api"
	"viewshed-explorer/internal/api/explorer"
	"viewshed-explorer/internal/config"
	"viewshed-explorer/internal/db"
	"viewshed-explorer/internal/geoloc"
	"viewshed-explorer/internal/history"
	"viewshed-explorer/internal/metrics"
	"viewshed-explorer/internal/scenario"
	"viewshed-explorer/internal/session"
	"viewshed-explorer/internal/templates"
	"viewshed-explorer/internal/viewshed"
)

// Config holds the server configuration.
type Config struct {
	Host       string
	Port       string
	DataDir    string
	WebDir     string // Path to web/ directory for static files and templates
	ConfigFile string // Optional YAML config path
}

// Server is the viewshed explorer HTTP server.
type Server struct {
	config    Config
	appCfg    config.Config
	mux       *http.ServeMux
	humaAPI   huma.API
	db        *sql.DB
	sess      *session.Session
	orch      *session.Orchestrator
	scenarios *scenario.Store
	history   *history.Service
	metrics   *metrics.Metrics
	renderer  *templates.Renderer
}

// New creates a new explorer server.
func New(cfg Config) (*Server, error) {
	appCfg, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("viewshed-explorer API", "1.0.0")
	humaConfig.Info.Description = "Interactive viewshed exploration: pick an observer, tune parameters, compute the visible area."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	// Initialize template renderer for explorer SSE handlers
	var renderer *templates.Renderer
	if cfg.WebDir != "" {
		fragmentsDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if r, err := templates.New(fragmentsDir); err == nil {
			renderer = r
			fmt.Printf("Loaded fragment templates from %s\n", fragmentsDir)
		}
	}

	s := &Server{
		config:    cfg,
		appCfg:    appCfg,
		mux:       mux,
		humaAPI:   humaAPI,
		scenarios: scenario.NewStore(cfg.DataDir),
		metrics:   metrics.New(),
		renderer:  renderer,
	}

	// Initialize DuckDB connection; submission history is skipped when it
	// is unavailable.
	conn, err := db.Get(db.Config{
		DataDir: cfg.DataDir,
		DBName:  "viewshed",
	})
	if err == nil {
		s.db = conn
		if svc, err := history.NewService(conn); err == nil {
			s.history = svc
		} else {
			log.Printf("history disabled: %v", err)
		}
	}

	// The session starts at the configured viewport and is driven by the
	// orchestrator against the viewshed service and geolocation provider.
	s.sess = session.New(
		session.Coordinate{Lat: appCfg.Map.CenterLat, Lon: appCfg.Map.CenterLon},
		appCfg.Map.Zoom,
	)

	serviceURL := appCfg.ViewshedURL
	if serviceURL == "" {
		// Point the client at this server's own compute endpoint.
		serviceURL = fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port)
	}
	client := viewshed.NewClient(serviceURL)

	var locator geoloc.Provider
	if appCfg.Geolocation.Enabled {
		locator = geoloc.NewIPAPI(appCfg.Geolocation.Endpoint)
	}

	recorders := []session.Recorder{s.metrics}
	if s.history != nil {
		recorders = append(recorders, s.history)
	}
	s.orch = session.NewOrchestrator(s.sess, client, locator, recorders...)

	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close closes server resources.
func (s *Server) Close() error {
	return db.Close()
}

// OpenAPI returns the generated OpenAPI description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Orchestrator exposes the session driver, mainly for tests.
func (s *Server) Orchestrator() *session.Orchestrator {
	return s.orch
}

func (s *Server) routes() {
	// Huma REST API routes (OpenAPI-documented JSON endpoints)
	apiHandler := api.NewAPIHandler(&api.Services{
		Scenarios: s.scenarios,
		History:   s.history,
	})
	apiHandler.RegisterHealth(s.humaAPI)
	apiHandler.RegisterScenarios(s.humaAPI)
	if s.history != nil {
		apiHandler.RegisterHistory(s.humaAPI)
	}

	api.NewViewshedHandler().RegisterRoutes(s.humaAPI)
	api.NewInfoHandler(s.config.DataDir, s.db != nil).RegisterRoutes(s.humaAPI)

	// Explorer SSE routes using Huma + Datastar SDK
	if s.renderer != nil {
		explorer.NewHandler(s.orch, s.scenarios, s.renderer).RegisterRoutes(s.humaAPI)
		s.mux.HandleFunc("/api/v1/templates/reload", s.handleTemplatesReload)
	}

	s.mux.Handle("/metrics", s.metrics.Handler())

	// Static files and the map page
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	s.mux.HandleFunc("/explorer", s.handleExplorer)
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "viewshed-explorer",
		"status":  "running",
	})
}

// handleExplorer renders the map page with the current viewport so the map
// opens where the deployment (or the session so far) says it should.
func (s *Server) handleExplorer(w http.ResponseWriter, r *http.Request) {
	templatePath := filepath.Join(s.config.WebDir, "templates", "explorer.html")
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		http.Error(w, "Explorer page unavailable", http.StatusInternalServerError)
		return
	}

	snap := s.sess.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, map[string]any{
		"CenterLat": snap.Center.Lat,
		"CenterLon": snap.Center.Lon,
		"Zoom":      snap.Zoom,
	}); err != nil {
		log.Printf("rendering explorer page: %v", err)
	}
}

// handleTemplatesReload re-reads the fragment templates from disk, so
// fragment edits show up without a restart.
func (s *Server) handleTemplatesReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fragmentsDir := filepath.Join(s.config.WebDir, "templates", "fragments")
	if err := s.renderer.Reload(fragmentsDir); err != nil {
		http.Error(w, "Reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
