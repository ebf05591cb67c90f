// Package server is the console's web UI: server-rendered pages over the
// aggregator clients, with navigation guarded by the auth manager.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eventhub/admin-console/aggregator"
	"github.com/eventhub/admin-console/auth"
	"github.com/eventhub/admin-console/internal/config"
)

// API is the slice of the protected platform client the handlers use.
type API interface {
	ListEvents(ctx context.Context) ([]aggregator.Event, error)
	GetEvent(ctx context.Context, id string) (*aggregator.Event, error)
	CreateEvent(ctx context.Context, input aggregator.EventInput) (*aggregator.Event, error)
	UpdateEvent(ctx context.Context, id string, input aggregator.EventInput) (*aggregator.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]aggregator.Category, error)
	GetCategory(ctx context.Context, id string) (*aggregator.Category, error)
	CreateCategory(ctx context.Context, input aggregator.CategoryInput) (*aggregator.Category, error)
	UpdateCategory(ctx context.Context, id string, input aggregator.CategoryInput) (*aggregator.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	Revoke(ctx context.Context) error
}

// Registrar creates platform accounts via the user service.
type Registrar interface {
	Register(ctx context.Context, req aggregator.RegisterRequest) error
}

var (
	_ API       = (*aggregator.Client)(nil)
	_ Registrar = (*aggregator.AuthClient)(nil)
)

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	manager   *auth.Manager
	api       API
	registrar Registrar
	csrf      *csrfTokens
	logger    zerolog.Logger
}

func New(cfg config.Config, manager *auth.Manager, api API, registrar Registrar, logger zerolog.Logger) (*Server, error) {
	if manager == nil {
		return nil, fmt.Errorf("[Server New] nil auth manager")
	}
	if api == nil {
		return nil, fmt.Errorf("[Server New] nil platform client")
	}
	if registrar == nil {
		return nil, fmt.Errorf("[Server New] nil registrar")
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		manager:   manager,
		api:       api,
		registrar: registrar,
		csrf:      newCSRFTokens(),
		logger:    logger.With().Str("component", "server").Logger(),
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

func logError(method, path, error string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	errorString := Red + error + ResetColor
	log.Printf("[%-19s] %s %s\n", displayMethod, path, errorString)
}
