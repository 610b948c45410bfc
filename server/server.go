package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-token-gateway/cart"
	"github.com/jrsteele09/go-token-gateway/coordinator"
	"github.com/jrsteele09/go-token-gateway/internal/config"
	"github.com/jrsteele09/go-token-gateway/internal/errors"
	"github.com/jrsteele09/go-token-gateway/sessions"
	"github.com/jrsteele09/go-token-gateway/upstream"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	refresher   *sessions.Refresher
	invalidator *sessions.Invalidator
	carts       *cart.Issuer
}

type options struct {
	coordinator coordinator.Coordinator
	httpClient  *http.Client
}

type Option func(*options)

// WithCoordinator sets how concurrent refresh and cart calls are collapsed. Defaults to an in-process coordinator.
func WithCoordinator(c coordinator.Coordinator) Option {
	return func(o *options) {
		o.coordinator = c
	}
}

// WithHTTPClient sets the client used for upstream calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func New(cfg config.Config, opts ...Option) (*Server, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.coordinator == nil {
		o.coordinator = coordinator.NewLocal()
	}

	if err := validateUpstreamURL(cfg.GetUpstreamBaseURL()); err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}

	var clientOpts []upstream.Option
	if o.httpClient != nil {
		clientOpts = append(clientOpts, upstream.WithHTTPClient(o.httpClient))
	}
	client := upstream.NewClient(cfg, clientOpts...)

	s := &Server{
		env:         cfg.GetEnv(),
		mux:         http.NewServeMux(),
		config:      cfg,
		refresher:   sessions.NewRefresher(client, o.coordinator, cfg, cfg),
		invalidator: sessions.NewInvalidator(client, cfg, cfg),
		carts:       cart.NewIssuer(client, o.coordinator, cfg),
	}

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
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

func validateUpstreamURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidConfig, "upstream base url %q: %v", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "upstream base url %q must be absolute http(s)", raw)
	}
	return nil
}
