// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcpserver exposes the engine facade as Model Context Protocol
// tools over stdio or streamable HTTP.
package mcpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/pdiddy/unified-search/pkg/types"
)

// Version is reported in the MCP implementation info.
var Version = "dev"

// ErrNoEngine is returned by New without a facade.
var ErrNoEngine = errors.New("mcpserver: engine is required")

// Facade is the engine surface the tools call.
type Facade interface {
	SearchWeb(ctx context.Context, req types.SearchRequest) types.Envelope[types.SearchResponse]
	SearchPapers(ctx context.Context, req types.SearchRequest) types.Envelope[types.SearchResponse]
	Download(ctx context.Context, req types.DownloadRequest) types.Envelope[types.DownloadResult]
	Read(ctx context.Context, req types.ReadRequest) types.Envelope[types.ReadResult]
	Extract(ctx context.Context, req types.ExtractRequest) types.Envelope[types.ContentResult]
	Crawl(ctx context.Context, req types.CrawlRequest) types.Envelope[types.ContentResult]
	Map(ctx context.Context, req types.MapRequest) types.Envelope[types.ContentResult]
	Providers() types.Envelope[[]types.ProviderInfo]
}

// Server is the MCP server.
type Server struct {
	engine  Facade
	server  *mcp.Server
	logger  *zap.Logger
	metrics http.Handler
	origins []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsHandler mounts h at /metrics on the HTTP transport.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithAllowedOrigins sets the CORS origins of the HTTP transport. The
// default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// New creates a server with every tool registered.
func New(engine Facade, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}
	s := &Server{
		engine:  engine,
		logger:  zap.NewNop(),
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = mcp.NewServer(&mcp.Implementation{Name: "unified-search", Version: Version}, nil)
	s.registerTools()
	return s, nil
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server { return s.server }

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the HTTP routes: the streamable MCP endpoint at /mcp,
// a liveness check at /healthz, and /metrics when configured.
func (s *Server) Handler() http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
	})

	mux := http.NewServeMux()
	mux.Handle("/mcp", c.Handler(streamable))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// RunHTTP serves Handler on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving MCP over HTTP", zap.String("addr", addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
