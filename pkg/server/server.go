// Package server exposes the RAG pipeline and the ICD-10 search service
// over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	rag "github.com/yilane/rag-related"
	"github.com/yilane/rag-related/pkg/config"
	"github.com/yilane/rag-related/pkg/icd10"
	"github.com/yilane/rag-related/pkg/server/handlers"
)

// Server is the HTTP server.
type Server struct {
	config *config.Config
	router *gin.Engine
	client rag.RAG
	icd10  *icd10.Service
	server *http.Server
}

// New creates a server. icd10Service may be nil when the disease index is
// not configured; its routes then return 404.
func New(cfg *config.Config, client rag.RAG, icd10Service *icd10.Service) *Server {
	return &Server{
		config: cfg,
		client: client,
		icd10:  icd10Service,
	}
}

// Setup builds the router, middleware, and routes.
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler()
	searchHandler := handlers.NewSearchHandler(s.client)

	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/live", healthHandler.LivenessCheck)
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/documents", searchHandler.IndexDocuments)
		v1.POST("/search", searchHandler.Search)
		v1.POST("/answer", searchHandler.Answer)

		if s.icd10 != nil {
			icd10Handler := handlers.NewICD10Handler(s.icd10)
			group := v1.Group("/icd10")
			{
				group.POST("/search", icd10Handler.Search)
				group.GET("/codes/:code", icd10Handler.Detail)
			}
		}
	}
}

// Router returns the configured router. Setup must run first.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds permissive CORS headers.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
