package server

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/rwfcodec/internal/config"
	"github.com/danmuck/rwfcodec/internal/observability"
)

const serviceName = "rwfinspect"

// Server is the HTTP inspection service: it decodes posted RWF payloads
// into trees and keeps named global set definition databases for them.
type Server struct {
	Addr     string
	Appeared time.Time
	Registry *Registry

	codec   config.CodecConfig
	inspect config.InspectConfig
	router  *gin.Engine
}

// New builds a server from cfg and stores every database cfg declares.
func New(cfg config.Config) (*Server, error) {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(serviceName))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.Inspect.CorsOrigins),
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type", "Content-Encoding"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		Addr:     cfg.Inspect.Addr,
		Appeared: time.Now(),
		Registry: NewRegistry(),
		codec:    cfg.Codec,
		inspect:  cfg.Inspect,
		router:   r,
	}
	for _, db := range cfg.SetDefs {
		if err := s.Registry.Put(db); err != nil {
			return nil, fmt.Errorf("setdefs %s/%s: %w", db.Kind, db.Name, err)
		}
	}
	s.RegisterRoutes()
	return s, nil
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) Serve() error {
	log.Info().Str("addr", s.Addr).Msg("rwfinspect listening")
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
