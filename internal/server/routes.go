package server

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/rwfcodec/internal/config"
	"github.com/danmuck/rwfcodec/internal/inspect"
	"github.com/danmuck/rwfcodec/internal/rwf"
)

var (
	ErrBodyTooLarge    = errors.New("request body too large")
	ErrUnknownEncoding = errors.New("unsupported content encoding")
)

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": serviceName,
			"rwf":     fmt.Sprintf("%d.%d", s.codec.MajorVersion, s.codec.MinorVersion),
		})
	})
	if s.inspect.Metrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := s.router.Group("/v1")
	v1.POST("/decode/:container", s.handleDecode)
	v1.POST("/encode/:container", s.handleEncode)
	v1.GET("/setdefs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"setdefs": s.Registry.List()})
	})
	v1.PUT("/setdefs/:kind/:name", s.handlePutSetDefs)
	v1.DELETE("/setdefs/:kind/:name", func(c *gin.Context) {
		if !s.Registry.Delete(c.Param("kind"), c.Param("name")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "setdefs not found"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}

type setDefsRequest struct {
	Sets []config.SetDefConfig `json:"sets"`
}

func (s *Server) handlePutSetDefs(c *gin.Context) {
	kind, name := c.Param("kind"), c.Param("name")
	if kind != config.KindFields && kind != config.KindElements {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown setdefs kind %q", kind)})
		return
	}
	var req setDefsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Registry.Put(config.SetDefsConfig{Name: name, Kind: kind, Sets: req.Sets}); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "kind": kind, "name": name, "sets": len(req.Sets)})
}

type encodeRequest struct {
	Entries []inspect.Value `json:"entries"`
}

// handleEncode builds a field or element list from string values and
// answers with hex, or with the raw octets when raw is set.
func (s *Server) handleEncode(c *gin.Context) {
	container, ok := rwf.ParseDataType(strings.ToUpper(c.Param("container")))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown container %q", c.Param("container"))})
		return
	}
	var req encodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b := &inspect.Builder{
		InitialSize: s.codec.InitialBufferSize,
		MaxSize:     s.codec.MaxBufferSize,
		Major:       s.codec.MajorVersion,
		Minor:       s.codec.MinorVersion,
	}
	p, err := b.Build(container, req.Entries)
	switch {
	case errors.Is(err, inspect.ErrBadValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, rwf.BufferTooSmall):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error(), "code": rwf.CodeOf(err).String()})
		return
	case err != nil:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": rwf.CodeOf(err).String()})
		return
	}
	if c.Query("raw") != "" {
		c.Data(http.StatusOK, "application/octet-stream", p)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"container": container.String(),
		"bytes":     len(p),
		"hex":       hex.EncodeToString(p),
	})
}

// handleDecode walks the request body as the container named in the path.
// Query parameters: fields and elements name stored databases; each type
// parameter ("22:REAL") types a standard field entry.
func (s *Server) handleDecode(c *gin.Context) {
	container, ok := rwf.ParseDataType(strings.ToUpper(c.Param("container")))
	if !ok || container == rwf.DataTypeUnknown {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown container %q", c.Param("container"))})
		return
	}

	w := &inspect.Walker{
		MaxDepth: s.codec.MaxDepth,
		Major:    s.codec.MajorVersion,
		Minor:    s.codec.MinorVersion,
	}
	if name := c.Query("fields"); name != "" {
		if w.Fields, ok = s.Registry.Fields(name); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("fields setdefs %q not found", name)})
			return
		}
	}
	if name := c.Query("elements"); name != "" {
		if w.Elements, ok = s.Registry.Elements(name); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("elements setdefs %q not found", name)})
			return
		}
	}
	types, err := inspect.ParseFieldTypes(c.QueryArray("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w.FieldTypes = types

	payload, err := s.readBody(c.Writer, c.Request)
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrUnknownEncoding):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tree, err := w.Walk(payload, container)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
			"code":  rwf.CodeOf(err).String(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"container": container.String(),
		"bytes":     len(payload),
		"tree":      tree,
	})
}

// readBody reads at most max_body_bytes of payload, after brotli
// decompression when the body is sent with Content-Encoding: br.
func (s *Server) readBody(rw http.ResponseWriter, req *http.Request) ([]byte, error) {
	limit := s.inspect.MaxBodyBytes
	var body io.Reader = http.MaxBytesReader(rw, req.Body, limit)
	switch enc := strings.ToLower(strings.TrimSpace(req.Header.Get("Content-Encoding"))); enc {
	case "", "identity":
	case "br":
		body = brotli.NewReader(body)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, enc)
	}
	p, err := io.ReadAll(io.LimitReader(body, limit+1))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || int64(len(p)) > limit {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return p, nil
}
