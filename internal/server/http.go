package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dashlite/dashlite/internal/config"
	"github.com/dashlite/dashlite/internal/server/middlewares"
	"github.com/dashlite/dashlite/pkg/certificates"
)

const (
	ProductionServer string = "prod"
	DevServer        string = "dev"
	apiV1            string = "/api/v1"
)

type Server struct {
	srv *http.Server
}

// NewServer assembles the HTTP server. Dev mode serves the JSON API over
// plain HTTP; prod mode additionally serves the viewer bundle and
// terminates TLS with a certificate minted at boot.
func NewServer(cfg *config.Configuration, registerHandlerFn func(router *gin.RouterGroup)) (*Server, error) {
	gin.SetMode(gin.DebugMode)
	if cfg.Server.ServerMode == ProductionServer {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Server.HTTPPort),
		Handler: engine,
	}

	if cfg.Server.ServerMode == ProductionServer {
		serveViewer(engine, cfg.Server.StaticsFolder)

		tlsConfig, err := selfSignedTLSConfig()
		if err != nil {
			return nil, err
		}
		srv.TLSConfig = tlsConfig
	}

	api := engine.Group(apiV1)
	api.Use(
		middlewares.Logger(),
		ginzap.RecoveryWithZap(zap.S().Desugar(), true),
	)
	registerHandlerFn(api)

	return &Server{srv: srv}, nil
}

// serveViewer mounts the dashboard viewer bundle. The viewer is a single
// page app, so every path that is neither an API call nor a bundled file
// falls back to index.html; that keeps links like /dashboards/sales
// shareable.
func serveViewer(engine *gin.Engine, folder string) {
	engine.Static("/assets", path.Join(folder, "assets"))
	engine.StaticFile("/", path.Join(folder, "index.html"))
	engine.StaticFile("/favicon.ico", path.Join(folder, "favicon.ico"))

	engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "API endpoint not found",
			})
			return
		}
		c.File(path.Join(folder, "index.html"))
	})
}

// selfSignedTLSConfig wraps a certificate minted for this process. The DER
// certificate and the key go into the config directly, no PEM round trip.
func selfSignedTLSConfig() (*tls.Config, error) {
	cert, key, err := certificates.GenerateSelfSignedCertificate(time.Now().AddDate(1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to generate server's certificates: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{cert.Raw},
			PrivateKey:  key,
		}},
		MinVersion: tls.VersionTLS12,
	}, nil
}

// Start serves until the listener fails or the server is stopped. TLS is
// used whenever a certificate was configured.
func (s *Server) Start(ctx context.Context) error {
	if s.srv.TLSConfig != nil {
		return s.srv.ListenAndServeTLS("", "")
	}
	return s.srv.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		zap.S().Errorw("server shutdown", "error", err)
	}
}
