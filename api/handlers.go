package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vianexus/terminal-connector/internal/registry"
	"github.com/vianexus/terminal-connector/pkg/errors"
)

// info answers the root probe the terminal's backend wizard fires when an
// operator pastes the connector URL.
func (s *Server) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "Vianexus Terminal Connector",
		"widgets": "/widgets.json",
		"health":  "/health",
	})
}

func (s *Server) health(c *gin.Context) {
	status := "ok"
	providerStatus := "ok"
	if s.provider != nil && !s.provider.Healthy() {
		// The connector itself is still serving; only the provider side is
		// degraded.
		providerStatus = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"provider": providerStatus,
	})
}

// widgets serves the discovery document.
func (s *Server) widgets(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Widgets())
}

// apps streams the operator-supplied apps manifest, when one is configured.
func (s *Server) apps(c *gin.Context) {
	if s.opts.AppsManifestPath == "" {
		writeNotFound(c, "no apps manifest configured")
		return
	}
	body, err := os.ReadFile(s.opts.AppsManifestPath)
	if err != nil {
		s.logger.Error("read apps manifest", zap.Error(err))
		writeError(c, errors.Internal(err))
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// widgetData runs one widget query and serializes the result in the shape
// the widget type promises: rows for tables, label/value pairs for metrics,
// a string for markdown.
func (s *Server) widgetData(c *gin.Context) {
	params := make(map[string]string, len(c.Request.URL.Query()))
	for key, vals := range c.Request.URL.Query() {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}

	result, err := s.service.Query(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		writeError(c, err)
		return
	}

	switch result.Type {
	case registry.TypeMetric:
		c.JSON(http.StatusOK, result.Metrics)
	case registry.TypeMarkdown:
		c.JSON(http.StatusOK, result.Markdown)
	default:
		c.JSON(http.StatusOK, result.Table)
	}
}
