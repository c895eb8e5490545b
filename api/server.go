// Package api exposes the connector's HTTP surface to the terminal: the
// discovery document, one data endpoint per widget, and the operational
// endpoints (health, metrics). All terminal-facing routes sit behind the
// credential guard.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	limiter "github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"github.com/vianexus/terminal-connector/internal/auth"
	"github.com/vianexus/terminal-connector/internal/connector"
	"github.com/vianexus/terminal-connector/pkg/errors"
)

// ProviderHealth reports whether the last provider call succeeded. The
// upstream client implements it; tests stub it.
type ProviderHealth interface {
	Healthy() bool
}

// Options carries the request-independent server configuration.
type Options struct {
	Origins          []string
	RateLimit        string
	AppsManifestPath string
}

// Server is the terminal-facing HTTP server.
type Server struct {
	router   *gin.Engine
	logger   *zap.Logger
	service  *connector.Service
	guard    *auth.Guard
	provider ProviderHealth
	opts     Options
}

// NewServer assembles the gin engine with the full middleware chain and
// registers all routes.
func NewServer(service *connector.Service, guard *auth.Guard, provider ProviderHealth, opts Options, logger *zap.Logger) (*Server, error) {
	s := &Server{
		logger:   logger,
		service:  service,
		guard:    guard,
		provider: provider,
		opts:     opts,
	}

	router := gin.New()
	router.Use(requestID())
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(recovery(logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     opts.Origins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	rate, err := limiter.NewRateFromFormatted(opts.RateLimit)
	if err != nil {
		return nil, err
	}
	router.Use(ginlimiter.NewMiddleware(limiter.New(memory.NewStore(), rate)))

	s.router = router
	s.registerRoutes()
	return s, nil
}

// Router returns the gin engine for http.Server wiring and tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.info)
	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	protected := s.router.Group("/", auth.Middleware(s.guard, s.logger))
	{
		protected.GET("/widgets.json", s.widgets)
		protected.GET("/apps.json", s.apps)
		protected.GET("/widgets/:id", s.widgetData)
	}

	s.router.NoRoute(func(c *gin.Context) {
		writeNotFound(c, "no such endpoint")
	})
}

// requestID tags every request with a uuid, echoed back so terminal-side
// reports can be matched to log lines.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(auth.RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// recovery converts panics into InternalError problems instead of gin's
// default plain 500, so even a crash keeps the error contract.
func recovery(logger *zap.Logger) gin.HandlerFunc {
	return ginzap.CustomRecoveryWithZap(logger, true, func(c *gin.Context, err any) {
		writeError(c, errors.Internal(nil))
	})
}

// writeError serializes any error as an RFC 7807 problem document with the
// taxonomy kind attached.
func writeError(c *gin.Context, err error) {
	problem := errors.AsProblem(err, c.Request.URL.Path, c.GetString(auth.RequestIDKey))
	c.Abort()
	errors.WriteProblem(c.Writer, problem)
}

// writeNotFound answers paths outside the route table. It reuses the
// UnknownWidget problem type since the terminal treats both the same way.
func writeNotFound(c *gin.Context, detail string) {
	c.Abort()
	errors.WriteProblem(c.Writer, &errors.Problem{
		Type:     errors.TypeURI(errors.KindUnknownWidget),
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request.URL.Path,
		Kind:     errors.KindUnknownWidget,
		TraceID:  c.GetString(auth.RequestIDKey),
	})
}

// Handler adapts the server for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}
