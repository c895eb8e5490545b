package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vianexus/terminal-connector/pkg/errors"
	"github.com/vianexus/terminal-connector/pkg/metrics"
)

// RequestIDKey is where the request-id middleware stores the id consumed
// here for problem documents.
const RequestIDKey = "request_id"

const bearerPrefix = "bearer "

// Credential extracts the presented API key from a request. The
// Authorization bearer header wins; X-API-Key is the fallback for clients
// that cannot set Authorization.
func Credential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > len(bearerPrefix) &&
		strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(h[len(bearerPrefix):])
	}
	return r.Header.Get("X-API-Key")
}

// Middleware enforces the guard on a route group. Rejected requests are
// answered and aborted before any handler work. The log line records where
// the request came from, never what it presented.
func Middleware(guard *Guard, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := guard.Authorize(Credential(c.Request)); err != nil {
			metrics.AuthRejections.Inc()
			logger.Warn("rejected unauthenticated request",
				zap.String("path", c.Request.URL.Path),
				zap.String("remote", c.ClientIP()),
			)
			c.Header("WWW-Authenticate", `Bearer realm="connector"`)
			errors.WriteProblem(c.Writer, errors.AsProblem(err, c.Request.URL.Path, c.GetString(RequestIDKey)))
			c.Abort()
			return
		}
		c.Next()
	}
}
