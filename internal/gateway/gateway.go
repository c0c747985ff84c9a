package gateway

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linguachat/tutor-core/internal/core"
	errx "github.com/linguachat/tutor-core/internal/core/error"
	logx "github.com/linguachat/tutor-core/pkg/logger"
)

const (
	// HeaderAPIKey carries the shared service secret on every request.
	HeaderAPIKey = "x-api-key"

	// PlaceholderKey is the well-known development default. Production
	// deployments must refuse it.
	PlaceholderKey = "my-secret-key"

	requestIDKey = "requestID"
)

type Config struct {
	ListenAddr  string `envconfig:"GATE_LISTEN_ADDR" default:":8080"`
	UpstreamURL string `envconfig:"OLLAMA_URL" default:"http://127.0.0.1:11434"`
	APIKey      string `envconfig:"AI_SERVICE_KEY"`
}

// Validate enforces the fail-closed key policy at startup: no key is always
// fatal, the placeholder key is fatal in production.
func (c Config) Validate(env core.Environment) error {
	if c.APIKey == "" {
		return fmt.Errorf("AI_SERVICE_KEY is not set")
	}
	if env.IsProduction() && c.APIKey == PlaceholderKey {
		return fmt.Errorf("AI_SERVICE_KEY is the well-known placeholder; refusing to start in production")
	}
	return nil
}

// RequestID tags every request with a correlation ID for the access log.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestIDKey, uuid.NewString())
		c.Next()
	}
}

// Auth rejects any request whose key header does not match the configured
// secret. Rejected requests never reach the proxy and their bodies are never
// read or logged; only the caller's address and correlation ID are recorded.
func Auth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(HeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
			logx.Warn().
				Str("remoteAddr", c.ClientIP()).
				Str("requestID", c.GetString(requestIDKey)).
				Msg("blocked unauthorized request")
			rejection := errx.Unauthorized()
			c.AbortWithStatusJSON(rejection.Status, gin.H{"error": rejection.Message})
			return
		}
		c.Next()
	}
}

// NewProxy builds the reverse proxy to the model runtime. Unreachable
// upstreams produce a structured 502 instead of a hung or empty response.
func NewProxy(upstream string) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logx.Error().Err(err).Str("path", r.URL.Path).Msg("could not reach model runtime")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"Proxy Error: Could not reach model runtime"}`))
	}
	return proxy, nil
}

// NewRouter assembles the gate: correlation ID, credential check, then proxy
// everything that passed.
func NewRouter(cfg Config) (*gin.Engine, error) {
	proxy, err := NewProxy(cfg.UpstreamURL)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Auth(cfg.APIKey))
	r.NoRoute(func(c *gin.Context) {
		proxy.ServeHTTP(c.Writer, c.Request)
	})
	return r, nil
}
