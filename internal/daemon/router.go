// Package daemon serves the link history over a local HTTP API and, when
// an upstream is configured, proxies the site so downloader responses are
// captured on the way through.
package daemon

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/runnerr0/linkhist/internal/capture"
	"github.com/runnerr0/linkhist/internal/config"
	"github.com/runnerr0/linkhist/internal/history"
	"github.com/runnerr0/linkhist/internal/nav"
	"github.com/runnerr0/linkhist/internal/view"
)

// Deps are the components the router exposes.
type Deps struct {
	Config      *config.Config
	Session     *history.Session
	List        *view.List
	Interceptor *capture.Interceptor
	Feed        *nav.Feed
	Log         *zap.Logger
	Version     string
}

func (d Deps) validate() error {
	switch {
	case d.Config == nil:
		return errors.New("daemon: config is required")
	case d.Session == nil:
		return errors.New("daemon: session is required")
	case d.List == nil:
		return errors.New("daemon: list is required")
	case d.Interceptor == nil:
		return errors.New("daemon: interceptor is required")
	case d.Feed == nil:
		return errors.New("daemon: navigation feed is required")
	}
	return nil
}

// NewRouter builds the gin engine. gin's mode is left to the caller.
func NewRouter(d Deps) (*gin.Engine, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	log := d.Log.Named("daemon")

	r := gin.New()
	r.Use(requestID(), accessLog(log), recovery(log))
	r.Use(cors.New(corsConfig(d.Config.Daemon.AllowedOrigins)))

	h := &handlers{deps: d, log: log}
	// A zero rate disables capture throttling.
	captureChain := []gin.HandlerFunc{h.capture}
	if perMinute := d.Config.Capture.RatePerMinute; perMinute > 0 {
		captureChain = append([]gin.HandlerFunc{newRateLimiter(perMinute).middleware()}, captureChain...)
	}

	r.GET("/status", h.status)

	api := r.Group("/api")
	api.Use(limitBody(int64(d.Config.Daemon.MaxRequestSize)))
	{
		api.POST("/capture", captureChain...)
		api.POST("/navigation", h.navigation)
		api.GET("/view", h.view)
		api.POST("/view/more", h.loadMore)
		api.GET("/search", h.search)
		api.GET("/links/:id", h.selectLink)
		api.DELETE("/links/:id", h.deleteLink)
		api.DELETE("/detail", h.closeDetail)
	}

	proxy, err := newProxy(d.Config.Proxy.Upstream, d.Interceptor, log)
	if err != nil {
		return nil, err
	}
	if proxy != nil {
		r.NoRoute(gin.WrapH(proxy))
	} else {
		r.NoRoute(func(c *gin.Context) {
			fail(c, http.StatusNotFound, codeNotFound, "route not found")
		})
	}
	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// limitBody caps request bodies at n bytes.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
