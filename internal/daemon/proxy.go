package daemon

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"github.com/runnerr0/linkhist/internal/capture"
)

// newProxy returns a reverse proxy to upstream whose responses pass through
// the interceptor. An empty upstream disables proxy mode.
func newProxy(upstream string, ic *capture.Interceptor, log *zap.Logger) (*httputil.ReverseProxy, error) {
	if upstream == "" {
		return nil, nil
	}
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("parse proxy upstream %q: %w", upstream, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("proxy upstream %q must be an absolute URL", upstream)
	}

	log = log.With(zap.String("upstream", target.Host))
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
		},
		Transport: ic.Wrap(http.DefaultTransport),
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warn("proxy request failed", zap.String("path", r.URL.Path), zap.Error(err))
			w.WriteHeader(http.StatusBadGateway)
		},
	}, nil
}
