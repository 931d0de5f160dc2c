package server

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/cavos-labs/forma-app/internal/logger"
	"github.com/cavos-labs/forma-app/internal/session"

	"github.com/gin-gonic/gin"
)

// apiProxy forwards /api/* to the upstream gym API, injecting the shared
// x-api-key. The session cookie is stripped so gateway credentials never
// leave the gateway.
func apiProxy(baseURL, apiKey string) (gin.HandlerFunc, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.Out.Host = target.Host
			r.Out.Header.Set("x-api-key", apiKey)
			r.Out.Header.Del("Cookie")
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.WithError(err).Error("api proxy failed", "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"upstream unavailable"}`))
		},
	}

	return func(c *gin.Context) {
		if _, ok := session.FromContext(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		proxy.ServeHTTP(c.Writer, c.Request)
	}, nil
}
