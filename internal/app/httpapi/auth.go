package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/glosslab/salon-service/internal/middleware"
	"github.com/glosslab/salon-service/pkg/logger"
)

// Paths always served unauthenticated; health probes and scrapers carry no
// tokens. Deployments extend the set via skipPaths.
var defaultOpenPaths = []string{"/healthz", "/metrics"}

// WrapWithAuth guards the API with static bearer tokens, falling back to JWT
// verification when a public key is configured. With neither, requests pass
// through unauthenticated. skipPaths lists additional paths served without
// credentials.
func WrapWithAuth(next http.Handler, tokens []string, publicKey interface{}, skipPaths []string) http.Handler {
	if len(tokens) == 0 && publicKey == nil {
		return next
	}

	open := make(map[string]bool, len(defaultOpenPaths)+len(skipPaths))
	for _, path := range defaultOpenPaths {
		open[path] = true
	}
	for _, path := range skipPaths {
		path = strings.TrimSpace(path)
		if path != "" {
			open[path] = true
		}
	}

	allowed := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token != "" {
			allowed[token] = true
		}
	}

	var jwtAuth *middleware.AuthMiddleware
	if publicKey != nil {
		jwtAuth = middleware.NewAuthMiddleware(publicKey, logger.NewDefault("httpapi-auth"), nil)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if open[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token != "" && allowed[token] {
			next.ServeHTTP(w, r)
			return
		}

		if jwtAuth != nil {
			jwtAuth.Handler(next).ServeHTTP(w, r)
			return
		}

		writeError(w, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
