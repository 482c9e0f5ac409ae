package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shandysiswandi/goseed/internal/pkg/identity"
)

func middlewareIdentity(resolver identity.Resolver, loginURL string, publicEndpoints map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := matchedRoutePath(r)

			if s, ok := publicEndpoints[r.Method]; ok {
				if _, skip := s[path]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			account, err := resolver.Resolve(r)
			if err != nil {
				if errors.Is(err, identity.ErrUnauthenticated) && loginURL != "" && acceptsHTML(r) {
					http.Redirect(w, r, loginURL, http.StatusFound)
					return
				}

				writeJSON(w, map[string]string{"message": "Authentication required"}, http.StatusUnauthorized)
				return
			}

			ctx := identity.SetIdentity(r.Context(), account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// acceptsHTML reports whether the client is a browser navigation that
// should be redirected to the login page instead of receiving JSON.
func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
