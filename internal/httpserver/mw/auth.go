package mw

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/bookmarks-api/internal/logger"
)

const msgUnauthorized = "Unauthorized request"

// RequireBearer rejects requests whose Authorization header does not carry token as its
// second space separated part. Nothing behind it runs for a rejected request.
func RequireBearer(token string, log logger.Logger) func(http.Handler) http.Handler {
	want := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !bearerMatches(r.Header.Get("Authorization"), want) {
				log.Error("unauthorized request",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.String("request_id", middleware.GetReqID(r.Context())))

				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": msgUnauthorized})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerMatches(header string, want []byte) bool {
	parts := strings.Split(header, " ")
	if len(parts) < 2 || len(want) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(parts[1]), want) == 1
}
