package api

import (
	"net/http"

	"github.com/shoeboxapp/shoebox-client/internal/http/response"
)

// rateLimit sheds callers exceeding the per-IP budget. RealIP middleware
// runs first, so RemoteAddr already carries the client address.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(r.RemoteAddr) {
			s.logger.Warn("rate limit exceeded", "ip", r.RemoteAddr, "path", r.URL.Path)
			response.TooManyRequests(w, "Too many requests. Please try again later.", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
