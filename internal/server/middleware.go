package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"schemebot/internal/session"
	"schemebot/internal/utils"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeySession contextKey = "session"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// LoadSession resolves the visitor's session from the cookie, starting a new
// one when the cookie is missing, tampered with or points at an expired
// session.
func (s *Service) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *session.Session

		if cookie, err := r.Cookie(s.config.CookieName); err == nil {
			var id string
			if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &id); err != nil {
				s.logger.WithError(err).Debug("discarding undecodable session cookie")
			} else if !utils.IsNanoID(id) {
				s.logger.Debug("discarding malformed session id")
			} else if found, ok := s.sessions.Get(id); ok {
				sess = found
			}
		}

		if sess == nil {
			sess = s.sessions.Create()

			encoded, err := s.cookie.Encode(s.config.CookieName, sess.ID)
			if err != nil {
				s.logger.WithError(err).Error("failed to encode session cookie")
				s.internalServerError(w)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     s.config.CookieName,
				Value:    encoded,
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   s.config.SessionMaxAgeSec,
				Path:     "/",
			})

			s.logger.WithField("session_id", sess.ID).Debug("started session")
		}

		ctx := context.WithValue(r.Context(), contextKeySession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func sessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(contextKeySession).(*session.Session)
	return sess, ok && sess != nil
}
