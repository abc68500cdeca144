package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	inHttp "github.com/leclercq/boutique/internal/http"
	"github.com/leclercq/boutique/internal/log"
	"github.com/leclercq/boutique/internal/otel"
	"github.com/leclercq/boutique/internal/session"
)

// Session ensures every request carries a session id. An existing valid
// session cookie is reused; anything else gets a freshly minted one. The
// session id is attached to the request context so the cart layer never
// touches transport details.
func Session(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware Session")
			defer span.End()

			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware Session").Logger()

			sessionID := ""
			cookie, err := r.Cookie(session.CookieName)
			if err == nil {
				c = logger.WithContext(c)
				sessionID, err = session.Verify(c, cookie.Value, secretKey)
				if err != nil {
					logger.Info().Err(err).Msg("session cookie rejected, minting a new session")
					sessionID = ""
				}
			}

			if sessionID == "" {
				c = logger.WithContext(c)
				id, signed, err := session.Mint(c, secretKey)
				if err != nil {
					logger.Error().Err(err).Msg(err.Error())
					otel.RecordError(err, span)
					inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
						"status":     "failed",
						"statusCode": http.StatusInternalServerError,
						"message":    "Internal Server Error",
					})
					return
				}
				sessionID = id
				http.SetCookie(w, &http.Cookie{
					Name:     session.CookieName,
					Value:    signed,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			logger = logger.With().Str(log.KeySessionID, sessionID).Logger()
			logger.Trace().Msg("attached session id to context")

			c = session.AttachSessionIDToContext(c, sessionID)
			c = logger.WithContext(c)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
