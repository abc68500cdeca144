package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leclercq/boutique/internal/constants"
	inErrors "github.com/leclercq/boutique/internal/errors"
	"github.com/leclercq/boutique/internal/log"
	"github.com/leclercq/boutique/internal/otel"
)

// CookieName is the cookie carrying the signed session token. The cart of a
// visitor lives under the session id minted here; no user account is
// involved.
const CookieName = "boutique_session"

const lifetime = 30 * 24 * time.Hour

type sessionId struct{}

func AttachSessionIDToContext(c context.Context, id string) context.Context {
	return context.WithValue(c, sessionId{}, id)
}

func SessionIDFromContext(c context.Context) string {
	id, ok := c.Value(sessionId{}).(string)
	if !ok {
		return ""
	}
	return id
}

// Mint creates a fresh session id and the signed token that carries it.
func Mint(c context.Context, secretKey string) (id string, signed string, err error) {
	c, span := otel.Tracer.Start(c, "session Mint")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "session Mint").
		Logger()

	id = uuid.NewString()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   id,
		Issuer:    constants.AppBoutiqueService,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
	}

	signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
	if err != nil {
		err = fmt.Errorf("failed signing session token with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", "", err
	}
	logger.Info().Str(log.KeySessionID, id).Msg("minted session token")

	return id, signed, nil
}

// Verify parses a signed session token and returns the session id it carries.
func Verify(c context.Context, signed string, secretKey string) (string, error) {
	c, span := otel.Tracer.Start(c, "session Verify")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "session Verify").
		Logger()

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(signed,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.AppBoutiqueService),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing session token with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	if !token.Valid {
		err = fmt.Errorf("failed validating session token with error=%w", inErrors.ErrSessionInvalid)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", inErrors.ErrSessionInvalid
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		err = fmt.Errorf("failed parsing subject=%s with error=%w", claims.Subject, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", inErrors.ErrSessionInvalid
	}

	return id.String(), nil
}
