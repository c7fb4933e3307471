package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/imeilookup/imeilookup/internal/api/models"
	"github.com/imeilookup/imeilookup/internal/station"
)

// Station identity headers, used when no station token is presented.
const (
	HeaderStationName     = "X-Station-Name"
	HeaderStationUser     = "X-Station-User"
	HeaderStationLocation = "X-Station-Location"
)

// stationKey is the context key for the requesting station.
type stationKey struct{}

type stationIdentity struct {
	config    station.Config
	fromToken bool
}

// TokenValidator validates station tokens.
type TokenValidator interface {
	Validate(token string) (station.Config, error)
}

// Station creates middleware that identifies the requesting station.
//
// A Bearer station token wins when tokens is non-nil; a bad token is rejected
// with 401. Otherwise the X-Station-* headers are used, and failing those the
// default station.
func Station(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := stationIdentity{config: stationFromHeaders(r)}

			if authHeader := r.Header.Get("Authorization"); authHeader != "" && tokens != nil {
				// Check for Bearer prefix (case-insensitive)
				const bearerPrefix = "Bearer "
				if len(authHeader) < len(bearerPrefix) ||
					!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
					writeUnauthorized(w, r, "invalid authorization header format")
					return
				}

				tokenString := authHeader[len(bearerPrefix):]
				if tokenString == "" {
					writeUnauthorized(w, r, "missing bearer token")
					return
				}

				cfg, err := tokens.Validate(tokenString)
				if err != nil {
					switch {
					case errors.Is(err, station.ErrTokenExpired):
						writeUnauthorized(w, r, "station token has expired")
					default:
						writeUnauthorized(w, r, "invalid station token")
					}
					return
				}
				identity = stationIdentity{config: cfg, fromToken: true}
			}

			ctx := context.WithValue(r.Context(), stationKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func stationFromHeaders(r *http.Request) station.Config {
	return station.Config{
		StationName: r.Header.Get(HeaderStationName),
		UserName:    r.Header.Get(HeaderStationUser),
		Location:    r.Header.Get(HeaderStationLocation),
	}.Normalize()
}

// writeUnauthorized writes a 401 problem. The response package imports
// middleware, so problems are built here directly.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="imeilookup"`)
	models.NewProblem(http.StatusUnauthorized, GetRequestID(r.Context()), detail).
		WithInstance(r.URL.Path).
		Write(w)
}

// GetStation retrieves the requesting station from the context.
// Returns the default station when the middleware did not run.
func GetStation(ctx context.Context) station.Config {
	if id, ok := ctx.Value(stationKey{}).(stationIdentity); ok {
		return id.config
	}
	return station.Default()
}

// StationFromToken reports whether the station was identified by a verified token.
func StationFromToken(ctx context.Context) bool {
	id, ok := ctx.Value(stationKey{}).(stationIdentity)
	return ok && id.fromToken
}
