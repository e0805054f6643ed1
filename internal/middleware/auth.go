package middleware

import (
	stderrors "errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"quantumvision/internal/auth"
	"quantumvision/internal/errors"
	"quantumvision/internal/model"
)

var errTokenRevoked = stderrors.New("token has been revoked")

// Authenticator validates bearer access tokens and attaches the session to the request context.
type Authenticator struct {
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthenticator creates a new authenticator.
func NewAuthenticator(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) *Authenticator {
	return &Authenticator{jwtService: jwtService, tokenStore: tokenStore}
}

// Middleware returns the echo-jwt middleware guarding secured routes.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup:    "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: a.parseToken,
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "invalid or expired token",
				Code:  "UNAUTHORIZED",
			})
		},
	})
}

func (a *Authenticator) parseToken(c echo.Context, token string) (interface{}, error) {
	claims, err := a.jwtService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	session, err := auth.SessionFromClaims(claims)
	if err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	revoked, err := a.tokenStore.IsAccessTokenBlacklisted(ctx, session.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errTokenRevoked
	}

	c.SetRequest(c.Request().WithContext(auth.WithSession(ctx, session)))
	return session, nil
}

// RequireRole allows the request only when the session role is one of roles.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := auth.SessionFromContext(c.Request().Context())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: err.Error(),
					Code:  "UNAUTHORIZED",
				})
			}
			for _, role := range roles {
				if session.Role == string(role) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: errors.ErrForbidden.Error(),
				Code:  "FORBIDDEN",
			})
		}
	}
}
