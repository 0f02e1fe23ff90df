package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/garyjia/procurement-portal/internal/application/service"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

const actorKey = "actor"

// errUnauthenticated is answered with 401
var errUnauthenticated = errors.New("unauthenticated")

// bearerToken reads the Authorization header, falling back to the token query
// parameter for websocket upgrades where browsers cannot set headers
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

// parseSubject verifies an HS256 token and returns its sub claim
func parseSubject(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// authMiddleware resolves the bearer token to a directory actor
func authMiddleware(secret []byte, users service.UserService, logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			abortWithError(c, errUnauthenticated, "authorization is missing")
			return
		}

		userID, err := parseSubject(tokenString, secret)
		if err != nil {
			abortWithError(c, errUnauthenticated, "invalid token")
			return
		}

		actor, err := users.ResolveActor(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				abortWithError(c, errUnauthenticated, "unknown user")
				return
			}
			logger.Error("Failed to resolve actor", "user_id", userID, "error", err)
			abortWithError(c, err, "")
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// actorFrom returns the actor set by authMiddleware
func actorFrom(c *gin.Context) entity.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(entity.Actor); ok {
			return actor
		}
	}
	return entity.Actor{}
}

func abortWithError(c *gin.Context, err error, msg string) {
	status, code := statusOf(err)
	if msg == "" {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, Response{Success: false, Code: code, Error: msg})
}

// statusOf maps the failure taxonomy onto HTTP
func statusOf(err error) (int, string) {
	if errors.Is(err, errUnauthenticated) {
		return http.StatusUnauthorized, "unauthenticated"
	}
	switch apperr.KindOf(err) {
	case apperr.ErrInvalidInput:
		return http.StatusBadRequest, apperr.Code(err)
	case apperr.ErrForbidden:
		return http.StatusForbidden, apperr.Code(err)
	case apperr.ErrNotFound:
		return http.StatusNotFound, apperr.Code(err)
	case apperr.ErrConflict:
		return http.StatusConflict, apperr.Code(err)
	case apperr.ErrInvalidState:
		return http.StatusUnprocessableEntity, apperr.Code(err)
	case apperr.ErrStorageUnavailable:
		return http.StatusServiceUnavailable, apperr.Code(err)
	default:
		return http.StatusInternalServerError, "internal"
	}
}
