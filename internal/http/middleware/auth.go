package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dandarts/dandarts-backend/internal/http/response"
	"github.com/dandarts/dandarts-backend/internal/platform/ctxutil"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
)

const (
	// AuthModeJWT verifies a Bearer token locally: HS256, subject = player id.
	// Token issuance lives with the identity provider, not here.
	AuthModeJWT = "jwt"
	// AuthModeGateway trusts the X-Player-ID header set by an upstream
	// gateway that already authenticated the caller.
	AuthModeGateway = "gateway"
)

type AuthConfig struct {
	Mode         string
	JWTSecretKey string
}

type AuthMiddleware struct {
	log *logger.Logger
	cfg AuthConfig
}

func NewAuthMiddleware(log *logger.Logger, cfg AuthConfig) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	if cfg.Mode == "" {
		cfg.Mode = AuthModeJWT
	}
	return &AuthMiddleware{log: middlewareLogger, cfg: cfg}
}

// RequireAuth resolves the caller's player id and attaches it to the request
// context. Every match command downstream reads the caller from there.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, tokenString, err := am.resolvePlayer(c)
		if err != nil {
			am.log.Debug("Auth failed", "error", err)
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
			c.Abort()
			return
		}
		if playerID == uuid.Nil {
			response.RespondError(c, http.StatusForbidden, "forbidden", nil)
			c.Abort()
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			PlayerID:    playerID,
			TokenString: tokenString,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) resolvePlayer(c *gin.Context) (uuid.UUID, string, error) {
	switch am.cfg.Mode {
	case AuthModeGateway:
		raw := strings.TrimSpace(c.GetHeader("X-Player-ID"))
		if raw == "" {
			return uuid.Nil, "", fmt.Errorf("missing X-Player-ID header")
		}
		playerID, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, "", fmt.Errorf("invalid X-Player-ID header: %w", err)
		}
		return playerID, "", nil
	default:
		tokenString := extractToken(c)
		if tokenString == "" {
			return uuid.Nil, "", fmt.Errorf("missing or invalid token")
		}
		playerID, err := am.verifyToken(tokenString)
		if err != nil {
			return uuid.Nil, "", err
		}
		return playerID, tokenString, nil
	}
}

func (am *AuthMiddleware) verifyToken(tokenString string) (uuid.UUID, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return []byte(am.cfg.JWTSecretKey), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsedToken.Valid {
		return uuid.Nil, fmt.Errorf("invalid or expired token")
	}
	playerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid player id in token: %w", err)
	}
	return playerID, nil
}

// EventSource cannot set headers, so the SSE stream passes the token as a
// query parameter.
func extractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
