package handler

import (
	"net/http"
	"strings"

	"github.com/authgate/backend/internal/model"
	"github.com/authgate/backend/internal/service"
	"github.com/authgate/backend/internal/token"
	"github.com/gin-gonic/gin"
)

const authUserKey = "auth_user"

// AuthMiddleware guards identity-requiring operations. It runs a fixed state
// machine over the two token cookies:
//
//   - neither cookie        -> 401 no_credentials
//   - no refresh cookie     -> 401 refresh_token_required
//   - refresh invalid       -> 401 refresh_token_invalid
//   - version mismatch      -> 401 stale_session, both cookies purged
//   - refresh valid, access missing/invalid/mismatched -> silent refresh:
//     a fresh pair is minted at the current version and set on the response
//
// The resolved identity always comes from the refresh-validated subject; the
// presented access token can only corroborate it, never replace it.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		accessToken, _ := c.Cookie(service.AccessCookie)
		refreshToken, _ := c.Cookie(service.RefreshCookie)

		if accessToken == "" && refreshToken == "" {
			rejectUnauthenticated(c, "no_credentials")
			return
		}

		if refreshToken == "" {
			rejectUnauthenticated(c, "refresh_token_required")
			return
		}

		userID, tokenVersion, err := authService.VerifyToken(refreshToken, token.KindRefresh)
		if err != nil {
			rejectUnauthenticated(c, "refresh_token_invalid")
			return
		}

		user, err := authService.UserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			c.Abort()
			return
		}
		if user == nil || user.TokenVersion != tokenVersion {
			clearAuthCookies(c, authService.CookieConfig())
			rejectUnauthenticated(c, "stale_session")
			return
		}

		accessOK := false
		if accessToken != "" {
			accessID, accessVersion, err := authService.VerifyToken(accessToken, token.KindAccess)
			accessOK = err == nil && accessID == user.ID && accessVersion == user.TokenVersion
		}

		if !accessOK {
			pair, err := authService.MintPair(user.ID, user.TokenVersion)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
				c.Abort()
				return
			}
			setAuthCookies(c, authService.CookieConfig(), pair)
		}

		c.Set(authUserKey, &model.AuthUser{ID: user.ID, TokenVersion: user.TokenVersion})
		c.Next()
	}
}

func GetAuthUser(c *gin.Context) *model.AuthUser {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.AuthUser); ok {
			return user
		}
	}
	return nil
}

func rejectUnauthenticated(c *gin.Context, code string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": code})
	c.Abort()
}

// GateMiddleware is a coarse static bearer gate over the whole API surface,
// separate from per-user tokens.
func GateMiddleware(gateKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		if c.GetHeader("x-auth-token") != gateKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, x-auth-token")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
