package middleware

import (
	"context"
	"prepaena_backend/internal/config"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/util"
	"prepaena_backend/pkg/logger"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AuthMiddleware requires a valid Supabase access token.
func AuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWTSecret)
		if err != nil {
			logger.Log.Debug("JWT rejected", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// TryAuthMiddleware attaches the user when a valid token is present and
// lets anonymous requests through otherwise.
func TryAuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := util.ParseJWT(tokenString, cfg.JWTSecret); err == nil {
				c.Set(util.ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

type ProfileEnsurer interface {
	Ensure(ctx context.Context, userID, email string) (*model.Profile, error)
}

// profileRecheck bounds how long an ensured profile is trusted. Rows deleted
// out of band are re-created on the next request after it.
const profileRecheck = 10 * time.Minute

// ProfileMiddleware makes sure an authenticated user has a profiles row.
// Rows are ensured at most once per user id per profileRecheck.
func ProfileMiddleware(profiles ProfileEnsurer) gin.HandlerFunc {
	return profileMiddleware(profiles, profileRecheck, time.Now)
}

func profileMiddleware(profiles ProfileEnsurer, recheck time.Duration, now func() time.Time) gin.HandlerFunc {
	var ensured sync.Map
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			c.Next()
			return
		}
		id := claims.UserID()
		if at, ok := ensured.Load(id); ok && now().Sub(at.(time.Time)) < recheck {
			c.Next()
			return
		}
		if _, err := profiles.Ensure(c.Request.Context(), id, claims.Email); err != nil {
			util.LogInternalError(c, err)
			c.Abort()
			return
		}
		ensured.Store(id, now())
		c.Next()
	}
}

type ProfileFinder interface {
	FindByID(ctx context.Context, id string) (*model.Profile, error)
}

// AdminMiddleware allows configured admin emails and profiles flagged is_admin.
// The flag is read fresh on every request so revocations apply immediately.
func AdminMiddleware(cfg *config.AuthConfig, profiles ProfileFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if cfg.IsAdminEmail(claims.Email) {
			c.Next()
			return
		}
		profile, err := profiles.FindByID(c.Request.Context(), claims.UserID())
		if err != nil || profile == nil || !profile.IsAdmin {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
