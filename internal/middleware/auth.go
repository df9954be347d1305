package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/geoblog/internal/constants"
	apierrors "github.com/yukikurage/geoblog/internal/errors"
	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/services"
)

// LoginPath is where anonymous visitors of protected pages are sent.
const LoginPath = "/sign-in/"

// UserLoader resolves the user id stored in the session.
type UserLoader interface {
	GetUser(id uint64) (*models.User, error)
}

// CurrentUser loads the session's user into the request context. Sessions
// pointing at a deleted or deactivated account are cleared.
func CurrentUser(users UserLoader, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, ok := toUserID(session.Get(constants.ContextKeyUserID))
		if !ok {
			c.Next()
			return
		}

		user, err := users.GetUser(id)
		switch {
		case err == nil && user.IsActive:
			c.Set(constants.ContextKeyUserID, user.ID)
			c.Set(constants.ContextKeyUser, user)
		case err == nil, errors.Is(err, services.ErrUserNotFound):
			session.Clear()
			if err := session.Save(); err != nil {
				log.Warn("failed to clear stale session", zap.Error(err))
			}
		default:
			log.Error("failed to load session user", zap.Uint64("user_id", id), zap.Error(err))
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuth redirects anonymous visitors to the login page.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUser(c); !ok {
			target := LoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff rejects anonymous and non-staff users with JSON errors.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !user.IsStaff() {
			apierrors.Forbidden(c, "Staff access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectAuthenticated sends logged-in users to path.
func RedirectAuthenticated(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUser(c); ok {
			c.Redirect(http.StatusFound, path)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUser retrieves the current user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(userID)
}

func toUserID(v interface{}) (uint64, bool) {
	switch v := v.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
