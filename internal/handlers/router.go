package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yukikurage/geoblog/internal/constants"
	"github.com/yukikurage/geoblog/internal/middleware"
)

// RouterConfig collects what the HTTP routes are built from.
type RouterConfig struct {
	Auth     *AuthHandler
	Posts    *PostHandler
	Profiles *ProfileHandler
	Admin    *AdminHandler

	Users        middleware.UserLoader
	SessionStore sessions.Store
	// Limiter throttles the credential endpoints; nil disables it.
	Limiter *middleware.RateLimiter
	// MediaRoot is served under /media/ when set.
	MediaRoot string
	Log       *zap.Logger
}

// NewRouter builds the gin engine with every route of the site.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(cfg.Log), middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "GeoBlog is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.MediaRoot != "" {
		r.Static("/media", cfg.MediaRoot)
	}

	limit := func(resource string) gin.HandlerFunc {
		if cfg.Limiter == nil {
			return middleware.Disabled()
		}
		return cfg.Limiter.Limit(resource)
	}

	site := r.Group("/")
	site.Use(sessions.Sessions(constants.SessionCookieName, cfg.SessionStore))
	site.Use(middleware.CurrentUser(cfg.Users, cfg.Log))

	anonymous := site.Group("/")
	anonymous.Use(middleware.RedirectAuthenticated("/"))
	{
		anonymous.GET("/sign-up/", cfg.Auth.SignUpForm)
		anonymous.POST("/sign-up/", limit("sign-up"), cfg.Auth.SignUp)
		anonymous.GET("/sign-in/", cfg.Auth.SignInForm)
		anonymous.POST("/sign-in/", limit("sign-in"), cfg.Auth.SignIn)
		anonymous.GET("/activate/:uid/:token/", cfg.Auth.Activate)
		anonymous.GET("/reset-password/", cfg.Auth.ResetPasswordForm)
		anonymous.POST("/reset-password/", limit("reset-password"), cfg.Auth.ResetPassword)
		anonymous.GET("/change-password/:uid/:token/", cfg.Auth.ChangePasswordForm)
		anonymous.POST("/change-password/:uid/:token/", cfg.Auth.ChangePassword)
	}

	members := site.Group("/")
	members.Use(middleware.RequireAuth())
	{
		members.GET("/", cfg.Posts.Feed)
		members.GET("/logout/", cfg.Auth.Logout)
		members.GET("/create-post/", cfg.Posts.CreateForm)
		members.POST("/create-post/", cfg.Posts.Create)
		members.GET("/profile/:slug/", cfg.Profiles.Show)
		members.POST("/profile/:slug/", cfg.Profiles.Update)
	}
	site.GET("/post/:slug/", cfg.Posts.Detail)

	admin := site.Group("/admin")
	admin.Use(middleware.RequireStaff())
	{
		admin.GET("/users", cfg.Admin.ListUsers)
		admin.PATCH("/users/:id", cfg.Admin.UpdateUser)

		admin.GET("/countries", cfg.Admin.ListCountries)
		admin.POST("/countries", cfg.Admin.CreateCountry)
		admin.DELETE("/countries/:id", cfg.Admin.DeleteCountry)

		admin.GET("/sexes", cfg.Admin.ListSexes)
		admin.POST("/sexes", cfg.Admin.CreateSex)
		admin.DELETE("/sexes/:id", cfg.Admin.DeleteSex)

		admin.GET("/tags", cfg.Admin.ListTags)
		admin.POST("/tags", cfg.Admin.CreateTag)
		admin.DELETE("/tags/:id", cfg.Admin.DeleteTag)

		admin.GET("/emojis", cfg.Admin.ListEmojis)
		admin.POST("/emojis", cfg.Admin.CreateEmoji)
		admin.DELETE("/emojis/:id", cfg.Admin.DeleteEmoji)

		admin.GET("/posts", cfg.Admin.ListPosts)
		admin.DELETE("/posts/:id", cfg.Admin.DeletePost)
	}

	return r
}
