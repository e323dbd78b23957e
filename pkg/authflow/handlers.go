package authflow

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookieName = "session_id"
	cookieMaxAge      = 86400 // 24 hours
)

// RegisterRoutes mounts the flow endpoints on the given engine.
func RegisterRoutes(r *gin.Engine, manager *Manager) {
	auth := r.Group("/auth")
	{
		auth.GET("/:provider", AuthHandler(manager))
		auth.GET("/:provider/callback", CallbackHandler(manager))
	}

	api := r.Group("/api")
	{
		api.GET("/me", MeHandler(manager))
		api.GET("/logout", LogoutHandler(manager))
	}
}

// AuthHandler starts the flow for the named provider
// @Summary Start OAuth2 login
// @Description Redirects user to the provider consent screen
// @Tags auth
// @Param provider path string true "Provider name"
// @Param scope query string false "Requested scope"
// @Param state query string false "Opaque anti-forgery state"
// @Success 302 {string} string "Redirect"
// @Router /auth/{provider} [get]
func AuthHandler(manager *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		redirect, err := manager.Begin(c.Request.Context(), provider, c.Query("scope"), c.Query("state"))
		if err != nil {
			if errors.Is(err, ErrStrategyNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Redirect(http.StatusFound, redirect)
	}
}

// CallbackHandler handles the provider callback
// @Summary OAuth2 callback
// @Description Exchanges the authorization code, fetches the profile, and creates a session
// @Tags auth
// @Produce json
// @Param provider path string true "Provider name"
// @Param code query string true "Authorization code"
// @Param state query string true "Anti-forgery state"
// @Success 200 {object} map[string]interface{} "Authenticated"
// @Failure 400 {object} map[string]interface{} "Flow failed"
// @Router /auth/{provider}/callback [get]
func CallbackHandler(manager *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		identity, session, flowErrs := manager.Complete(c.Request.Context(), provider, c.Query("code"), c.Query("state"))
		if len(flowErrs) > 0 {
			c.JSON(statusForErrors(flowErrs), gin.H{"errors": flowErrs})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(
			sessionCookieName,
			session.ID,
			cookieMaxAge,
			"/",
			"",
			true, // Secure: only HTTPS
			true, // HttpOnly: not accessible via JavaScript
		)

		c.JSON(http.StatusOK, gin.H{
			"provider": provider,
			"uid":      identity.UID,
			"info":     identity.Info,
		})
	}
}

// MeHandler returns the session summary for the current cookie
// @Summary Get authenticated user info
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Session summary"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/me [get]
func MeHandler(manager *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookieName)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no session found"})
			return
		}

		session, err := manager.GetSession(c.Request.Context(), sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": session})
	}
}

// LogoutHandler deletes the session and clears the cookie
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logged out"
// @Router /api/logout [get]
func LogoutHandler(manager *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID, err := c.Cookie(sessionCookieName); err == nil {
			_ = manager.DeleteSession(c.Request.Context(), sessionID)
		}

		c.SetCookie(sessionCookieName, "", -1, "/", "", true, true)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// AuthMiddleware rejects requests without a valid session.
func AuthMiddleware(manager *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookieName)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no session found"})
			c.Abort()
			return
		}

		session, err := manager.GetSession(c.Request.Context(), sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			c.Abort()
			return
		}

		c.Set("session", session)
		c.Next()
	}
}

// statusForErrors maps the first error kind to an HTTP status. The
// ordered error list itself goes to the body untouched; rendering
// beyond that is the host's call.
func statusForErrors(errs []FlowError) int {
	switch errs[0].Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindMissingCode, KindInvalidState, KindProviderError:
		return http.StatusBadRequest
	case KindConfigError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
