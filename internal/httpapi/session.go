package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	sessionCookieName = "widget_svc_session"
	sessionKeyUserID  = "user_id"
	sessionMaxAge     = 12 * 60 * 60

	// HeaderPlatformUser carries the authenticated user id set by the fronting
	// groupware platform. The platform terminates login; this service only
	// trusts the proxied identity.
	HeaderPlatformUser = "X-Forwarded-User"

	contextKeyUserID = "httpapi.user_id"

	authErrorUnauthorized = "not authenticated"
)

// SessionManager resolves the current platform user from the session cookie,
// bootstrapping the session from the trusted platform header on first contact.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager creates a SessionManager with the given cookie secret.
func NewSessionManager(sessionSecret string) *SessionManager {
	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// RequireUser rejects requests without a resolvable user identity and exposes
// the user id to downstream handlers.
func (manager *SessionManager) RequireUser() gin.HandlerFunc {
	return func(context *gin.Context) {
		session, _ := manager.store.Get(context.Request, sessionCookieName)

		userID := ""
		if sessionValue, found := session.Values[sessionKeyUserID]; found {
			if sessionUserID, isString := sessionValue.(string); isString {
				userID = strings.TrimSpace(sessionUserID)
			}
		}

		if userID == "" {
			userID = strings.TrimSpace(context.GetHeader(HeaderPlatformUser))
			if userID != "" {
				session.Values[sessionKeyUserID] = userID
				_ = session.Save(context.Request, context.Writer)
			}
		}

		if userID == "" {
			context.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(authErrorUnauthorized))
			return
		}

		context.Set(contextKeyUserID, userID)
		context.Next()
	}
}

// CurrentUserID returns the user id resolved by RequireUser.
func CurrentUserID(context *gin.Context) (string, bool) {
	contextValue, found := context.Get(contextKeyUserID)
	if !found {
		return "", false
	}
	userID, isString := contextValue.(string)
	if !isString || userID == "" {
		return "", false
	}
	return userID, true
}
