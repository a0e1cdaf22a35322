package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/httpapi"
)

const (
	testProtectedRoutePath = "/protected"
	testWrongBearerValue   = "Bearer wrong-token"
)

func newProtectedRouter(adminBearerToken string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET(testProtectedRoutePath, httpapi.AdminAuthMiddleware(adminBearerToken), func(context *gin.Context) {
		context.Status(http.StatusOK)
	})
	return router
}

func TestAdminAuthMiddlewareRejectsWhenTokenUnconfigured(t *testing.T) {
	router := newProtectedRouter("")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, testProtectedRoutePath, nil))

	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestAdminAuthMiddlewareRequiresBearerHeader(t *testing.T) {
	router := newProtectedRouter(testAdminBearerToken)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, testProtectedRoutePath, nil))

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAdminAuthMiddlewareRejectsWrongToken(t *testing.T) {
	router := newProtectedRouter(testAdminBearerToken)

	request := httptest.NewRequest(http.MethodGet, testProtectedRoutePath, nil)
	request.Header.Set(headerAuthorizationName, testWrongBearerValue)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestAdminAuthMiddlewareAcceptsConfiguredToken(t *testing.T) {
	router := newProtectedRouter(testAdminBearerToken)

	request := httptest.NewRequest(http.MethodGet, testProtectedRoutePath, nil)
	request.Header.Set(headerAuthorizationName, headerAuthorizationValue)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
}

func newSessionRouter(sessionSecret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	sessionManager := httpapi.NewSessionManager(sessionSecret)

	router := gin.New()
	router.GET(testProtectedRoutePath, sessionManager.RequireUser(), func(context *gin.Context) {
		userID, _ := httpapi.CurrentUserID(context)
		context.String(http.StatusOK, userID)
	})
	return router
}

func TestRequireUserRejectsAnonymousRequests(t *testing.T) {
	router := newSessionRouter(testSessionSecret)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, testProtectedRoutePath, nil))

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRequireUserBootstrapsSessionFromPlatformHeader(t *testing.T) {
	router := newSessionRouter(testSessionSecret)

	request := httptest.NewRequest(http.MethodGet, testProtectedRoutePath, nil)
	request.Header.Set(httpapi.HeaderPlatformUser, testPlatformUserID)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, testPlatformUserID, recorder.Body.String())
	require.NotEmpty(t, recorder.Result().Cookies())
}

func TestRequireUserReadsExistingSessionCookie(t *testing.T) {
	router := newSessionRouter(testSessionSecret)

	bootstrapRequest := httptest.NewRequest(http.MethodGet, testProtectedRoutePath, nil)
	bootstrapRequest.Header.Set(httpapi.HeaderPlatformUser, testPlatformUserID)
	bootstrapRecorder := httptest.NewRecorder()
	router.ServeHTTP(bootstrapRecorder, bootstrapRequest)
	require.Equal(t, http.StatusOK, bootstrapRecorder.Code)

	followupRequest := httptest.NewRequest(http.MethodGet, testProtectedRoutePath, nil)
	for _, cookie := range bootstrapRecorder.Result().Cookies() {
		followupRequest.AddCookie(cookie)
	}

	followupRecorder := httptest.NewRecorder()
	router.ServeHTTP(followupRecorder, followupRequest)

	require.Equal(t, http.StatusOK, followupRecorder.Code)
	require.Equal(t, testPlatformUserID, followupRecorder.Body.String())
}
