package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/groups"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/httpapi"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/model"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/storage"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/testutil"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/widget"
	"github.com/MarkoPoloResearchLab/widget_svc/pkg/iconcdn"
)

const (
	testAdminBearerToken  = "test-admin-token"
	testSessionSecret     = "test-session-secret"
	testPlatformUserID    = "alice"
	testHandlerGroupID    = "engineering"
	testHandlerGroupName  = "Engineering Team"
	testHandlerWidgetURL  = "https://boards.example.com/main"
	testHandlerOtherURL   = "https://wiki.example.com/start"
	testHandlerTitleValue = "Boards"

	headerAuthorizationName  = "Authorization"
	headerContentTypeName    = "Content-Type"
	headerAuthorizationValue = "Bearer " + testAdminBearerToken
	contentTypeJSONValue     = "application/json"
)

// testApplication wires the full handler surface over a fresh in-memory
// database, mirroring the server's route registration.
type testApplication struct {
	router      *gin.Engine
	database    *gorm.DB
	configStore *storage.AppConfigStore
	codec       *widget.Codec
}

func newTestApplication(testingT *testing.T, prober iconcdn.Prober) *testApplication {
	testingT.Helper()
	gin.SetMode(gin.TestMode)

	database := testutil.NewSQLiteTestDatabase(testingT).OpenMigrated(testingT)
	logger := zap.NewNop()

	configStore := storage.NewAppConfigStore(database)
	directory := groups.NewDirectory(database)
	codec := widget.NewCodec(configStore, logger)
	legacy := widget.NewLegacyAdapter(configStore)
	resolver := widget.NewResolver(codec, legacy)
	writer := widget.NewWriter(codec, legacy, directory)
	aggregator := widget.NewOriginAggregator(codec, legacy, configStore)

	sessionManager := httpapi.NewSessionManager(testSessionSecret)

	configHandlers := httpapi.NewConfigHandlers(configStore, directory, logger)
	publicWidgetHandlers := httpapi.NewPublicWidgetHandlers(codec, legacy, writer, aggregator, logger)
	groupWidgetHandlers := httpapi.NewGroupWidgetHandlers(codec, legacy, writer, directory, aggregator, logger)
	personalSettingsHandlers := httpapi.NewPersonalSettingsHandlers(configStore, aggregator, logger)
	dashboardHandlers := httpapi.NewDashboardHandlers(resolver, aggregator, directory, configStore, logger)
	iconProxyHandlers := httpapi.NewIconProxyHandlers(prober, logger)

	router := gin.New()

	adminGroup := router.Group("/api")
	adminGroup.Use(httpapi.AdminAuthMiddleware(testAdminBearerToken))
	adminGroup.GET("/config", configHandlers.GetConfig)
	adminGroup.POST("/config", configHandlers.SetAdminConfig)
	adminGroup.GET("/groups", configHandlers.GetGroups)
	adminGroup.GET("/public-widgets", publicWidgetHandlers.ListPublicWidgets)
	adminGroup.POST("/public-widgets", publicWidgetHandlers.SetPublicWidget)
	adminGroup.DELETE("/public-widgets/:id", publicWidgetHandlers.DeletePublicWidget)
	adminGroup.GET("/group-widgets", groupWidgetHandlers.ListGroupWidgets)
	adminGroup.POST("/group-widgets", groupWidgetHandlers.SetGroupWidget)
	adminGroup.DELETE("/group-widgets/:id", groupWidgetHandlers.DeleteGroupWidget)

	userGroup := router.Group("/api")
	userGroup.Use(sessionManager.RequireUser())
	userGroup.GET("/personal-settings", personalSettingsHandlers.GetSettings)
	userGroup.POST("/personal-settings", personalSettingsHandlers.SetSettings)
	userGroup.GET("/dashboard/public/:slot", dashboardHandlers.PublicSlot)
	userGroup.GET("/dashboard/group/:slot", dashboardHandlers.GroupSlot)
	userGroup.GET("/dashboard/personal", dashboardHandlers.PersonalSlot)
	userGroup.GET("/proxy-icon/:icon", iconProxyHandlers.ProbeIcon)

	application := &testApplication{
		router:      router,
		database:    database,
		configStore: configStore,
		codec:       codec,
	}
	application.seedGroup(testingT, testHandlerGroupID, testHandlerGroupName)

	return application
}

func (application *testApplication) seedGroup(testingT *testing.T, groupID string, displayName string) {
	testingT.Helper()
	require.NoError(testingT, application.database.Create(&model.Group{ID: groupID, DisplayName: displayName}).Error)
}

func (application *testApplication) seedMembership(testingT *testing.T, groupID string, userID string) {
	testingT.Helper()
	require.NoError(testingT, application.database.Create(&model.GroupMembership{GroupID: groupID, UserID: userID}).Error)
}

func (application *testApplication) performAdminRequest(testingT *testing.T, method string, path string, body any) *httptest.ResponseRecorder {
	testingT.Helper()

	request := httptest.NewRequest(method, path, encodeRequestBody(testingT, body))
	request.Header.Set(headerAuthorizationName, headerAuthorizationValue)
	request.Header.Set(headerContentTypeName, contentTypeJSONValue)

	recorder := httptest.NewRecorder()
	application.router.ServeHTTP(recorder, request)
	return recorder
}

func (application *testApplication) performUserRequest(testingT *testing.T, method string, path string, body any) *httptest.ResponseRecorder {
	testingT.Helper()

	request := httptest.NewRequest(method, path, encodeRequestBody(testingT, body))
	request.Header.Set(httpapi.HeaderPlatformUser, testPlatformUserID)
	request.Header.Set(headerContentTypeName, contentTypeJSONValue)

	recorder := httptest.NewRecorder()
	application.router.ServeHTTP(recorder, request)
	return recorder
}

func encodeRequestBody(testingT *testing.T, body any) *bytes.Reader {
	testingT.Helper()

	if body == nil {
		return bytes.NewReader(nil)
	}
	encoded, encodeErr := json.Marshal(body)
	require.NoError(testingT, encodeErr)
	return bytes.NewReader(encoded)
}

func decodeJSONBody(testingT *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	testingT.Helper()

	var decoded map[string]any
	require.NoError(testingT, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return decoded
}

// staticProber is an icon CDN stub with a fixed answer.
type staticProber struct {
	exists   bool
	probeErr error
}

func (prober staticProber) Probe(_ context.Context, _ string, _ string) (bool, error) {
	return prober.exists, prober.probeErr
}

func decodeJSONArray(testingT *testing.T, recorder *httptest.ResponseRecorder) []map[string]any {
	testingT.Helper()

	var decoded []map[string]any
	require.NoError(testingT, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return decoded
}
