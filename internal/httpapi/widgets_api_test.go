package httpapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/widget"
)

func TestListPublicWidgetsStartsEmpty(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	recorder := application.performAdminRequest(t, http.MethodGet, "/api/public-widgets", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Empty(t, decodeJSONArray(t, recorder))
}

func TestListPublicWidgetsRequiresAdminToken(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	recorder := application.performUserRequest(t, http.MethodGet, "/api/public-widgets", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestSetPublicWidgetCreatesRecord(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	createRecorder := application.performAdminRequest(t, http.MethodPost, "/api/public-widgets", map[string]any{
		"title": testHandlerTitleValue,
		"url":   testHandlerWidgetURL,
	})
	require.Equal(t, http.StatusOK, createRecorder.Code)

	createResponse := decodeJSONBody(t, createRecorder)
	require.Equal(t, "success", createResponse["status"])
	require.NotEmpty(t, createResponse["widgetId"])
	require.Equal(t, float64(1), createResponse["slot"])

	listRecorder := application.performAdminRequest(t, http.MethodGet, "/api/public-widgets", nil)
	records := decodeJSONArray(t, listRecorder)
	require.Len(t, records, 1)
	require.Equal(t, testHandlerWidgetURL, records[0]["url"])
	require.Equal(t, true, records[0]["enabled"])
}

func TestSetPublicWidgetCarriesAdminPolicyHeaderOnList(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	createRecorder := application.performAdminRequest(t, http.MethodPost, "/api/public-widgets", map[string]any{
		"url": testHandlerWidgetURL,
	})
	require.Equal(t, http.StatusOK, createRecorder.Code)

	listRecorder := application.performAdminRequest(t, http.MethodGet, "/api/public-widgets", nil)
	policy := listRecorder.Header().Get(widget.HeaderContentSecurityPolicy)
	require.Contains(t, policy, "frame-src 'self' https://boards.example.com")
	require.Contains(t, policy, widget.IconCDNDomain)
}

func TestSetPublicWidgetRejectsInvalidURL(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	recorder := application.performAdminRequest(t, http.MethodPost, "/api/public-widgets", map[string]any{
		"url": "ftp://files.example.com",
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSetPublicWidgetRejectsOutOfRangeSlot(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	recorder := application.performAdminRequest(t, http.MethodPost, "/api/public-widgets", map[string]any{
		"slot": 9,
		"url":  testHandlerWidgetURL,
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSetPublicWidgetReportsSlotsExhausted(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	for index := 0; index < 5; index++ {
		recorder := application.performAdminRequest(t, http.MethodPost, "/api/public-widgets", map[string]any{
			"url": testHandlerWidgetURL,
		})
		require.Equal(t, http.StatusOK, recorder.Code)
	}

	overflowRecorder := application.performAdminRequest(t, http.MethodPost, "/api/public-widgets", map[string]any{
		"url": testHandlerOtherURL,
	})
	require.Equal(t, http.StatusConflict, overflowRecorder.Code)
}

func TestDeletePublicWidgetRemovesRecord(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	createRecorder := application.performAdminRequest(t, http.MethodPost, "/api/public-widgets", map[string]any{
		"url": testHandlerWidgetURL,
	})
	widgetID, isString := decodeJSONBody(t, createRecorder)["widgetId"].(string)
	require.True(t, isString)

	deleteRecorder := application.performAdminRequest(t, http.MethodDelete, "/api/public-widgets/"+widgetID, nil)
	require.Equal(t, http.StatusOK, deleteRecorder.Code)

	listRecorder := application.performAdminRequest(t, http.MethodGet, "/api/public-widgets", nil)
	require.Empty(t, decodeJSONArray(t, listRecorder))
}

func TestDeletePublicWidgetUnknownIdentifierReturnsNotFound(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	recorder := application.performAdminRequest(t, http.MethodDelete, "/api/public-widgets/public-missing", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestPublicWidgetListFallsBackToLegacyKeys(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	require.NoError(t, application.configStore.SetAppValue(widget.KeyLegacyIframeURL, testHandlerWidgetURL))

	recorder := application.performAdminRequest(t, http.MethodGet, "/api/public-widgets", nil)
	records := decodeJSONArray(t, recorder)
	require.Len(t, records, 1)
	require.Equal(t, "public_default", records[0]["id"])
	require.Equal(t, testHandlerWidgetURL, records[0]["url"])
}

func TestSetGroupWidgetValidatesGroup(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	missingRecorder := application.performAdminRequest(t, http.MethodPost, "/api/group-widgets", map[string]any{
		"url": testHandlerWidgetURL,
	})
	require.Equal(t, http.StatusBadRequest, missingRecorder.Code)

	unknownRecorder := application.performAdminRequest(t, http.MethodPost, "/api/group-widgets", map[string]any{
		"groupId": "no-such-group",
		"url":     testHandlerWidgetURL,
	})
	require.Equal(t, http.StatusBadRequest, unknownRecorder.Code)
}

func TestGroupWidgetRoundTripDecoratesDisplayName(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	createRecorder := application.performAdminRequest(t, http.MethodPost, "/api/group-widgets", map[string]any{
		"groupId": testHandlerGroupID,
		"title":   testHandlerTitleValue,
		"url":     testHandlerWidgetURL,
	})
	require.Equal(t, http.StatusOK, createRecorder.Code)

	listRecorder := application.performAdminRequest(t, http.MethodGet, "/api/group-widgets", nil)
	records := decodeJSONArray(t, listRecorder)
	require.Len(t, records, 1)
	require.Equal(t, testHandlerGroupID, records[0]["groupId"])
	require.Equal(t, testHandlerGroupName, records[0]["groupDisplayName"])
}

func TestDeleteGroupWidgetLegacyDefaultClearsFlatKeys(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	legacyKey := widget.LegacyGroupKey(testHandlerGroupID, "iframeUrl")
	require.NoError(t, application.configStore.SetAppValue(legacyKey, testHandlerWidgetURL))

	deleteRecorder := application.performAdminRequest(t, http.MethodDelete, "/api/group-widgets/"+testHandlerGroupID+"_default", nil)
	require.Equal(t, http.StatusOK, deleteRecorder.Code)
	require.Empty(t, application.configStore.GetAppValue(legacyKey, ""))
}

func TestGetConfigReturnsLegacyShape(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	require.NoError(t, application.configStore.SetAppValue(widget.KeyLegacyIframeURL, testHandlerWidgetURL))
	require.NoError(t, application.configStore.SetAppValue(widget.KeyLegacyExtraWide, "true"))

	recorder := application.performAdminRequest(t, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	configBody := decodeJSONBody(t, recorder)
	require.Equal(t, "iFrame Widget", configBody["widgetTitle"])
	require.Equal(t, testHandlerWidgetURL, configBody["iframeUrl"])
	require.Equal(t, true, configBody["extraWide"])
	require.Equal(t, false, configBody["maxSize"])
}

func TestSetAdminConfigNormalizesBooleans(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	recorder := application.performAdminRequest(t, http.MethodPost, "/api/config", map[string]any{
		widget.KeyLegacyIframeURL: testHandlerWidgetURL,
		widget.KeyLegacyExtraWide: true,
		widget.KeyLegacyMaxSize:   false,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	require.Equal(t, testHandlerWidgetURL, application.configStore.GetAppValue(widget.KeyLegacyIframeURL, ""))
	require.Equal(t, "true", application.configStore.GetAppValue(widget.KeyLegacyExtraWide, ""))
	require.Equal(t, "false", application.configStore.GetAppValue(widget.KeyLegacyMaxSize, ""))
}

func TestGetGroupsListsDirectoryGroups(t *testing.T) {
	application := newTestApplication(t, staticProber{exists: true})

	recorder := application.performAdminRequest(t, http.MethodGet, "/api/groups", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	groupsBody := decodeJSONArray(t, recorder)
	require.Len(t, groupsBody, 1)
	require.Equal(t, testHandlerGroupID, groupsBody[0]["id"])
	require.Equal(t, testHandlerGroupName, groupsBody[0]["displayName"])
}
