package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/model"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/widget"
)

const (
	jsonKeyIframeSandbox = "iframeSandbox"
	jsonKeyIframeAllow   = "iframeAllow"

	defaultPersonalWidgetIcon = "icon-iframe"

	personalBooleanTrue  = "1"
	personalBooleanFalse = "0"

	logEventPersonalWriteFailed = "personal_settings_write_failed"
)

// personalSettingsRequest is the JSON body of the personal settings endpoint.
type personalSettingsRequest struct {
	WidgetTitle     string `json:"widgetTitle"`
	WidgetIcon      string `json:"widgetIcon"`
	WidgetIconColor string `json:"widgetIconColor"`
	IframeURL       string `json:"iframeUrl"`
	IframeHeight    string `json:"iframeHeight"`
	ExtraWide       bool   `json:"extraWide"`
	IframeSandbox   string `json:"iframeSandbox"`
	IframeAllow     string `json:"iframeAllow"`
}

// PersonalSettingsHandlers serves the per-user widget configuration.
type PersonalSettingsHandlers struct {
	configStore widget.ConfigStore
	aggregator  *widget.OriginAggregator
	logger      *zap.Logger
}

// NewPersonalSettingsHandlers creates PersonalSettingsHandlers.
func NewPersonalSettingsHandlers(configStore widget.ConfigStore, aggregator *widget.OriginAggregator, logger *zap.Logger) *PersonalSettingsHandlers {
	return &PersonalSettingsHandlers{configStore: configStore, aggregator: aggregator, logger: logger}
}

// GetSettings returns the requesting user's personal widget configuration.
// The response carries the personal-context CSP header so the settings page
// can frame the configured page.
func (handlers *PersonalSettingsHandlers) GetSettings(context *gin.Context) {
	userID, found := CurrentUserID(context)
	if !found {
		context.JSON(http.StatusUnauthorized, errorResponse(authErrorUnauthorized))
		return
	}

	context.Header(widget.HeaderContentSecurityPolicy,
		widget.BuildPolicyHeaderValue(handlers.aggregator.PersonalSettingsOrigins(userID)))

	context.JSON(http.StatusOK, gin.H{
		jsonKeyWidgetTitle:     handlers.configStore.GetUserValue(userID, widget.KeyPersonalWidgetTitle, ""),
		jsonKeyWidgetIcon:      handlers.configStore.GetUserValue(userID, widget.KeyPersonalWidgetIcon, defaultPersonalWidgetIcon),
		jsonKeyWidgetIconColor: handlers.configStore.GetUserValue(userID, widget.KeyPersonalWidgetIconColor, ""),
		jsonKeyIframeURL:       handlers.configStore.GetUserValue(userID, widget.KeyPersonalIframeURL, ""),
		jsonKeyIframeHeight:    handlers.configStore.GetUserValue(userID, widget.KeyPersonalIframeHeight, ""),
		jsonKeyExtraWide:       handlers.configStore.GetUserValue(userID, widget.KeyPersonalExtraWide, personalBooleanFalse) == personalBooleanTrue,
		jsonKeyIframeSandbox:   handlers.configStore.GetUserValue(userID, widget.KeyPersonalIframeSandbox, model.DefaultIframeSandbox),
		jsonKeyIframeAllow:     handlers.configStore.GetUserValue(userID, widget.KeyPersonalIframeAllow, ""),
	})
}

// SetSettings replaces the requesting user's personal widget configuration.
func (handlers *PersonalSettingsHandlers) SetSettings(context *gin.Context) {
	userID, found := CurrentUserID(context)
	if !found {
		context.JSON(http.StatusUnauthorized, errorResponse(authErrorUnauthorized))
		return
	}

	var requestBody personalSettingsRequest
	if bindErr := context.BindJSON(&requestBody); bindErr != nil {
		context.JSON(http.StatusBadRequest, errorResponse(messageInvalidInput))
		return
	}

	if validationErr := model.ValidateWidgetURL(requestBody.IframeURL); validationErr != nil {
		context.JSON(http.StatusBadRequest, errorResponse(messageInvalidURL))
		return
	}

	extraWide := personalBooleanFalse
	if requestBody.ExtraWide {
		extraWide = personalBooleanTrue
	}

	assignments := []struct {
		key   string
		value string
	}{
		{key: widget.KeyPersonalWidgetTitle, value: requestBody.WidgetTitle},
		{key: widget.KeyPersonalWidgetIcon, value: requestBody.WidgetIcon},
		{key: widget.KeyPersonalWidgetIconColor, value: requestBody.WidgetIconColor},
		{key: widget.KeyPersonalIframeURL, value: requestBody.IframeURL},
		{key: widget.KeyPersonalIframeHeight, value: requestBody.IframeHeight},
		{key: widget.KeyPersonalExtraWide, value: extraWide},
		{key: widget.KeyPersonalIframeSandbox, value: requestBody.IframeSandbox},
		{key: widget.KeyPersonalIframeAllow, value: requestBody.IframeAllow},
	}

	for _, assignment := range assignments {
		if writeErr := handlers.configStore.SetUserValue(userID, assignment.key, assignment.value); writeErr != nil {
			handlers.logger.Warn(logEventPersonalWriteFailed, zap.Error(writeErr))
			context.JSON(http.StatusInternalServerError, errorResponse(messageSaveFailed))
			return
		}
	}

	context.JSON(http.StatusOK, successResponse(nil))
}
