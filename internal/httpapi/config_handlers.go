package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/groups"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/widget"
)

const (
	jsonKeyWidgetTitle     = "widgetTitle"
	jsonKeyWidgetIcon      = "widgetIcon"
	jsonKeyWidgetIconColor = "widgetIconColor"
	jsonKeyIframeURL       = "iframeUrl"
	jsonKeyIframeHeight    = "iframeHeight"
	jsonKeyExtraWide       = "extraWide"
	jsonKeyMaxSize         = "maxSize"
	jsonKeyGroupID         = "id"
	jsonKeyGroupName       = "displayName"

	defaultLegacyWidgetTitle = "iFrame Widget"

	logEventBulkConfigWrite = "bulk_config_write_failed"
	logEventGroupListFailed = "group_list_failed"
	logFieldKey             = "key"
)

// ConfigHandlers serves the legacy flat configuration surface and the group
// listing used by the admin settings UI.
type ConfigHandlers struct {
	configStore widget.ConfigStore
	directory   *groups.Directory
	logger      *zap.Logger
}

// NewConfigHandlers creates ConfigHandlers over the given collaborators.
func NewConfigHandlers(configStore widget.ConfigStore, directory *groups.Directory, logger *zap.Logger) *ConfigHandlers {
	return &ConfigHandlers{configStore: configStore, directory: directory, logger: logger}
}

// GetConfig returns the public slot-1 configuration in its legacy flat shape.
func (handlers *ConfigHandlers) GetConfig(context *gin.Context) {
	context.JSON(http.StatusOK, gin.H{
		jsonKeyWidgetTitle:     handlers.configStore.GetAppValue(widget.KeyLegacyWidgetTitle, defaultLegacyWidgetTitle),
		jsonKeyExtraWide:       handlers.configStore.GetAppValue(widget.KeyLegacyExtraWide, "false") == "true",
		jsonKeyMaxSize:         handlers.configStore.GetAppValue(widget.KeyLegacyMaxSize, "false") == "true",
		jsonKeyIframeURL:       handlers.configStore.GetAppValue(widget.KeyLegacyIframeURL, ""),
		jsonKeyIframeHeight:    handlers.configStore.GetAppValue(widget.KeyLegacyIframeHeight, ""),
		jsonKeyWidgetIcon:      handlers.configStore.GetAppValue(widget.KeyLegacyWidgetIcon, ""),
		jsonKeyWidgetIconColor: handlers.configStore.GetAppValue(widget.KeyLegacyWidgetIconColor, ""),
	})
}

// SetAdminConfig bulk-writes app-scoped key/value pairs. Boolean values are
// normalized to the strings "true"/"false" before persisting.
func (handlers *ConfigHandlers) SetAdminConfig(context *gin.Context) {
	var configValues map[string]any
	if bindErr := context.BindJSON(&configValues); bindErr != nil {
		context.JSON(http.StatusBadRequest, errorResponse(messageInvalidInput))
		return
	}

	for configKey, configValue := range configValues {
		if writeErr := handlers.configStore.SetAppValue(configKey, normalizeConfigValue(configValue)); writeErr != nil {
			handlers.logger.Warn(logEventBulkConfigWrite,
				zap.String(logFieldKey, configKey),
				zap.Error(writeErr),
			)
			context.JSON(http.StatusInternalServerError, errorResponse(messageSaveFailed))
			return
		}
	}

	context.JSON(http.StatusOK, successResponse(nil))
}

// GetGroups lists all directory groups with their display names.
func (handlers *ConfigHandlers) GetGroups(context *gin.Context) {
	allGroups, listErr := handlers.directory.ListGroups()
	if listErr != nil {
		handlers.logger.Warn(logEventGroupListFailed, zap.Error(listErr))
		context.JSON(http.StatusInternalServerError, errorResponse(messageGroupsUnavailable))
		return
	}

	groupEntries := make([]gin.H, 0, len(allGroups))
	for _, group := range allGroups {
		displayName := group.DisplayName
		if displayName == "" {
			displayName = group.ID
		}
		groupEntries = append(groupEntries, gin.H{
			jsonKeyGroupID:   group.ID,
			jsonKeyGroupName: displayName,
		})
	}

	context.JSON(http.StatusOK, groupEntries)
}

func normalizeConfigValue(configValue any) string {
	switch typedValue := configValue.(type) {
	case bool:
		if typedValue {
			return "true"
		}
		return "false"
	case string:
		return typedValue
	default:
		return fmt.Sprint(typedValue)
	}
}
