package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/widget_svc/pkg/iconcdn"
)

const (
	jsonKeyExists = "exists"

	routeParamIconName = "icon"
	queryParamColor    = "color"

	messageIconNotFound = "Icon not found"

	logEventIconProbeFailed = "icon_probe_failed"
	logFieldIconName        = "icon_name"
)

// IconProxyHandlers answers availability checks against the icon CDN so the
// settings pages can validate icon names without loosening their CSP.
type IconProxyHandlers struct {
	prober iconcdn.Prober
	logger *zap.Logger
}

// NewIconProxyHandlers creates IconProxyHandlers over an icon CDN prober.
func NewIconProxyHandlers(prober iconcdn.Prober, logger *zap.Logger) *IconProxyHandlers {
	return &IconProxyHandlers{prober: prober, logger: logger}
}

// ProbeIcon checks whether the named icon exists on the CDN, optionally in a
// specific color variant.
func (handlers *IconProxyHandlers) ProbeIcon(context *gin.Context) {
	iconName := context.Param(routeParamIconName)
	colorValue := context.Query(queryParamColor)

	exists, probeErr := handlers.prober.Probe(context.Request.Context(), iconName, colorValue)
	if probeErr != nil && !errors.Is(probeErr, iconcdn.ErrIconNotFound) && !errors.Is(probeErr, iconcdn.ErrMissingIconName) {
		handlers.logger.Warn(logEventIconProbeFailed,
			zap.String(logFieldIconName, iconName),
			zap.Error(probeErr),
		)
	}
	if probeErr != nil || !exists {
		context.JSON(http.StatusNotFound, gin.H{
			jsonKeyExists: false,
			jsonKeyError:  messageIconNotFound,
		})
		return
	}

	context.JSON(http.StatusOK, gin.H{jsonKeyExists: true})
}
