package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/model"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/widget"
)

const (
	jsonKeyWidgetID    = "widgetId"
	jsonKeySlot        = "slot"
	routeParamRecordID = "id"

	logEventWidgetWriteFailed  = "widget_write_failed"
	logEventWidgetDeleteFailed = "widget_delete_failed"
	logFieldRecordID           = "record_id"
)

// widgetWriteRequest is the JSON body of collection mutation endpoints.
type widgetWriteRequest struct {
	ID            string `json:"id"`
	Slot          int    `json:"slot"`
	GroupID       string `json:"groupId"`
	Title         string `json:"title"`
	Icon          string `json:"icon"`
	IconColor     string `json:"iconColor"`
	URL           string `json:"url"`
	Height        string `json:"height"`
	ExtraWide     bool   `json:"extraWide"`
	Enabled       *bool  `json:"enabled"`
	IframeSandbox string `json:"iframeSandbox"`
	IframeAllow   string `json:"iframeAllow"`
}

func (request widgetWriteRequest) toInput() model.WidgetRecordInput {
	return model.WidgetRecordInput{
		ID:            request.ID,
		Slot:          request.Slot,
		GroupID:       request.GroupID,
		Title:         request.Title,
		Icon:          request.Icon,
		IconColor:     request.IconColor,
		URL:           request.URL,
		Height:        request.Height,
		ExtraWide:     request.ExtraWide,
		Enabled:       request.Enabled,
		IframeSandbox: request.IframeSandbox,
		IframeAllow:   request.IframeAllow,
	}
}

// PublicWidgetHandlers serves CRUD for the public widget collection.
type PublicWidgetHandlers struct {
	codec      *widget.Codec
	legacy     *widget.LegacyAdapter
	writer     *widget.Writer
	aggregator *widget.OriginAggregator
	logger     *zap.Logger
}

// NewPublicWidgetHandlers creates PublicWidgetHandlers over the widget core.
func NewPublicWidgetHandlers(codec *widget.Codec, legacy *widget.LegacyAdapter, writer *widget.Writer, aggregator *widget.OriginAggregator, logger *zap.Logger) *PublicWidgetHandlers {
	return &PublicWidgetHandlers{codec: codec, legacy: legacy, writer: writer, aggregator: aggregator, logger: logger}
}

// ListPublicWidgets returns the public collection. An installation that never
// migrated to collection storage reports its legacy flat-key widget instead.
func (handlers *PublicWidgetHandlers) ListPublicWidgets(context *gin.Context) {
	context.Header(widget.HeaderContentSecurityPolicy,
		widget.BuildPolicyHeaderValue(handlers.aggregator.AdminSettingsOrigins()))

	records := handlers.codec.LoadPublic().Records
	if len(records) == 0 {
		if legacyRecord, found := handlers.legacy.PublicRecord(); found {
			records = []model.WidgetRecord{legacyRecord}
		}
	}
	if records == nil {
		records = []model.WidgetRecord{}
	}

	context.JSON(http.StatusOK, records)
}

// SetPublicWidget creates or updates one public widget record.
func (handlers *PublicWidgetHandlers) SetPublicWidget(context *gin.Context) {
	var requestBody widgetWriteRequest
	if bindErr := context.BindJSON(&requestBody); bindErr != nil {
		context.JSON(http.StatusBadRequest, errorResponse(messageInvalidInput))
		return
	}

	record, writeErr := handlers.writer.SetPublicWidget(requestBody.toInput())
	if writeErr != nil {
		statusCode, message := widgetWriteErrorStatus(writeErr)
		if statusCode == http.StatusInternalServerError {
			handlers.logger.Warn(logEventWidgetWriteFailed, zap.Error(writeErr))
		}
		context.JSON(statusCode, errorResponse(message))
		return
	}

	context.JSON(http.StatusOK, successResponse(gin.H{
		jsonKeyWidgetID: record.ID,
		jsonKeySlot:     record.Slot,
	}))
}

// DeletePublicWidget removes one public widget record by identifier.
func (handlers *PublicWidgetHandlers) DeletePublicWidget(context *gin.Context) {
	recordID := context.Param(routeParamRecordID)

	if deleteErr := handlers.writer.DeletePublicWidget(recordID); deleteErr != nil {
		statusCode, message := widgetWriteErrorStatus(deleteErr)
		if statusCode == http.StatusInternalServerError {
			handlers.logger.Warn(logEventWidgetDeleteFailed,
				zap.String(logFieldRecordID, recordID),
				zap.Error(deleteErr),
			)
		}
		context.JSON(statusCode, errorResponse(message))
		return
	}

	context.JSON(http.StatusOK, successResponse(nil))
}
