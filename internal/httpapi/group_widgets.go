package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/groups"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/model"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/widget"
)

// groupWidgetResponse decorates a record with the display name of its group.
type groupWidgetResponse struct {
	model.WidgetRecord
	GroupDisplayName string `json:"groupDisplayName"`
}

// GroupWidgetHandlers serves CRUD for the group widget collection.
type GroupWidgetHandlers struct {
	codec      *widget.Codec
	legacy     *widget.LegacyAdapter
	writer     *widget.Writer
	directory  *groups.Directory
	aggregator *widget.OriginAggregator
	logger     *zap.Logger
}

// NewGroupWidgetHandlers creates GroupWidgetHandlers over the widget core.
func NewGroupWidgetHandlers(codec *widget.Codec, legacy *widget.LegacyAdapter, writer *widget.Writer, directory *groups.Directory, aggregator *widget.OriginAggregator, logger *zap.Logger) *GroupWidgetHandlers {
	return &GroupWidgetHandlers{codec: codec, legacy: legacy, writer: writer, directory: directory, aggregator: aggregator, logger: logger}
}

// ListGroupWidgets returns the group collection decorated with group display
// names. An installation without collection storage reports the widgets
// synthesized from legacy flat keys.
func (handlers *GroupWidgetHandlers) ListGroupWidgets(context *gin.Context) {
	context.Header(widget.HeaderContentSecurityPolicy,
		widget.BuildPolicyHeaderValue(handlers.aggregator.AdminSettingsOrigins()))

	records := handlers.codec.LoadGroup().Records
	if len(records) == 0 {
		records = handlers.legacy.GroupRecords()
	}

	responseRecords := make([]groupWidgetResponse, 0, len(records))
	for _, record := range records {
		responseRecords = append(responseRecords, groupWidgetResponse{
			WidgetRecord:     record,
			GroupDisplayName: handlers.directory.GroupDisplayName(record.GroupID),
		})
	}

	context.JSON(http.StatusOK, responseRecords)
}

// SetGroupWidget creates or updates one group widget record.
func (handlers *GroupWidgetHandlers) SetGroupWidget(context *gin.Context) {
	var requestBody widgetWriteRequest
	if bindErr := context.BindJSON(&requestBody); bindErr != nil {
		context.JSON(http.StatusBadRequest, errorResponse(messageInvalidInput))
		return
	}

	record, writeErr := handlers.writer.SetGroupWidget(requestBody.toInput())
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

// DeleteGroupWidget removes one group widget record by identifier.
func (handlers *GroupWidgetHandlers) DeleteGroupWidget(context *gin.Context) {
	recordID := context.Param(routeParamRecordID)

	if deleteErr := handlers.writer.DeleteGroupWidget(recordID); deleteErr != nil {
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
