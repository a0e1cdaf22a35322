package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/model"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/widget"
)

const (
	jsonKeyStatus  = "status"
	jsonKeyMessage = "message"
	jsonKeyError   = "error"

	statusValueSuccess = "success"
	statusValueError   = "error"

	messageInvalidInput      = "Invalid input"
	messageInvalidURL        = "Widget URL must start with http:// or https://"
	messageInvalidSlot       = "Slot number must be between 1 and 5"
	messageInvalidTitle      = "Widget title is too long"
	messageMissingGroupID    = "Invalid input or missing groupId"
	messageUnknownGroup      = "Group does not exist"
	messageSlotsExhausted    = "All widget slots are taken"
	messageWidgetNotFound    = "Widget not found"
	messageConcurrentUpdate  = "Widget collection changed concurrently, retry"
	messageSaveFailed        = "Failed to save widget configuration"
	messageGroupsUnavailable = "Failed to load groups"
)

func successResponse(extraPairs gin.H) gin.H {
	responseBody := gin.H{jsonKeyStatus: statusValueSuccess}
	for key, value := range extraPairs {
		responseBody[key] = value
	}
	return responseBody
}

func errorResponse(message string) gin.H {
	return gin.H{jsonKeyStatus: statusValueError, jsonKeyMessage: message}
}

// widgetWriteErrorStatus maps widget mutation errors onto an HTTP status and a
// response message. Unrecognized errors read as a server-side save failure.
func widgetWriteErrorStatus(writeErr error) (int, string) {
	switch {
	case errors.Is(writeErr, model.ErrInvalidWidgetURL):
		return http.StatusBadRequest, messageInvalidURL
	case errors.Is(writeErr, model.ErrInvalidWidgetSlot):
		return http.StatusBadRequest, messageInvalidSlot
	case errors.Is(writeErr, model.ErrInvalidWidgetTitle):
		return http.StatusBadRequest, messageInvalidTitle
	case errors.Is(writeErr, widget.ErrMissingGroupID):
		return http.StatusBadRequest, messageMissingGroupID
	case errors.Is(writeErr, widget.ErrUnknownGroup):
		return http.StatusBadRequest, messageUnknownGroup
	case errors.Is(writeErr, widget.ErrSlotsExhausted):
		return http.StatusConflict, messageSlotsExhausted
	case errors.Is(writeErr, widget.ErrWidgetNotFound):
		return http.StatusNotFound, messageWidgetNotFound
	case errors.Is(writeErr, widget.ErrConcurrentUpdate):
		return http.StatusConflict, messageConcurrentUpdate
	default:
		return http.StatusInternalServerError, messageSaveFailed
	}
}
