package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/groups"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/model"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/widget"
)

const (
	jsonKeySlotNumber = "slotNumber"
	jsonKeyEnabled    = "enabled"
	jsonKeyUserGroup  = "userGroup"

	routeParamSlot = "slot"

	messageInvalidSlotParam = "Slot must be a number between 1 and 5"

	logEventMembershipLookupFailed = "membership_lookup_failed"
	logFieldUserID                 = "user_id"
)

// DashboardHandlers serves the render state of dashboard widget slots. Every
// response carries the dashboard-context CSP header so the host page may
// frame the resolved URLs.
type DashboardHandlers struct {
	resolver    *widget.Resolver
	aggregator  *widget.OriginAggregator
	directory   *groups.Directory
	configStore widget.ConfigStore
	logger      *zap.Logger
}

// NewDashboardHandlers creates DashboardHandlers over the widget core.
func NewDashboardHandlers(resolver *widget.Resolver, aggregator *widget.OriginAggregator, directory *groups.Directory, configStore widget.ConfigStore, logger *zap.Logger) *DashboardHandlers {
	return &DashboardHandlers{
		resolver:    resolver,
		aggregator:  aggregator,
		directory:   directory,
		configStore: configStore,
		logger:      logger,
	}
}

// PublicSlot returns the render state of one public widget slot.
func (handlers *DashboardHandlers) PublicSlot(context *gin.Context) {
	slotNumber, validSlot := parseSlotParam(context)
	if !validSlot {
		return
	}

	userID, _ := CurrentUserID(context)
	userGroups := handlers.userGroups(context, userID)
	handlers.setDashboardPolicy(context, userID, userGroups)

	record, found := handlers.resolver.ResolvePublic(slotNumber)
	context.JSON(http.StatusOK, slotStateResponse(slotNumber, record, found))
}

// GroupSlot returns the render state of one group widget slot for the
// requesting user's memberships.
func (handlers *DashboardHandlers) GroupSlot(context *gin.Context) {
	slotNumber, validSlot := parseSlotParam(context)
	if !validSlot {
		return
	}

	userID, found := CurrentUserID(context)
	if !found {
		context.JSON(http.StatusUnauthorized, errorResponse(authErrorUnauthorized))
		return
	}

	userGroups := handlers.userGroups(context, userID)
	handlers.setDashboardPolicy(context, userID, userGroups)

	record, resolved := handlers.resolver.ResolveGroup(userGroups, slotNumber)
	responseBody := slotStateResponse(slotNumber, record, resolved)
	responseBody[jsonKeyUserGroup] = record.GroupID
	context.JSON(http.StatusOK, responseBody)
}

// PersonalSlot returns the render state of the requesting user's personal widget.
func (handlers *DashboardHandlers) PersonalSlot(context *gin.Context) {
	userID, found := CurrentUserID(context)
	if !found {
		context.JSON(http.StatusUnauthorized, errorResponse(authErrorUnauthorized))
		return
	}

	userGroups := handlers.userGroups(context, userID)
	handlers.setDashboardPolicy(context, userID, userGroups)

	personalURL := strings.TrimSpace(handlers.configStore.GetUserValue(userID, widget.KeyPersonalIframeURL, ""))

	context.JSON(http.StatusOK, gin.H{
		jsonKeyEnabled:         personalURL != "",
		jsonKeyWidgetTitle:     handlers.configStore.GetUserValue(userID, widget.KeyPersonalWidgetTitle, ""),
		jsonKeyWidgetIcon:      handlers.configStore.GetUserValue(userID, widget.KeyPersonalWidgetIcon, defaultPersonalWidgetIcon),
		jsonKeyWidgetIconColor: handlers.configStore.GetUserValue(userID, widget.KeyPersonalWidgetIconColor, ""),
		jsonKeyIframeURL:       personalURL,
		jsonKeyIframeHeight:    handlers.configStore.GetUserValue(userID, widget.KeyPersonalIframeHeight, ""),
		jsonKeyExtraWide:       handlers.configStore.GetUserValue(userID, widget.KeyPersonalExtraWide, personalBooleanFalse) == personalBooleanTrue,
		jsonKeyIframeSandbox:   handlers.configStore.GetUserValue(userID, widget.KeyPersonalIframeSandbox, model.DefaultIframeSandbox),
		jsonKeyIframeAllow:     handlers.configStore.GetUserValue(userID, widget.KeyPersonalIframeAllow, ""),
	})
}

func (handlers *DashboardHandlers) userGroups(context *gin.Context, userID string) []string {
	if userID == "" {
		return nil
	}
	userGroups, lookupErr := handlers.directory.UserGroupIDs(userID)
	if lookupErr != nil {
		handlers.logger.Warn(logEventMembershipLookupFailed,
			zap.String(logFieldUserID, userID),
			zap.Error(lookupErr),
		)
		return nil
	}
	return userGroups
}

func (handlers *DashboardHandlers) setDashboardPolicy(context *gin.Context, userID string, userGroups []string) {
	context.Header(widget.HeaderContentSecurityPolicy,
		widget.BuildPolicyHeaderValue(handlers.aggregator.DashboardOrigins(userID, userGroups)))
}

func parseSlotParam(context *gin.Context) (int, bool) {
	slotNumber, parseErr := strconv.Atoi(context.Param(routeParamSlot))
	if parseErr != nil || model.ValidateWidgetSlot(slotNumber) != nil {
		context.JSON(http.StatusBadRequest, errorResponse(messageInvalidSlotParam))
		return 0, false
	}
	return slotNumber, true
}

// slotStateResponse shapes a resolved record into the render state the
// dashboard consumes. Unresolved slots report enabled false with empty state.
func slotStateResponse(slotNumber int, record model.WidgetRecord, found bool) gin.H {
	if !found {
		return gin.H{
			jsonKeySlotNumber: slotNumber,
			jsonKeyEnabled:    false,
		}
	}

	return gin.H{
		jsonKeySlotNumber:      slotNumber,
		jsonKeyEnabled:         record.Visible(),
		jsonKeyWidgetTitle:     record.Title,
		jsonKeyWidgetIcon:      record.Icon,
		jsonKeyWidgetIconColor: record.IconColor,
		jsonKeyIframeURL:       record.URL,
		jsonKeyIframeHeight:    record.Height,
		jsonKeyExtraWide:       record.ExtraWide,
		jsonKeyIframeSandbox:   record.IframeSandbox,
		jsonKeyIframeAllow:     record.IframeAllow,
	}
}
