package widget

// Configuration keys for the scoped key/value store. The JSON collection keys
// hold one array per scope; the remaining keys are the legacy flat layout kept
// readable for consumers that predate the collections.
const (
	// KeyPublicWidgetsJSON stores the public widget collection as one JSON array.
	KeyPublicWidgetsJSON = "publicWidgetsJson"
	// KeyGroupWidgetsJSON stores the group widget collection as one JSON array.
	KeyGroupWidgetsJSON = "groupWidgetsJson"

	// Legacy flat keys describing the public slot-1 widget.
	KeyLegacyWidgetTitle     = "widgetTitle"
	KeyLegacyWidgetIcon      = "widgetIcon"
	KeyLegacyWidgetIconColor = "widgetIconColor"
	KeyLegacyIframeURL       = "iframeUrl"
	KeyLegacyIframeHeight    = "iframeHeight"
	KeyLegacyExtraWide       = "extraWide"
	KeyLegacyMaxSize         = "maxSize"
	KeyLegacyIframeSandbox   = "iframeSandbox"
	KeyLegacyIframeAllow     = "iframeAllow"

	// Per-user keys describing the personal widget.
	KeyPersonalWidgetTitle     = "personal_widget_title"
	KeyPersonalWidgetIcon      = "personal_widget_icon"
	KeyPersonalWidgetIconColor = "personal_widget_icon_color"
	KeyPersonalIframeURL       = "personal_iframe_url"
	KeyPersonalIframeHeight    = "personal_iframe_height"
	KeyPersonalExtraWide       = "personal_extra_wide"
	KeyPersonalIframeSandbox   = "personal_iframe_sandbox"
	KeyPersonalIframeAllow     = "personal_iframe_allow"

	legacyGroupKeyPrefix    = "group_"
	legacyGroupKeySeparator = "_"

	// Legacy group field names as they appear inside group_<groupId>_<field> keys.
	legacyGroupFieldWidgetTitle     = "widgetTitle"
	legacyGroupFieldWidgetIcon      = "widgetIcon"
	legacyGroupFieldWidgetIconColor = "widgetIconColor"
	legacyGroupFieldIframeURL       = "iframeUrl"
	legacyGroupFieldIframeHeight    = "iframeHeight"
	legacyGroupFieldExtraWide       = "extraWide"
	legacyGroupFieldIframeSandbox   = "iframeSandbox"
	legacyGroupFieldIframeAllow     = "iframeAllow"

	booleanStringTrue  = "true"
	booleanStringFalse = "false"
)

// LegacyGroupKey builds the legacy flat key for one field of a group widget.
func LegacyGroupKey(groupID string, field string) string {
	return legacyGroupKeyPrefix + groupID + legacyGroupKeySeparator + field
}
