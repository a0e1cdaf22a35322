package widget

import (
	"sort"
	"strings"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/model"
)

// LegacyAdapter translates between WidgetRecord and the legacy flat key
// layout: app-global keys for the public slot-1 widget and
// group_<groupId>_<field> keys for group widgets. It is the only place that
// knows the flat layout; the resolver and writer call through it.
type LegacyAdapter struct {
	configStore ConfigStore
}

// NewLegacyAdapter creates a LegacyAdapter over the given configuration store.
func NewLegacyAdapter(configStore ConfigStore) *LegacyAdapter {
	return &LegacyAdapter{configStore: configStore}
}

// PublicRecord synthesizes a slot-1 record from the legacy flat public keys.
// The second return value is false when no legacy URL is configured.
func (adapter *LegacyAdapter) PublicRecord() (model.WidgetRecord, bool) {
	legacyURL := adapter.configStore.GetAppValue(KeyLegacyIframeURL, "")
	if strings.TrimSpace(legacyURL) == "" {
		return model.WidgetRecord{}, false
	}

	return model.WidgetRecord{
		ID:            model.LegacyDefaultRecordID(model.ScopePrefixPublic),
		Slot:          model.WidgetSlotMin,
		Title:         adapter.configStore.GetAppValue(KeyLegacyWidgetTitle, ""),
		Icon:          adapter.configStore.GetAppValue(KeyLegacyWidgetIcon, ""),
		IconColor:     adapter.configStore.GetAppValue(KeyLegacyWidgetIconColor, ""),
		URL:           legacyURL,
		Height:        adapter.configStore.GetAppValue(KeyLegacyIframeHeight, ""),
		ExtraWide:     adapter.configStore.GetAppValue(KeyLegacyExtraWide, booleanStringFalse) == booleanStringTrue,
		Enabled:       true,
		IframeSandbox: adapter.configStore.GetAppValue(KeyLegacyIframeSandbox, model.DefaultIframeSandbox),
		IframeAllow:   adapter.configStore.GetAppValue(KeyLegacyIframeAllow, ""),
		IsDefault:     true,
	}, true
}

// PublicURL returns the raw legacy public widget URL, empty when unset.
func (adapter *LegacyAdapter) PublicURL() string {
	return strings.TrimSpace(adapter.configStore.GetAppValue(KeyLegacyIframeURL, ""))
}

// GroupRecord synthesizes a slot-1 record from the legacy flat keys of one
// group. The second return value is false when the group has no legacy URL.
func (adapter *LegacyAdapter) GroupRecord(groupID string) (model.WidgetRecord, bool) {
	legacyURL := adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldIframeURL), "")
	if strings.TrimSpace(legacyURL) == "" {
		return model.WidgetRecord{}, false
	}

	return model.WidgetRecord{
		ID:            model.LegacyDefaultRecordID(groupID),
		Slot:          model.WidgetSlotMin,
		GroupID:       groupID,
		Title:         adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldWidgetTitle), ""),
		Icon:          adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldWidgetIcon), ""),
		IconColor:     adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldWidgetIconColor), ""),
		URL:           legacyURL,
		Height:        adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldIframeHeight), ""),
		ExtraWide:     adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldExtraWide), booleanStringFalse) == booleanStringTrue,
		Enabled:       true,
		IframeSandbox: adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldIframeSandbox), model.DefaultIframeSandbox),
		IframeAllow:   adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldIframeAllow), ""),
		IsDefault:     true,
	}, true
}

// GroupRecords scans the app keys for legacy group widget configurations and
// synthesizes one record per group that carries any meaningful data (a URL,
// title, or icon).
func (adapter *LegacyAdapter) GroupRecords() []model.WidgetRecord {
	allKeys, keysErr := adapter.configStore.AppKeys()
	if keysErr != nil {
		return nil
	}

	groupIDs := map[string]bool{}
	for _, key := range allKeys {
		if !strings.HasPrefix(key, legacyGroupKeyPrefix) {
			continue
		}
		keyParts := strings.SplitN(key, legacyGroupKeySeparator, 3)
		if len(keyParts) < 3 {
			continue
		}
		groupIDs[keyParts[1]] = true
	}

	orderedGroupIDs := make([]string, 0, len(groupIDs))
	for groupID := range groupIDs {
		orderedGroupIDs = append(orderedGroupIDs, groupID)
	}
	sort.Strings(orderedGroupIDs)

	records := make([]model.WidgetRecord, 0, len(orderedGroupIDs))
	for _, groupID := range orderedGroupIDs {
		record := model.WidgetRecord{
			ID:            model.LegacyDefaultRecordID(groupID),
			Slot:          model.WidgetSlotMin,
			GroupID:       groupID,
			Title:         adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldWidgetTitle), ""),
			Icon:          adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldWidgetIcon), ""),
			IconColor:     adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldWidgetIconColor), ""),
			URL:           adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldIframeURL), ""),
			Height:        adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldIframeHeight), ""),
			ExtraWide:     adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldExtraWide), booleanStringFalse) == booleanStringTrue,
			Enabled:       true,
			IframeSandbox: adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldIframeSandbox), model.DefaultIframeSandbox),
			IframeAllow:   adapter.configStore.GetAppValue(LegacyGroupKey(groupID, legacyGroupFieldIframeAllow), ""),
			IsDefault:     true,
		}
		if record.URL == "" && record.Title == "" && record.Icon == "" {
			continue
		}
		records = append(records, record)
	}

	return records
}

// MirrorPublicRecord writes a public slot-1 record through to the legacy flat
// keys for consumers that still read them.
func (adapter *LegacyAdapter) MirrorPublicRecord(record model.WidgetRecord) error {
	extraWide := booleanStringFalse
	if record.ExtraWide {
		extraWide = booleanStringTrue
	}

	assignments := []struct {
		key   string
		value string
	}{
		{key: KeyLegacyWidgetTitle, value: record.Title},
		{key: KeyLegacyWidgetIcon, value: record.Icon},
		{key: KeyLegacyWidgetIconColor, value: record.IconColor},
		{key: KeyLegacyIframeURL, value: record.URL},
		{key: KeyLegacyIframeHeight, value: record.Height},
		{key: KeyLegacyExtraWide, value: extraWide},
		{key: KeyLegacyIframeSandbox, value: record.IframeSandbox},
		{key: KeyLegacyIframeAllow, value: record.IframeAllow},
	}

	for _, assignment := range assignments {
		if writeErr := adapter.configStore.SetAppValue(assignment.key, assignment.value); writeErr != nil {
			return writeErr
		}
	}

	return nil
}

// ClearPublicKeys removes every legacy flat public key.
func (adapter *LegacyAdapter) ClearPublicKeys() error {
	publicKeys := []string{
		KeyLegacyWidgetTitle,
		KeyLegacyWidgetIcon,
		KeyLegacyWidgetIconColor,
		KeyLegacyIframeURL,
		KeyLegacyIframeHeight,
		KeyLegacyExtraWide,
		KeyLegacyMaxSize,
		KeyLegacyIframeSandbox,
		KeyLegacyIframeAllow,
	}

	for _, key := range publicKeys {
		if deleteErr := adapter.configStore.DeleteAppValue(key); deleteErr != nil {
			return deleteErr
		}
	}

	return nil
}

// ClearGroupKeys removes every legacy flat key of one group.
func (adapter *LegacyAdapter) ClearGroupKeys(groupID string) error {
	groupFields := []string{
		legacyGroupFieldWidgetTitle,
		legacyGroupFieldWidgetIcon,
		legacyGroupFieldWidgetIconColor,
		legacyGroupFieldIframeURL,
		legacyGroupFieldIframeHeight,
		legacyGroupFieldExtraWide,
		legacyGroupFieldIframeSandbox,
		legacyGroupFieldIframeAllow,
	}

	for _, field := range groupFields {
		if deleteErr := adapter.configStore.DeleteAppValue(LegacyGroupKey(groupID, field)); deleteErr != nil {
			return deleteErr
		}
	}

	return nil
}
