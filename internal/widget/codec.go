package widget

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/model"
)

const (
	logEventCollectionDecodeFailed = "widget_collection_decode_failed"
	logEventCollectionSelfHeal     = "widget_collection_self_heal"
	logFieldConfigKey              = "config_key"
)

// Collection is a decoded widget collection together with the storage version
// it was read at. The version feeds compare-and-swap saves.
type Collection struct {
	Records []model.WidgetRecord
	Version int64
}

// Codec loads and saves widget collections stored as single JSON blobs. Loads
// are defensive: absent or malformed blobs read as an empty collection, never
// as an error. Records missing an enabled flag or a slot assignment are
// backfilled on load and the healed collection is persisted immediately.
type Codec struct {
	configStore ConfigStore
	logger      *zap.Logger
}

// NewCodec creates a Codec over the given configuration store.
func NewCodec(configStore ConfigStore, logger *zap.Logger) *Codec {
	return &Codec{configStore: configStore, logger: logger}
}

// storedWidgetRecord mirrors WidgetRecord with optional fields kept as
// pointers so absent values can be told apart from explicit zero values.
type storedWidgetRecord struct {
	ID            string `json:"id"`
	Slot          *int   `json:"slot,omitempty"`
	GroupID       string `json:"groupId,omitempty"`
	Title         string `json:"title"`
	Icon          string `json:"icon"`
	IconColor     string `json:"iconColor"`
	URL           string `json:"url"`
	Height        string `json:"height"`
	ExtraWide     bool   `json:"extraWide"`
	Enabled       *bool  `json:"enabled,omitempty"`
	IframeSandbox string `json:"iframeSandbox,omitempty"`
	IframeAllow   string `json:"iframeAllow,omitempty"`
	IsDefault     *bool  `json:"isDefault,omitempty"`
}

// LoadPublic loads the public widget collection.
func (codec *Codec) LoadPublic() Collection {
	return codec.load(KeyPublicWidgetsJSON, false)
}

// LoadGroup loads the group widget collection.
func (codec *Codec) LoadGroup() Collection {
	return codec.load(KeyGroupWidgetsJSON, true)
}

// SavePublic persists the public widget collection with compare-and-swap
// semantics against the version the collection was loaded at.
func (codec *Codec) SavePublic(records []model.WidgetRecord, expectedVersion int64) error {
	return codec.save(KeyPublicWidgetsJSON, records, expectedVersion)
}

// SaveGroup persists the group widget collection.
func (codec *Codec) SaveGroup(records []model.WidgetRecord, expectedVersion int64) error {
	return codec.save(KeyGroupWidgetsJSON, records, expectedVersion)
}

func (codec *Codec) load(configKey string, slotsPerGroup bool) Collection {
	storedValue, storedVersion, readErr := codec.configStore.GetVersioned(configKey)
	if readErr != nil || storedValue == "" {
		return Collection{Version: storedVersion}
	}

	var storedRecords []storedWidgetRecord
	if decodeErr := json.Unmarshal([]byte(storedValue), &storedRecords); decodeErr != nil {
		if codec.logger != nil {
			codec.logger.Warn(logEventCollectionDecodeFailed,
				zap.String(logFieldConfigKey, configKey),
				zap.Error(decodeErr),
			)
		}
		return Collection{Version: storedVersion}
	}

	records, healed := backfillRecords(storedRecords, slotsPerGroup)
	if healed {
		if saveErr := codec.save(configKey, records, storedVersion); saveErr != nil && codec.logger != nil {
			// A concurrent writer got there first; the next load heals again.
			codec.logger.Warn(logEventCollectionSelfHeal,
				zap.String(logFieldConfigKey, configKey),
				zap.Error(saveErr),
			)
		}
	}

	return Collection{Records: records, Version: storedVersion}
}

func (codec *Codec) save(configKey string, records []model.WidgetRecord, expectedVersion int64) error {
	if records == nil {
		records = []model.WidgetRecord{}
	}
	encoded, encodeErr := json.Marshal(records)
	if encodeErr != nil {
		return encodeErr
	}
	return codec.configStore.CompareAndSwap(configKey, string(encoded), expectedVersion)
}

// backfillRecords converts stored records to model records, defaulting absent
// enabled flags (inheriting a legacy isDefault flag when present) and
// assigning the lowest free slot within the record's scope to records stored
// without one. The returned flag reports whether anything was backfilled.
func backfillRecords(storedRecords []storedWidgetRecord, slotsPerGroup bool) ([]model.WidgetRecord, bool) {
	records := make([]model.WidgetRecord, 0, len(storedRecords))
	usedSlots := map[string]map[int]bool{}

	scopeOf := func(stored storedWidgetRecord) string {
		if slotsPerGroup {
			return stored.GroupID
		}
		return ""
	}

	for _, stored := range storedRecords {
		if stored.Slot != nil && *stored.Slot != model.WidgetSlotUnassigned {
			scope := scopeOf(stored)
			if usedSlots[scope] == nil {
				usedSlots[scope] = map[int]bool{}
			}
			usedSlots[scope][*stored.Slot] = true
		}
	}

	healed := false
	for _, stored := range storedRecords {
		record := model.WidgetRecord{
			ID:            stored.ID,
			GroupID:       stored.GroupID,
			Title:         stored.Title,
			Icon:          stored.Icon,
			IconColor:     stored.IconColor,
			URL:           stored.URL,
			Height:        stored.Height,
			ExtraWide:     stored.ExtraWide,
			IframeSandbox: stored.IframeSandbox,
			IframeAllow:   stored.IframeAllow,
		}
		if stored.IsDefault != nil {
			record.IsDefault = *stored.IsDefault
		}

		switch {
		case stored.Enabled != nil:
			record.Enabled = *stored.Enabled
		case stored.IsDefault != nil:
			record.Enabled = *stored.IsDefault
			healed = true
		default:
			record.Enabled = true
			healed = true
		}

		if stored.Slot != nil && *stored.Slot != model.WidgetSlotUnassigned {
			record.Slot = *stored.Slot
		} else {
			scope := scopeOf(stored)
			if usedSlots[scope] == nil {
				usedSlots[scope] = map[int]bool{}
			}
			freeSlot := lowestFreeSlot(usedSlots[scope])
			if freeSlot != model.WidgetSlotUnassigned {
				usedSlots[scope][freeSlot] = true
				record.Slot = freeSlot
				healed = true
			}
		}

		records = append(records, record)
	}

	return records, healed
}

// lowestFreeSlot returns the smallest slot in 1..5 not present in usedSlots,
// or WidgetSlotUnassigned when every slot is taken.
func lowestFreeSlot(usedSlots map[int]bool) int {
	for slot := model.WidgetSlotMin; slot <= model.WidgetSlotMax; slot++ {
		if !usedSlots[slot] {
			return slot
		}
	}
	return model.WidgetSlotUnassigned
}
