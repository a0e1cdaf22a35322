package widget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/model"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/storage"
)

const (
	maxCollectionWriteAttempts = 3

	errorMessageSlotsExhausted   = "widget_slots_exhausted"
	errorMessageWidgetNotFound   = "widget_not_found"
	errorMessageUnknownGroup     = "unknown_group"
	errorMessageMissingGroupID   = "missing_group_id"
	errorMessageConcurrentUpdate = "widget_concurrent_update"
	errorMessageGroupLookup      = "widget: group lookup"
)

var (
	// ErrSlotsExhausted indicates every slot in the scope is already taken.
	ErrSlotsExhausted = errors.New(errorMessageSlotsExhausted)
	// ErrWidgetNotFound indicates a delete target that matches no record.
	ErrWidgetNotFound = errors.New(errorMessageWidgetNotFound)
	// ErrUnknownGroup indicates a group id the directory does not know.
	ErrUnknownGroup = errors.New(errorMessageUnknownGroup)
	// ErrMissingGroupID indicates a group-scoped write without a group id.
	ErrMissingGroupID = errors.New(errorMessageMissingGroupID)
	// ErrConcurrentUpdate indicates a write kept losing against concurrent writers.
	ErrConcurrentUpdate = errors.New(errorMessageConcurrentUpdate)
)

// GroupDirectory is the group membership collaborator the writer validates
// group-scoped records against.
type GroupDirectory interface {
	GroupExists(groupID string) (bool, error)
}

// Writer applies validated mutations to the widget collections. Collection
// saves are compare-and-swap with a bounded retry, so two concurrent slot
// assignments cannot silently overwrite each other.
type Writer struct {
	codec  *Codec
	legacy *LegacyAdapter
	groups GroupDirectory
}

// NewWriter creates a Writer over the given codec, legacy adapter, and group directory.
func NewWriter(codec *Codec, legacy *LegacyAdapter, groups GroupDirectory) *Writer {
	return &Writer{codec: codec, legacy: legacy, groups: groups}
}

// SetPublicWidget creates or updates a public widget record. New records
// without an explicit slot are assigned the lowest free slot; updates without
// one retain their prior slot. A mutation that lands in slot 1 is mirrored
// into the legacy flat keys.
func (writer *Writer) SetPublicWidget(input model.WidgetRecordInput) (model.WidgetRecord, error) {
	if validationErr := validateRecordInput(input); validationErr != nil {
		return model.WidgetRecord{}, validationErr
	}

	input.GroupID = ""
	input.ID = ensureRecordID(input.ID, model.ScopePrefixPublic)

	for attempt := 0; attempt < maxCollectionWriteAttempts; attempt++ {
		collection := writer.codec.LoadPublic()

		record, buildErr := writer.buildRecord(model.ScopePrefixPublic, input, collection.Records, "")
		if buildErr != nil {
			return model.WidgetRecord{}, buildErr
		}

		updatedRecords := replaceOrAppend(collection.Records, record)
		saveErr := writer.codec.SavePublic(updatedRecords, collection.Version)
		if errors.Is(saveErr, storage.ErrVersionConflict) {
			continue
		}
		if saveErr != nil {
			return model.WidgetRecord{}, saveErr
		}

		if record.Slot == model.WidgetSlotMin {
			if mirrorErr := writer.legacy.MirrorPublicRecord(record); mirrorErr != nil {
				return model.WidgetRecord{}, mirrorErr
			}
		}

		return record, nil
	}

	return model.WidgetRecord{}, ErrConcurrentUpdate
}

// SetGroupWidget creates or updates a group widget record. The group id must
// reference a known directory group; slot assignment is scoped per group.
func (writer *Writer) SetGroupWidget(input model.WidgetRecordInput) (model.WidgetRecord, error) {
	if validationErr := validateRecordInput(input); validationErr != nil {
		return model.WidgetRecord{}, validationErr
	}

	input.GroupID = strings.TrimSpace(input.GroupID)
	if input.GroupID == "" {
		return model.WidgetRecord{}, ErrMissingGroupID
	}

	groupExists, lookupErr := writer.groups.GroupExists(input.GroupID)
	if lookupErr != nil {
		return model.WidgetRecord{}, fmt.Errorf("%s: %w", errorMessageGroupLookup, lookupErr)
	}
	if !groupExists {
		return model.WidgetRecord{}, fmt.Errorf("%w: %s", ErrUnknownGroup, input.GroupID)
	}

	input.ID = ensureRecordID(input.ID, model.ScopePrefixGroup)

	for attempt := 0; attempt < maxCollectionWriteAttempts; attempt++ {
		collection := writer.codec.LoadGroup()

		record, buildErr := writer.buildRecord(model.ScopePrefixGroup, input, collection.Records, input.GroupID)
		if buildErr != nil {
			return model.WidgetRecord{}, buildErr
		}

		updatedRecords := replaceOrAppend(collection.Records, record)
		saveErr := writer.codec.SaveGroup(updatedRecords, collection.Version)
		if errors.Is(saveErr, storage.ErrVersionConflict) {
			continue
		}
		if saveErr != nil {
			return model.WidgetRecord{}, saveErr
		}

		return record, nil
	}

	return model.WidgetRecord{}, ErrConcurrentUpdate
}

// DeletePublicWidget removes a public record by identifier. Legacy default
// identifiers clear the flat public keys instead; removing the record that
// occupied slot 1 also clears the mirrored legacy keys.
func (writer *Writer) DeletePublicWidget(rawRecordID string) error {
	recordID := model.ParseRecordID(rawRecordID)

	if recordID.Kind == model.RecordIDLegacyDefault {
		if recordID.Scope != model.ScopePrefixPublic {
			return fmt.Errorf("%w: %s", ErrWidgetNotFound, recordID.Value)
		}
		return writer.legacy.ClearPublicKeys()
	}

	for attempt := 0; attempt < maxCollectionWriteAttempts; attempt++ {
		collection := writer.codec.LoadPublic()

		removed, remainingRecords, found := removeRecord(collection.Records, recordID.Value)
		if !found {
			return fmt.Errorf("%w: %s", ErrWidgetNotFound, recordID.Value)
		}

		saveErr := writer.codec.SavePublic(remainingRecords, collection.Version)
		if errors.Is(saveErr, storage.ErrVersionConflict) {
			continue
		}
		if saveErr != nil {
			return saveErr
		}

		if removed.Slot == model.WidgetSlotMin {
			return writer.legacy.ClearPublicKeys()
		}

		return nil
	}

	return ErrConcurrentUpdate
}

// DeleteGroupWidget removes a group record by identifier. Legacy default
// identifiers clear the flat keys of their group instead.
func (writer *Writer) DeleteGroupWidget(rawRecordID string) error {
	recordID := model.ParseRecordID(rawRecordID)

	if recordID.Kind == model.RecordIDLegacyDefault {
		return writer.legacy.ClearGroupKeys(recordID.Scope)
	}

	for attempt := 0; attempt < maxCollectionWriteAttempts; attempt++ {
		collection := writer.codec.LoadGroup()

		_, remainingRecords, found := removeRecord(collection.Records, recordID.Value)
		if !found {
			return fmt.Errorf("%w: %s", ErrWidgetNotFound, recordID.Value)
		}

		saveErr := writer.codec.SaveGroup(remainingRecords, collection.Version)
		if errors.Is(saveErr, storage.ErrVersionConflict) {
			continue
		}

		return saveErr
	}

	return ErrConcurrentUpdate
}

func (writer *Writer) buildRecord(scopePrefix string, input model.WidgetRecordInput, records []model.WidgetRecord, slotScopeGroupID string) (model.WidgetRecord, error) {
	existingIndex := recordIndexByID(records, input.ID)

	resolvedSlot := input.Slot
	if resolvedSlot == model.WidgetSlotUnassigned {
		if existingIndex >= 0 {
			resolvedSlot = records[existingIndex].Slot
		} else {
			resolvedSlot = lowestFreeSlot(slotsInUse(records, slotScopeGroupID))
			if resolvedSlot == model.WidgetSlotUnassigned {
				return model.WidgetRecord{}, ErrSlotsExhausted
			}
		}
	}

	input.Slot = resolvedSlot
	return model.NewWidgetRecord(scopePrefix, input)
}

func validateRecordInput(input model.WidgetRecordInput) error {
	if validationErr := model.ValidateWidgetURL(input.URL); validationErr != nil {
		return validationErr
	}
	if input.Slot != model.WidgetSlotUnassigned {
		return model.ValidateWidgetSlot(input.Slot)
	}
	return nil
}

func ensureRecordID(rawRecordID string, scopePrefix string) string {
	trimmedRecordID := strings.TrimSpace(rawRecordID)
	if trimmedRecordID == "" {
		return model.NewWidgetRecordID(scopePrefix)
	}
	return trimmedRecordID
}

func recordIndexByID(records []model.WidgetRecord, recordID string) int {
	for index, record := range records {
		if record.ID == recordID {
			return index
		}
	}
	return -1
}

func slotsInUse(records []model.WidgetRecord, slotScopeGroupID string) map[int]bool {
	usedSlots := map[int]bool{}
	for _, record := range records {
		if record.GroupID != slotScopeGroupID {
			continue
		}
		if record.Slot != model.WidgetSlotUnassigned {
			usedSlots[record.Slot] = true
		}
	}
	return usedSlots
}

func replaceOrAppend(records []model.WidgetRecord, record model.WidgetRecord) []model.WidgetRecord {
	updatedRecords := make([]model.WidgetRecord, len(records))
	copy(updatedRecords, records)

	if existingIndex := recordIndexByID(updatedRecords, record.ID); existingIndex >= 0 {
		updatedRecords[existingIndex] = record
		return updatedRecords
	}

	return append(updatedRecords, record)
}

func removeRecord(records []model.WidgetRecord, recordID string) (model.WidgetRecord, []model.WidgetRecord, bool) {
	targetIndex := recordIndexByID(records, recordID)
	if targetIndex < 0 {
		return model.WidgetRecord{}, records, false
	}

	removed := records[targetIndex]
	remainingRecords := make([]model.WidgetRecord, 0, len(records)-1)
	remainingRecords = append(remainingRecords, records[:targetIndex]...)
	remainingRecords = append(remainingRecords, records[targetIndex+1:]...)

	return removed, remainingRecords, true
}
