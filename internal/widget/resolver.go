package widget

import (
	"sort"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/model"
)

// unslottedSortSentinel sorts records without a slot assignment behind every
// assigned record.
const unslottedSortSentinel = 999

// Resolver answers which widget record, if any, occupies a dashboard slot for
// a given scope. Slot 1 keeps the legacy flat-key fallback for installations
// that never migrated to collection storage.
type Resolver struct {
	codec  *Codec
	legacy *LegacyAdapter
}

// NewResolver creates a Resolver over the given codec and legacy adapter.
func NewResolver(codec *Codec, legacy *LegacyAdapter) *Resolver {
	return &Resolver{codec: codec, legacy: legacy}
}

// ResolvePublic returns the public record occupying slotNumber. When the
// collection holds nothing for slot 1, a record synthesized from the legacy
// flat keys is returned instead, provided a legacy URL exists.
func (resolver *Resolver) ResolvePublic(slotNumber int) (model.WidgetRecord, bool) {
	for _, record := range resolver.codec.LoadPublic().Records {
		if record.Slot == slotNumber {
			return record, true
		}
	}

	if slotNumber == model.WidgetSlotMin {
		return resolver.legacy.PublicRecord()
	}

	return model.WidgetRecord{}, false
}

// ResolveGroup returns the group record occupying slotNumber for a user with
// the given group memberships. Candidate records are the visible ones scoped
// to a member group, ordered by slot then group id; position slotNumber-1 in
// that ordering wins. Slot 1 falls back to the first member group, in
// userGroups order, that carries a legacy flat-key URL.
func (resolver *Resolver) ResolveGroup(userGroups []string, slotNumber int) (model.WidgetRecord, bool) {
	memberGroups := map[string]bool{}
	for _, groupID := range userGroups {
		memberGroups[groupID] = true
	}

	candidates := make([]model.WidgetRecord, 0)
	for _, record := range resolver.codec.LoadGroup().Records {
		if !memberGroups[record.GroupID] {
			continue
		}
		if !record.Visible() {
			continue
		}
		candidates = append(candidates, record)
	}

	sort.SliceStable(candidates, func(left int, right int) bool {
		leftSlot := sortableSlot(candidates[left].Slot)
		rightSlot := sortableSlot(candidates[right].Slot)
		if leftSlot != rightSlot {
			return leftSlot < rightSlot
		}
		return candidates[left].GroupID < candidates[right].GroupID
	})

	candidateIndex := slotNumber - 1
	if candidateIndex >= 0 && candidateIndex < len(candidates) {
		return candidates[candidateIndex], true
	}

	if slotNumber == model.WidgetSlotMin {
		for _, groupID := range userGroups {
			if record, found := resolver.legacy.GroupRecord(groupID); found {
				return record, true
			}
		}
	}

	return model.WidgetRecord{}, false
}

// PublicSlotEnabled reports whether the public slot should be advertised:
// resolution yields a record with a non-empty URL and an enabled flag.
func (resolver *Resolver) PublicSlotEnabled(slotNumber int) bool {
	record, found := resolver.ResolvePublic(slotNumber)
	return found && record.Visible()
}

// GroupSlotEnabled reports whether the group slot should be advertised for a
// user with the given memberships.
func (resolver *Resolver) GroupSlotEnabled(userGroups []string, slotNumber int) bool {
	record, found := resolver.ResolveGroup(userGroups, slotNumber)
	return found && record.Visible()
}

func sortableSlot(slot int) int {
	if slot == model.WidgetSlotUnassigned {
		return unslottedSortSentinel
	}
	return slot
}
