package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// WidgetSlotMin is the lowest dashboard slot a widget can occupy.
	WidgetSlotMin = 1
	// WidgetSlotMax is the highest dashboard slot a widget can occupy.
	WidgetSlotMax = 5
	// WidgetSlotUnassigned marks a record that has not been placed in a slot yet.
	WidgetSlotUnassigned = 0

	// DefaultIframeSandbox is applied when a record does not carry its own sandbox tokens.
	DefaultIframeSandbox = "allow-same-origin allow-scripts allow-popups allow-forms"

	// ScopePrefixPublic prefixes generated identifiers of public widget records.
	ScopePrefixPublic = "public"
	// ScopePrefixGroup prefixes generated identifiers of group widget records.
	ScopePrefixGroup = "group"

	legacyRecordIDSuffix = "_default"

	urlSchemeHTTP  = "http://"
	urlSchemeHTTPS = "https://"

	widgetTitleMaxLength = 200
	widgetURLMaxLength   = 2000

	errorMessageInvalidWidgetURL   = "invalid_widget_url"
	errorMessageInvalidWidgetSlot  = "invalid_widget_slot"
	errorMessageInvalidWidgetTitle = "invalid_widget_title"
)

var (
	// ErrInvalidWidgetURL indicates a widget URL that is not an absolute http(s) URL.
	ErrInvalidWidgetURL = errors.New(errorMessageInvalidWidgetURL)
	// ErrInvalidWidgetSlot indicates a slot number outside the supported range.
	ErrInvalidWidgetSlot = errors.New(errorMessageInvalidWidgetSlot)
	// ErrInvalidWidgetTitle indicates an oversized widget title.
	ErrInvalidWidgetTitle = errors.New(errorMessageInvalidWidgetTitle)
)

// WidgetRecord is one configured iframe widget instance within a scope.
type WidgetRecord struct {
	ID            string `json:"id"`
	Slot          int    `json:"slot,omitempty"`
	GroupID       string `json:"groupId,omitempty"`
	Title         string `json:"title"`
	Icon          string `json:"icon"`
	IconColor     string `json:"iconColor"`
	URL           string `json:"url"`
	Height        string `json:"height"`
	ExtraWide     bool   `json:"extraWide"`
	Enabled       bool   `json:"enabled"`
	IframeSandbox string `json:"iframeSandbox"`
	IframeAllow   string `json:"iframeAllow"`
	IsDefault     bool   `json:"isDefault,omitempty"`
}

// WidgetRecordInput holds raw values used to construct or update a WidgetRecord.
type WidgetRecordInput struct {
	ID            string
	Slot          int
	GroupID       string
	Title         string
	Icon          string
	IconColor     string
	URL           string
	Height        string
	ExtraWide     bool
	Enabled       *bool
	IframeSandbox string
	IframeAllow   string
}

// NewWidgetRecord constructs a WidgetRecord with validated, defaulted fields.
// An empty identifier is replaced with a freshly generated one for the scope.
func NewWidgetRecord(scopePrefix string, input WidgetRecordInput) (WidgetRecord, error) {
	trimmedURL := strings.TrimSpace(input.URL)
	if validationErr := ValidateWidgetURL(trimmedURL); validationErr != nil {
		return WidgetRecord{}, validationErr
	}

	if input.Slot != WidgetSlotUnassigned {
		if validationErr := ValidateWidgetSlot(input.Slot); validationErr != nil {
			return WidgetRecord{}, validationErr
		}
	}

	trimmedTitle := strings.TrimSpace(input.Title)
	if len(trimmedTitle) > widgetTitleMaxLength {
		return WidgetRecord{}, fmt.Errorf("%w: title too long", ErrInvalidWidgetTitle)
	}

	recordID := strings.TrimSpace(input.ID)
	if recordID == "" {
		recordID = NewWidgetRecordID(scopePrefix)
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	sandbox := strings.TrimSpace(input.IframeSandbox)
	if sandbox == "" {
		sandbox = DefaultIframeSandbox
	}

	return WidgetRecord{
		ID:            recordID,
		Slot:          input.Slot,
		GroupID:       strings.TrimSpace(input.GroupID),
		Title:         trimmedTitle,
		Icon:          strings.TrimSpace(input.Icon),
		IconColor:     strings.TrimSpace(input.IconColor),
		URL:           trimmedURL,
		Height:        strings.TrimSpace(input.Height),
		ExtraWide:     input.ExtraWide,
		Enabled:       enabled,
		IframeSandbox: sandbox,
		IframeAllow:   strings.TrimSpace(input.IframeAllow),
	}, nil
}

// NewWidgetRecordID generates a scope-prefixed unique widget identifier.
func NewWidgetRecordID(scopePrefix string) string {
	return scopePrefix + "-" + uuid.NewString()
}

// ValidateWidgetURL accepts an empty URL (unconfigured record) or an absolute
// http(s) URL. The scheme check is case-insensitive.
func ValidateWidgetURL(widgetURL string) error {
	trimmed := strings.TrimSpace(widgetURL)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) > widgetURLMaxLength {
		return fmt.Errorf("%w: too long", ErrInvalidWidgetURL)
	}
	lowered := strings.ToLower(trimmed)
	if strings.HasPrefix(lowered, urlSchemeHTTP) || strings.HasPrefix(lowered, urlSchemeHTTPS) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidWidgetURL, trimmed)
}

// ValidateWidgetSlot rejects slot numbers outside the supported 1..5 range.
func ValidateWidgetSlot(slot int) error {
	if slot < WidgetSlotMin || slot > WidgetSlotMax {
		return fmt.Errorf("%w: %d", ErrInvalidWidgetSlot, slot)
	}
	return nil
}

// Configured reports whether the record points at a page at all. Records with
// an empty URL are invisible regardless of their enabled flag.
func (record WidgetRecord) Configured() bool {
	return strings.TrimSpace(record.URL) != ""
}

// Visible reports whether the record should be rendered and advertised.
func (record WidgetRecord) Visible() bool {
	return record.Configured() && record.Enabled
}

// RecordIDKind distinguishes structured identifiers from legacy defaults.
type RecordIDKind int

const (
	// RecordIDStructured identifies a record created through the JSON collection storage.
	RecordIDStructured RecordIDKind = iota
	// RecordIDLegacyDefault identifies a record synthesized from legacy flat keys.
	RecordIDLegacyDefault
)

// RecordID is a widget identifier parsed once at the boundary. Legacy default
// identifiers carry the scope they were synthesized for.
type RecordID struct {
	Kind  RecordIDKind
	Value string
	Scope string
}

// ParseRecordID classifies a raw widget identifier. Identifiers ending in the
// legacy default suffix address the discrete flat keys of their scope; every
// other identifier addresses a record inside a JSON collection.
func ParseRecordID(raw string) RecordID {
	trimmed := strings.TrimSpace(raw)
	if strings.HasSuffix(trimmed, legacyRecordIDSuffix) && len(trimmed) > len(legacyRecordIDSuffix) {
		return RecordID{
			Kind:  RecordIDLegacyDefault,
			Value: trimmed,
			Scope: strings.TrimSuffix(trimmed, legacyRecordIDSuffix),
		}
	}
	return RecordID{Kind: RecordIDStructured, Value: trimmed}
}

// LegacyDefaultRecordID builds the identifier under which a legacy flat-key
// configuration for the given scope is addressed.
func LegacyDefaultRecordID(scope string) string {
	return scope + legacyRecordIDSuffix
}
