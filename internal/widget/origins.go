package widget

import (
	"net/url"
	"sort"
	"strings"
)

const (
	originSchemeHTTP  = "http"
	originSchemeHTTPS = "https"
)

// OriginAggregator collects the network origins a rendering context is
// permitted to frame. Malformed or non-http(s) URLs are dropped silently;
// the output is deduplicated by origin, not by full URL.
type OriginAggregator struct {
	codec       *Codec
	legacy      *LegacyAdapter
	configStore ConfigStore
}

// NewOriginAggregator creates an OriginAggregator over the widget storage.
func NewOriginAggregator(codec *Codec, legacy *LegacyAdapter, configStore ConfigStore) *OriginAggregator {
	return &OriginAggregator{codec: codec, legacy: legacy, configStore: configStore}
}

// AdminSettingsOrigins returns the origins framed on the admin settings page:
// every public and group widget URL, disabled records included.
func (aggregator *OriginAggregator) AdminSettingsOrigins() []string {
	rawURLs := append(
		aggregator.publicWidgetURLs(true),
		aggregator.groupWidgetURLs(true)...,
	)
	return NormalizeURLsToOrigins(rawURLs)
}

// PersonalSettingsOrigins returns the origins framed on one user's personal
// settings page: that user's personal widget URL, when configured.
func (aggregator *OriginAggregator) PersonalSettingsOrigins(userID string) []string {
	return NormalizeURLsToOrigins(aggregator.personalWidgetURLs(userID))
}

// DashboardOrigins returns the origins framed on a user's dashboard: enabled
// public widgets, enabled widgets of the user's groups, and the personal URL.
func (aggregator *OriginAggregator) DashboardOrigins(userID string, userGroups []string) []string {
	rawURLs := aggregator.publicWidgetURLs(false)
	rawURLs = append(rawURLs, aggregator.groupWidgetURLsForUser(userGroups)...)
	rawURLs = append(rawURLs, aggregator.personalWidgetURLs(userID)...)
	return NormalizeURLsToOrigins(rawURLs)
}

func (aggregator *OriginAggregator) publicWidgetURLs(includeDisabled bool) []string {
	rawURLs := make([]string, 0)
	for _, record := range aggregator.codec.LoadPublic().Records {
		if !record.Configured() {
			continue
		}
		if includeDisabled || record.Enabled {
			rawURLs = append(rawURLs, record.URL)
		}
	}

	if legacyURL := aggregator.legacy.PublicURL(); legacyURL != "" {
		rawURLs = append(rawURLs, legacyURL)
	}

	return rawURLs
}

func (aggregator *OriginAggregator) groupWidgetURLs(includeDisabled bool) []string {
	rawURLs := make([]string, 0)
	for _, record := range aggregator.codec.LoadGroup().Records {
		if !record.Configured() {
			continue
		}
		if includeDisabled || record.Enabled {
			rawURLs = append(rawURLs, record.URL)
		}
	}
	return rawURLs
}

func (aggregator *OriginAggregator) groupWidgetURLsForUser(userGroups []string) []string {
	memberGroups := map[string]bool{}
	for _, groupID := range userGroups {
		memberGroups[groupID] = true
	}

	rawURLs := make([]string, 0)
	for _, record := range aggregator.codec.LoadGroup().Records {
		if !memberGroups[record.GroupID] {
			continue
		}
		if record.Visible() {
			rawURLs = append(rawURLs, record.URL)
		}
	}
	return rawURLs
}

func (aggregator *OriginAggregator) personalWidgetURLs(userID string) []string {
	personalURL := strings.TrimSpace(aggregator.configStore.GetUserValue(userID, KeyPersonalIframeURL, ""))
	if personalURL == "" {
		return nil
	}
	return []string{personalURL}
}

// NormalizeURLsToOrigins reduces raw URL strings to a sorted, deduplicated
// list of scheme://host[:port] origins. Unparsable entries are skipped.
func NormalizeURLsToOrigins(rawURLs []string) []string {
	originSet := map[string]bool{}
	for _, rawURL := range rawURLs {
		origin, valid := NormalizeURLToOrigin(rawURL)
		if valid {
			originSet[origin] = true
		}
	}

	origins := make([]string, 0, len(originSet))
	for origin := range originSet {
		origins = append(origins, origin)
	}
	sort.Strings(origins)
	return origins
}

// NormalizeURLToOrigin reduces one URL to its scheme://host[:port] origin with
// a lowercase host. Empty, unparsable, and non-http(s) URLs report false.
func NormalizeURLToOrigin(rawURL string) (string, bool) {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return "", false
	}

	parsedURL, parseErr := url.Parse(trimmedURL)
	if parseErr != nil {
		return "", false
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != originSchemeHTTP && scheme != originSchemeHTTPS {
		return "", false
	}

	host := strings.ToLower(parsedURL.Hostname())
	if host == "" {
		return "", false
	}

	origin := scheme + "://" + host
	if port := parsedURL.Port(); port != "" {
		origin += ":" + port
	}

	return origin, true
}
