package iconcdn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public icon CDN the service probes against.
	DefaultBaseURL = "https://cdn.simpleicons.org"

	defaultProbeTimeout = 5 * time.Second

	errorMessageMissingIconName = "iconcdn: missing icon name"
	errorMessageProbeRequest    = "iconcdn: probe request"
	errorMessageIconNotFound    = "iconcdn: icon not found"
)

var (
	// ErrMissingIconName indicates an empty icon name.
	ErrMissingIconName = errors.New(errorMessageMissingIconName)
	// ErrIconNotFound indicates the CDN does not serve the requested icon.
	ErrIconNotFound = errors.New(errorMessageIconNotFound)
)

// Prober checks whether the icon CDN serves a named icon.
type Prober interface {
	Probe(ctx context.Context, iconName string, color string) (bool, error)
}

// HTTPProber probes the icon CDN with a single short-timeout GET per check.
// Network failures read as "icon not found"; probes are never retried.
type HTTPProber struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPProber builds a prober against baseURL, defaulting the HTTP client
// to one with the standard probe timeout.
func NewHTTPProber(httpClient *http.Client, baseURL string) *HTTPProber {
	prober := &HTTPProber{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
	if prober.baseURL == "" {
		prober.baseURL = DefaultBaseURL
	}
	if httpClient != nil {
		prober.httpClient = httpClient
	} else {
		prober.httpClient = &http.Client{Timeout: defaultProbeTimeout}
	}
	return prober
}

// Probe reports whether the CDN serves iconName, optionally in the given color.
func (prober *HTTPProber) Probe(ctx context.Context, iconName string, color string) (bool, error) {
	normalizedIconName := strings.ToLower(strings.TrimSpace(iconName))
	if normalizedIconName == "" {
		return false, ErrMissingIconName
	}

	probeURL := prober.baseURL + "/" + normalizedIconName
	if trimmedColor := strings.TrimSpace(color); trimmedColor != "" {
		probeURL += "/" + trimmedColor
	}

	request, requestErr := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if requestErr != nil {
		return false, fmt.Errorf("%s: %w", errorMessageProbeRequest, requestErr)
	}

	response, responseErr := prober.httpClient.Do(request)
	if responseErr != nil {
		return false, fmt.Errorf("%s: %w", errorMessageProbeRequest, responseErr)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return false, fmt.Errorf("%w: %s", ErrIconNotFound, normalizedIconName)
	}

	return true, nil
}
