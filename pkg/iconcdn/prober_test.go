package iconcdn_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/widget_svc/pkg/iconcdn"
)

const (
	testKnownIconName     = "github"
	testUnknownIconName   = "definitely-not-an-icon"
	testIconColorValue    = "ff0000"
	testKnownIconPath     = "/" + testKnownIconName
	testColoredIconPath   = "/" + testKnownIconName + "/" + testIconColorValue
	testSVGResponseBody   = "<svg></svg>"
	testUppercaseIconName = "GitHub"
)

func newIconCDNServer(testingT *testing.T) *httptest.Server {
	testingT.Helper()

	return httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case testKnownIconPath, testColoredIconPath:
			_, _ = responseWriter.Write([]byte(testSVGResponseBody))
		default:
			responseWriter.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestProbeReportsExistingIcon(t *testing.T) {
	server := newIconCDNServer(t)
	defer server.Close()

	prober := iconcdn.NewHTTPProber(server.Client(), server.URL)

	exists, probeErr := prober.Probe(context.Background(), testKnownIconName, "")
	require.NoError(t, probeErr)
	require.True(t, exists)
}

func TestProbeReportsColoredVariant(t *testing.T) {
	server := newIconCDNServer(t)
	defer server.Close()

	prober := iconcdn.NewHTTPProber(server.Client(), server.URL)

	exists, probeErr := prober.Probe(context.Background(), testKnownIconName, testIconColorValue)
	require.NoError(t, probeErr)
	require.True(t, exists)
}

func TestProbeLowercasesIconName(t *testing.T) {
	server := newIconCDNServer(t)
	defer server.Close()

	prober := iconcdn.NewHTTPProber(server.Client(), server.URL)

	exists, probeErr := prober.Probe(context.Background(), testUppercaseIconName, "")
	require.NoError(t, probeErr)
	require.True(t, exists)
}

func TestProbeReportsMissingIcon(t *testing.T) {
	server := newIconCDNServer(t)
	defer server.Close()

	prober := iconcdn.NewHTTPProber(server.Client(), server.URL)

	exists, probeErr := prober.Probe(context.Background(), testUnknownIconName, "")
	require.ErrorIs(t, probeErr, iconcdn.ErrIconNotFound)
	require.False(t, exists)
}

func TestProbeRejectsEmptyIconName(t *testing.T) {
	prober := iconcdn.NewHTTPProber(nil, "")

	exists, probeErr := prober.Probe(context.Background(), "   ", "")
	require.ErrorIs(t, probeErr, iconcdn.ErrMissingIconName)
	require.False(t, exists)
}

func TestProbeSurfacesNetworkFailure(t *testing.T) {
	server := newIconCDNServer(t)
	serverURL := server.URL
	server.Close()

	prober := iconcdn.NewHTTPProber(nil, serverURL)

	exists, probeErr := prober.Probe(context.Background(), testKnownIconName, "")
	require.Error(t, probeErr)
	require.NotErrorIs(t, probeErr, iconcdn.ErrIconNotFound)
	require.False(t, exists)
}
