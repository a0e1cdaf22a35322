package widget

import "strings"

const (
	// IconCDNDomain is the image host allow-listed on every policy so widget
	// icons can be fetched from the icon CDN.
	IconCDNDomain = "cdn.simpleicons.org"

	// HeaderContentSecurityPolicy is the response header the policy is emitted on.
	HeaderContentSecurityPolicy = "Content-Security-Policy"

	cspDirectiveFrameSrc = "frame-src"
	cspDirectiveImgSrc   = "img-src"
	cspSourceSelf        = "'self'"
	cspDirectiveJoiner   = "; "
)

// BuildPolicyHeaderValue assembles a Content-Security-Policy header value that
// frames the given origins and allows images from the icon CDN. With no frame
// origins the base policy is returned.
func BuildPolicyHeaderValue(frameOrigins []string) string {
	frameSources := append([]string{cspDirectiveFrameSrc, cspSourceSelf}, frameOrigins...)
	imageSources := []string{cspDirectiveImgSrc, cspSourceSelf, IconCDNDomain}

	return strings.Join(frameSources, " ") + cspDirectiveJoiner + strings.Join(imageSources, " ")
}
