// Package fetch - platform.go provides site-builder platform detection and
// platform-specific selectors. Knowing the platform lets extraction target
// the right content containers and skip the right chrome.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known website platform or site builder.
type Platform string

const (
	// PlatformShopify is a Shopify storefront
	PlatformShopify Platform = "shopify"
	// PlatformWordPress is a WordPress site (including WooCommerce)
	PlatformWordPress Platform = "wordpress"
	// PlatformSquarespace is a Squarespace site
	PlatformSquarespace Platform = "squarespace"
	// PlatformWix is a Wix site
	PlatformWix Platform = "wix"
	// PlatformWebflow is a Webflow site
	PlatformWebflow Platform = "webflow"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the website platform from the URL and the
// fetched HTML. Host patterns catch builder subdomains; HTML markers
// (asset CDNs, meta generator tags) catch custom domains.
func DetectPlatform(urlStr, html string) Platform {
	host := ""
	if parsed, err := url.Parse(urlStr); err == nil {
		host = strings.ToLower(parsed.Host)
	}
	lower := strings.ToLower(html)

	if strings.Contains(host, "myshopify.com") ||
		strings.Contains(lower, "cdn.shopify.com") ||
		strings.Contains(lower, "shopify.theme") {
		return PlatformShopify
	}

	if strings.Contains(lower, "/wp-content/") ||
		strings.Contains(lower, "/wp-includes/") ||
		hasGeneratorTag(lower, "wordpress") {
		return PlatformWordPress
	}

	if strings.Contains(host, "squarespace.com") ||
		strings.Contains(lower, "static1.squarespace.com") ||
		hasGeneratorTag(lower, "squarespace") {
		return PlatformSquarespace
	}

	if strings.Contains(host, "wixsite.com") ||
		strings.Contains(lower, "wixstatic.com") ||
		strings.Contains(lower, "parastorage.com") {
		return PlatformWix
	}

	if strings.Contains(lower, "website-files.com") ||
		hasGeneratorTag(lower, "webflow") {
		return PlatformWebflow
	}

	return PlatformUnknown
}

// hasGeneratorTag checks for a <meta name="generator"> whose content
// starts with the given product name. Generator values usually carry a
// version suffix ("WordPress 6.4"), so only the prefix is matched.
func hasGeneratorTag(lowerHTML, product string) bool {
	return strings.Contains(lowerHTML, `name="generator" content="`+product)
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformShopify:
		return []string{
			".product__description", // Primary product page selector
			".product-single__description",
			".rte", // Shopify rich-text container
			"#MainContent",
			"main",
		}
	case PlatformWordPress:
		return []string{
			".entry-content",
			".post-content",
			".page-content",
			"article",
			"main",
			"#content",
		}
	case PlatformSquarespace:
		return []string{
			".sqs-block-content",
			".content-wrapper",
			"#page",
			"main",
		}
	case PlatformWix:
		return []string{
			"#PAGES_CONTAINER",
			"#SITE_CONTAINER",
			"main",
		}
	case PlatformWebflow:
		return []string{
			".main-wrapper",
			".page-wrapper",
			"main",
		}
	default:
		return DefaultContentSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	// Common noise selectors for all platforms
	common := []string{
		// Signup and contact forms
		"form",
		".newsletter",
		".newsletter-signup",
		".subscribe-form",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",

		// Social and share buttons
		".social-share",
		".share-buttons",
		".social-links",

		// Navigation aids
		".breadcrumb",
		".breadcrumbs",
		".pagination",
	}

	switch platform {
	case PlatformShopify:
		return append(common,
			"#shopify-section-header",
			"#shopify-section-footer",
			".announcement-bar",
			".cart-drawer",
			".shopify-payment-button",
		)
	case PlatformWordPress:
		return append(common,
			".widget-area",
			".comments-area",
			"#comments",
			".related-posts",
			"#secondary",
		)
	case PlatformSquarespace:
		return append(common,
			".sqs-announcement-bar",
			".sqs-cookie-banner-v2",
			"#footer-sections",
		)
	case PlatformWix:
		return append(common,
			"#SITE_HEADER",
			"#SITE_FOOTER",
		)
	case PlatformWebflow:
		return append(common,
			".w-nav",
			".w-webflow-badge",
		)
	default:
		return common
	}
}
