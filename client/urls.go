package client

// URLBuilder constructs URLs for a source given a configured
// identifier (owner/repo for github, package name for npm and pypi).
type URLBuilder interface {
	// Page is the human-facing page for the identifier.
	Page(identifier string) string
	// API is the metrics endpoint the collector queries.
	API(identifier string) string
	// PURL is the canonical package URL, or "" when the source has no
	// package coordinate (github repos).
	PURL(identifier string) string
}

// BaseURLs provides a default URLBuilder implementation.
type BaseURLs struct {
	PageFn func(identifier string) string
	APIFn  func(identifier string) string
	PURLFn func(identifier string) string
}

func (b *BaseURLs) Page(identifier string) string {
	if b.PageFn != nil {
		return b.PageFn(identifier)
	}
	return ""
}

func (b *BaseURLs) API(identifier string) string {
	if b.APIFn != nil {
		return b.APIFn(identifier)
	}
	return ""
}

func (b *BaseURLs) PURL(identifier string) string {
	if b.PURLFn != nil {
		return b.PURLFn(identifier)
	}
	return ""
}

// BuildURLs returns a map of all non-empty URLs for an identifier.
// Keys are "page", "api", and "purl".
func BuildURLs(urls URLBuilder, identifier string) map[string]string {
	result := make(map[string]string)
	if v := urls.Page(identifier); v != "" {
		result["page"] = v
	}
	if v := urls.API(identifier); v != "" {
		result["api"] = v
	}
	if v := urls.PURL(identifier); v != "" {
		result["purl"] = v
	}
	return result
}
