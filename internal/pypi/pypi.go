// Package pypi provides a download-count collector for pypistats.org.
package pypi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adoptioncheck/radar/internal/core"
)

const (
	DefaultURL = "https://pypistats.org"
	source     = core.SourcePyPI
)

func init() {
	core.Register(source, DefaultURL, func(baseURL string, client *core.Client) core.Collector {
		return New(baseURL, client)
	})
}

type Collector struct {
	baseURL string
	client  *core.Client
	urls    *URLs
}

func New(baseURL string, client *core.Client) *Collector {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Collector{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
	c.urls = &URLs{baseURL: c.baseURL}
	return c
}

func (c *Collector) Source() core.Source {
	return source
}

func (c *Collector) URLs() core.URLBuilder {
	return c.urls
}

type recentResponse struct {
	Data struct {
		LastDay   int64 `json:"last_day"`
		LastWeek  int64 `json:"last_week"`
		LastMonth int64 `json:"last_month"`
	} `json:"data"`
	Package string `json:"package"`
	Type    string `json:"type"`
}

// Collect fetches recent download counts: last month as the primary
// count, last week as the secondary.
func (c *Collector) Collect(ctx context.Context, spec core.TechnologySpec) (*core.SourceMetric, error) {
	pkg := spec.PyPIPackage
	if pkg == "" {
		return nil, fmt.Errorf("technology %s: no pypi package configured", spec.Name)
	}

	u := fmt.Sprintf("%s/api/packages/%s/recent", c.baseURL, normalizeName(pkg))

	var resp recentResponse
	if err := c.client.GetJSON(ctx, u, &resp); err != nil {
		if httpErr, ok := err.(*core.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Source: source, Name: pkg}
		}
		return nil, err
	}

	return &core.SourceMetric{
		Source:         source,
		Technology:     spec.Name,
		CollectedAt:    time.Now().UTC(),
		PrimaryCount:   resp.Data.LastMonth,
		SecondaryCount: resp.Data.LastWeek,
		FetchSucceeded: true,
		Metadata: map[string]any{
			"downloads_last_day": resp.Data.LastDay,
		},
	}, nil
}

// normalizeName applies PEP 503 normalization: lowercase, runs of
// ".", "-", "_" collapse to a single hyphen.
func normalizeName(name string) string {
	name = strings.ToLower(name)
	var b strings.Builder
	prevSep := false
	for _, r := range name {
		if r == '.' || r == '-' || r == '_' {
			if !prevSep {
				b.WriteByte('-')
			}
			prevSep = true
			continue
		}
		prevSep = false
		b.WriteRune(r)
	}
	return b.String()
}

type URLs struct {
	baseURL string
}

func (u *URLs) Page(identifier string) string {
	return fmt.Sprintf("https://pypi.org/project/%s/", identifier)
}

func (u *URLs) API(identifier string) string {
	return fmt.Sprintf("%s/api/packages/%s/recent", u.baseURL, normalizeName(identifier))
}

func (u *URLs) PURL(identifier string) string {
	return fmt.Sprintf("pkg:pypi/%s", normalizeName(identifier))
}
