// Package npm provides a download-count collector for api.npmjs.org.
package npm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/adoptioncheck/radar/internal/core"
)

const (
	DefaultURL = "https://api.npmjs.org"
	source     = core.SourceNPM
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

type pointResponse struct {
	Downloads int64  `json:"downloads"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Package   string `json:"package"`
}

// Collect fetches monthly (primary) and weekly (secondary) download
// counts. A package with zero downloads is a valid observation, not an
// absence.
func (c *Collector) Collect(ctx context.Context, spec core.TechnologySpec) (*core.SourceMetric, error) {
	pkg := spec.NPMPackage
	if pkg == "" {
		return nil, fmt.Errorf("technology %s: no npm package configured", spec.Name)
	}

	month, err := c.point(ctx, "last-month", pkg)
	if err != nil {
		return nil, err
	}

	metric := &core.SourceMetric{
		Source:         source,
		Technology:     spec.Name,
		CollectedAt:    time.Now().UTC(),
		PrimaryCount:   month.Downloads,
		FetchSucceeded: true,
		Metadata: map[string]any{
			"period_start":  month.Start,
			"period_end":    month.End,
			"daily_average": month.Downloads / 30,
		},
	}

	// Weekly counts are an enrichment; a miss does not fail the metric.
	if week, err := c.point(ctx, "last-week", pkg); err == nil {
		metric.SecondaryCount = week.Downloads
	}

	return metric, nil
}

func (c *Collector) point(ctx context.Context, period, pkg string) (*pointResponse, error) {
	escapedName := url.PathEscape(pkg)
	u := fmt.Sprintf("%s/downloads/point/%s/%s", c.baseURL, period, escapedName)

	var resp pointResponse
	if err := c.client.GetJSON(ctx, u, &resp); err != nil {
		if httpErr, ok := err.(*core.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Source: source, Name: pkg}
		}
		return nil, err
	}
	return &resp, nil
}

type URLs struct {
	baseURL string
}

func (u *URLs) Page(identifier string) string {
	return fmt.Sprintf("https://www.npmjs.com/package/%s", identifier)
}

func (u *URLs) API(identifier string) string {
	return fmt.Sprintf("%s/downloads/point/last-month/%s", u.baseURL, url.PathEscape(identifier))
}

func (u *URLs) PURL(identifier string) string {
	if strings.HasPrefix(identifier, "@") && strings.Contains(identifier, "/") {
		parts := strings.SplitN(identifier, "/", 2)
		return fmt.Sprintf("pkg:npm/%s/%s", parts[0], parts[1])
	}
	return fmt.Sprintf("pkg:npm/%s", identifier)
}
