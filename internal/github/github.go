// Package github provides a metrics collector for the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adoptioncheck/radar/internal/core"
)

const (
	DefaultURL = "https://api.github.com"
	source     = core.SourceGitHub
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

type repoResponse struct {
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Description     string   `json:"description"`
	Stars           int64    `json:"stargazers_count"`
	Forks           int64    `json:"forks_count"`
	OpenIssues      int64    `json:"open_issues_count"`
	Subscribers     int64    `json:"subscribers_count"`
	Language        string   `json:"language"`
	Topics          []string `json:"topics"`
	PushedAt        string   `json:"pushed_at"`
	CreatedAt       string   `json:"created_at"`
}

type weekActivity struct {
	Total int64 `json:"total"`
}

// Collect fetches repository metrics for the technology. Stars are the
// primary count, forks the secondary. Commit activity is attached as
// metadata on a best-effort basis: its endpoint returns 202 while
// GitHub computes stats, and that is not worth failing the metric over.
func (c *Collector) Collect(ctx context.Context, spec core.TechnologySpec) (*core.SourceMetric, error) {
	repo := spec.GitHubRepo
	if repo == "" {
		return nil, fmt.Errorf("technology %s: no github repository configured", spec.Name)
	}

	url := fmt.Sprintf("%s/repos/%s", c.baseURL, repo)

	var resp repoResponse
	if err := c.client.GetJSON(ctx, url, &resp); err != nil {
		if httpErr, ok := err.(*core.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Source: source, Name: repo}
		}
		return nil, err
	}

	metric := &core.SourceMetric{
		Source:         source,
		Technology:     spec.Name,
		CollectedAt:    time.Now().UTC(),
		PrimaryCount:   resp.Stars,
		SecondaryCount: resp.Forks,
		FetchSucceeded: true,
		Metadata: map[string]any{
			"watchers":    resp.Subscribers,
			"open_issues": resp.OpenIssues,
			"language":    resp.Language,
			"pushed_at":   resp.PushedAt,
		},
	}

	if commits, err := c.commitsLastYear(ctx, repo); err == nil {
		metric.Metadata["commits_last_year"] = commits
	}

	return metric, nil
}

// commitsLastYear sums the weekly commit activity endpoint.
func (c *Collector) commitsLastYear(ctx context.Context, repo string) (int64, error) {
	url := fmt.Sprintf("%s/repos/%s/stats/commit_activity", c.baseURL, repo)

	var weeks []weekActivity
	if err := c.client.GetJSON(ctx, url, &weeks); err != nil {
		return 0, err
	}

	var total int64
	for _, w := range weeks {
		total += w.Total
	}
	return total, nil
}

type URLs struct {
	baseURL string
}

func (u *URLs) Page(identifier string) string {
	return fmt.Sprintf("https://github.com/%s", identifier)
}

func (u *URLs) API(identifier string) string {
	return fmt.Sprintf("%s/repos/%s", u.baseURL, identifier)
}

func (u *URLs) PURL(identifier string) string {
	return fmt.Sprintf("pkg:github/%s", identifier)
}
