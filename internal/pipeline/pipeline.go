// Package pipeline orchestrates one collection-and-scoring run:
// bounded-parallel collection, normalization, confidence scoring,
// persistence, and insight ranking. Partial results are valid; only a
// missing catalog aborts a run.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/adoptioncheck/radar/client"
	"github.com/adoptioncheck/radar/internal/config"
	"github.com/adoptioncheck/radar/internal/core"
	"github.com/adoptioncheck/radar/internal/insight"
	"github.com/adoptioncheck/radar/internal/quality"
	"github.com/adoptioncheck/radar/internal/store"
	"github.com/adoptioncheck/radar/internal/velocity"
)

// historyWindow is how far back the velocity layer looks for snapshots.
const historyWindow = 90 * 24 * time.Hour

// Store is the persistence surface the pipeline needs; satisfied by
// *store.Store.
type Store interface {
	SaveRun(run store.Run, metrics []core.SourceMetric, scored []core.ScoredRecord) error
	PrimaryHistory(technology string, source core.Source, since time.Time) ([]velocity.Point, error)
	SecondaryHistory(technology string, source core.Source, since time.Time) ([]velocity.Point, error)
}

type Pipeline struct {
	cfg        config.Config
	collectors map[core.Source]core.Collector
	store      Store
	log        zerolog.Logger
}

// New assembles a pipeline. store may be nil (one-shot run without
// history); collectors maps each source to its collector.
func New(cfg config.Config, collectors map[core.Source]core.Collector, st Store, log zerolog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, collectors: collectors, store: st, log: log}
}

// BuildCollectors constructs one collector per registered source. The
// GitHub collector gets request pacing and token auth; the download
// APIs use the default client.
func BuildCollectors(cfg config.Config) (map[core.Source]core.Collector, error) {
	githubClient := client.NewClient(
		client.WithTimeout(time.Duration(cfg.RequestTimeout)),
		client.WithCircuitBreaker(),
		client.WithRateLimiter(client.NewIntervalLimiter(time.Duration(cfg.GitHubDelay))),
		client.WithAuthFunc(func(string) (string, string) {
			if cfg.GitHubToken == "" {
				return "", ""
			}
			return "Authorization", "Bearer " + cfg.GitHubToken
		}),
	)
	downloadClient := client.NewClient(
		client.WithTimeout(time.Duration(cfg.RequestTimeout)),
		client.WithCircuitBreaker(),
	)

	collectors := make(map[core.Source]core.Collector)
	for _, src := range core.SupportedSources() {
		c := downloadClient
		if src == core.SourceGitHub {
			c = githubClient
		}
		col, err := core.New(src, "", c)
		if err != nil {
			return nil, fmt.Errorf("building %s collector: %w", src, err)
		}
		collectors[src] = col
	}
	return collectors, nil
}

// ListResult groups one strategic list's outputs.
type ListResult struct {
	Name    string
	Scored  []core.ScoredRecord
	Leaders []insight.Leader
	Hype    []insight.HypeCandidate
	Trends  []insight.CategoryTrend
}

// Result is everything one run produced.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Metrics    []core.SourceMetric
	Records    []core.NormalizedRecord
	Scored     []core.ScoredRecord
	Momenta    map[string]velocity.TechMomentum
	Lists      []ListResult
	Comparison velocity.ListComparison
}

// Run executes one full pipeline pass.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if len(p.cfg.Technologies) == 0 {
		return nil, core.ErrNoCatalog
	}

	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	p.log.Info().Str("run_id", res.RunID).Int("technologies", len(p.cfg.Technologies)).Msg("run started")

	res.Metrics = p.collect(ctx)
	res.Records = quality.NormalizeAll(p.cfg.Technologies, res.Metrics)
	res.Scored = quality.ScoreAll(p.thresholds(), res.Records)
	res.FinishedAt = time.Now().UTC()

	if p.store != nil {
		run := store.Run{ID: res.RunID, StartedAt: res.StartedAt, FinishedAt: res.FinishedAt}
		if err := p.store.SaveRun(run, res.Metrics, res.Scored); err != nil {
			// The current run's records are still usable; only the
			// next run's velocity layer loses this snapshot.
			p.log.Error().Err(err).Msg("persisting run failed")
		}
	}

	res.Momenta = p.momentum()
	p.assembleLists(res)
	p.compare(res)

	p.log.Info().
		Str("run_id", res.RunID).
		Int("metrics", len(res.Metrics)).
		Int("scored", len(res.Scored)).
		Msg("run finished")
	return res, nil
}

func (p *Pipeline) thresholds() quality.Thresholds {
	th := quality.DefaultThresholds()
	if p.cfg.HypeThreshold > 1 {
		th.Hype = p.cfg.HypeThreshold
	}
	if p.cfg.MinorThreshold > 1 {
		th.Minor = p.cfg.MinorThreshold
	}
	return th
}

// collect fans out one task per configured technology/source pair,
// bounded by the concurrency limit. A source with no identifier is a
// normal absence; a failed fetch becomes a FetchSucceeded=false
// metric. Failures never abort the run.
func (p *Pipeline) collect(ctx context.Context) []core.SourceMetric {
	var mu sync.Mutex
	var metrics []core.SourceMetric

	g := new(errgroup.Group)
	limit := p.cfg.Concurrency
	if limit <= 0 {
		limit = config.DefaultConcurrency
	}
	g.SetLimit(limit)

	timeout := time.Duration(p.cfg.RequestTimeout)
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}

	for _, spec := range p.cfg.Technologies {
		for _, src := range core.Sources {
			if !spec.HasSource(src) {
				continue
			}
			col, ok := p.collectors[src]
			if !ok {
				continue
			}

			spec, src, col := spec, src, col
			g.Go(func() error {
				cctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				m, err := col.Collect(cctx, spec)
				if err != nil {
					unavailable := &core.SourceUnavailableError{Source: src, Technology: spec.Name, Err: err}
					p.log.Warn().
						Str("technology", spec.Name).
						Str("source", string(src)).
						Err(unavailable).
						Msg("fetch failed")
					m = &core.SourceMetric{
						Source:      src,
						Technology:  spec.Name,
						CollectedAt: time.Now().UTC(),
					}
				}

				mu.Lock()
				metrics = append(metrics, *m)
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].Technology != metrics[j].Technology {
			return metrics[i].Technology < metrics[j].Technology
		}
		return metrics[i].Source < metrics[j].Source
	})
	return metrics
}

// momentum loads the history series for every technology and blends it
// into a momentum verdict. Without a store, or with fewer than two
// snapshots, a technology reports insufficient data instead of a
// fabricated rate.
func (p *Pipeline) momentum() map[string]velocity.TechMomentum {
	momenta := make(map[string]velocity.TechMomentum, len(p.cfg.Technologies))
	since := time.Now().UTC().Add(-historyWindow)

	for _, spec := range p.cfg.Technologies {
		if p.store == nil {
			momenta[spec.Name] = velocity.TechMomentum{State: velocity.StateInsufficientData}
			continue
		}

		src := momentumSource(spec)
		if src == "" {
			momenta[spec.Name] = velocity.TechMomentum{State: velocity.StateInsufficientData}
			continue
		}

		primary := p.series(spec.Name, src, since, p.store.PrimaryHistory)
		secondary := p.series(spec.Name, src, since, p.store.SecondaryHistory)
		momenta[spec.Name] = velocity.Blend(primary, secondary)
	}
	return momenta
}

func (p *Pipeline) series(tech string, src core.Source, since time.Time,
	load func(string, core.Source, time.Time) ([]velocity.Point, error)) velocity.Growth {
	points, err := load(tech, src, since)
	if err != nil {
		p.log.Warn().Str("technology", tech).Str("source", string(src)).Err(err).Msg("history load failed")
		return velocity.Insufficient()
	}
	return velocity.MonthOverMonth(points)
}

// momentumSource picks the series a technology's momentum is computed
// from: github when configured, otherwise the first download source.
func momentumSource(spec core.TechnologySpec) core.Source {
	for _, src := range core.Sources {
		if spec.HasSource(src) {
			return src
		}
	}
	return ""
}

func (p *Pipeline) assembleLists(res *Result) {
	topN := p.cfg.TopNInsights
	if topN <= 0 {
		topN = insight.DefaultTopN
	}

	for _, list := range p.cfg.Lists() {
		var scored []core.ScoredRecord
		for _, rec := range res.Scored {
			if rec.List == list {
				scored = append(scored, rec)
			}
		}

		res.Lists = append(res.Lists, ListResult{
			Name:    list,
			Scored:  scored,
			Leaders: insight.AdoptionLeaders(scored, res.Momenta, topN),
			Hype:    insight.HypeCandidates(scored),
			Trends:  insight.CategoryTrends(scored, res.Momenta),
		})
	}
}

// compare builds the cross-list verdict from momentum distributions.
// With history missing on either side the comparison stays neutral.
func (p *Pipeline) compare(res *Result) {
	lists := p.cfg.Lists()
	if len(lists) < 2 {
		res.Comparison = velocity.ListComparison{State: velocity.ComparisonInsufficientHistory}
		return
	}

	momentaFor := func(list string) []float64 {
		var out []float64
		for _, rec := range res.Scored {
			if rec.List != list || !rec.RankEligible {
				continue
			}
			if m, ok := res.Momenta[rec.Technology]; ok && m.State == velocity.StateOK {
				out = append(out, m.Score)
			}
		}
		return out
	}

	res.Comparison = velocity.CompareLists(lists[0], lists[1], momentaFor(lists[0]), momentaFor(lists[1]))
}
