package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adoptioncheck/radar/internal/config"
	"github.com/adoptioncheck/radar/internal/core"
	"github.com/adoptioncheck/radar/internal/store"
	"github.com/adoptioncheck/radar/internal/velocity"
)

type fakeCollector struct {
	src      core.Source
	counts   map[string]int64
	failures map[string]error
}

func (f *fakeCollector) Source() core.Source   { return f.src }
func (f *fakeCollector) URLs() core.URLBuilder { return &core.BaseURLs{} }

func (f *fakeCollector) Collect(ctx context.Context, spec core.TechnologySpec) (*core.SourceMetric, error) {
	if err, ok := f.failures[spec.Name]; ok {
		return nil, err
	}
	return &core.SourceMetric{
		Source:         f.src,
		Technology:     spec.Name,
		CollectedAt:    time.Now().UTC(),
		PrimaryCount:   f.counts[spec.Name],
		FetchSucceeded: true,
	}, nil
}

type fakeStore struct {
	saved   []store.Run
	history map[string][]velocity.Point
	saveErr error
}

func (f *fakeStore) SaveRun(run store.Run, metrics []core.SourceMetric, scored []core.ScoredRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, run)
	return nil
}

func (f *fakeStore) PrimaryHistory(tech string, src core.Source, since time.Time) ([]velocity.Point, error) {
	return f.history[tech], nil
}

func (f *fakeStore) SecondaryHistory(tech string, src core.Source, since time.Time) ([]velocity.Point, error) {
	return nil, nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Technologies = []core.TechnologySpec{
		{Name: "alpha", Category: "llm-api", List: "enterprise", GitHubRepo: "a/alpha", NPMPackage: "alpha", PyPIPackage: "alpha"},
		{Name: "beta", Category: "payments", List: "fintech", NPMPackage: "beta", PyPIPackage: "beta"},
	}
	return cfg
}

func testCollectors(counts map[string]int64, failures map[string]error) map[core.Source]core.Collector {
	return map[core.Source]core.Collector{
		core.SourceGitHub: &fakeCollector{src: core.SourceGitHub, counts: counts, failures: failures},
		core.SourceNPM:    &fakeCollector{src: core.SourceNPM, counts: counts, failures: failures},
		core.SourcePyPI:   &fakeCollector{src: core.SourcePyPI, counts: counts, failures: failures},
	}
}

func TestRun(t *testing.T) {
	base := time.Now().UTC().Add(-30 * 24 * time.Hour)
	st := &fakeStore{history: map[string][]velocity.Point{
		"alpha": {{At: base, Value: 1000}, {At: base.Add(30 * 24 * time.Hour), Value: 1200}},
	}}

	counts := map[string]int64{"alpha": 5000, "beta": 4000}
	p := New(testConfig(), testCollectors(counts, nil), st, zerolog.Nop())

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	// alpha has three sources, beta two.
	assert.Len(t, res.Metrics, 5)
	assert.Len(t, res.Scored, 2)
	require.Len(t, st.saved, 1)
	assert.Equal(t, res.RunID, st.saved[0].ID)

	require.Len(t, res.Lists, 2)
	assert.Equal(t, "enterprise", res.Lists[0].Name)
	assert.Equal(t, "fintech", res.Lists[1].Name)
	assert.Len(t, res.Lists[0].Scored, 1)

	alpha := res.Momenta["alpha"]
	assert.Equal(t, velocity.StateOK, alpha.State)
	assert.InDelta(t, 20.0, alpha.Score, 0.001)

	beta := res.Momenta["beta"]
	assert.Equal(t, velocity.StateInsufficientData, beta.State)
}

func TestRunIsolatesSourceFailures(t *testing.T) {
	counts := map[string]int64{"beta": 4000}
	failures := map[string]error{"alpha": errors.New("upstream down")}

	p := New(testConfig(), testCollectors(counts, failures), &fakeStore{}, zerolog.Nop())

	res, err := p.Run(context.Background())
	require.NoError(t, err, "a failing source never aborts the run")

	var alpha, beta core.ScoredRecord
	for _, rec := range res.Scored {
		switch rec.Technology {
		case "alpha":
			alpha = rec
		case "beta":
			beta = rec
		}
	}

	assert.Equal(t, core.ConfidenceLow, alpha.Confidence)
	assert.Equal(t, 0, alpha.SourcesPresent)
	assert.False(t, alpha.RankEligible)

	assert.Equal(t, 2, beta.SourcesPresent)
	assert.NotEqual(t, core.ConfidenceLow, beta.Confidence)

	// Failed fetches are still recorded as observations.
	failed := 0
	for _, m := range res.Metrics {
		if !m.FetchSucceeded {
			failed++
		}
	}
	assert.Equal(t, 3, failed)
}

func TestRunWithoutCatalogAborts(t *testing.T) {
	cfg := testConfig()
	cfg.Technologies = nil

	p := New(cfg, testCollectors(nil, nil), &fakeStore{}, zerolog.Nop())

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, core.ErrNoCatalog)
}

func TestRunSurvivesPersistFailure(t *testing.T) {
	st := &fakeStore{saveErr: errors.New("disk full")}
	counts := map[string]int64{"alpha": 10, "beta": 20}

	p := New(testConfig(), testCollectors(counts, nil), st, zerolog.Nop())

	res, err := p.Run(context.Background())
	require.NoError(t, err, "the run's records are still usable")
	assert.Len(t, res.Scored, 2)
}

func TestRunWithoutStore(t *testing.T) {
	counts := map[string]int64{"alpha": 10, "beta": 20}
	p := New(testConfig(), testCollectors(counts, nil), nil, zerolog.Nop())

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	for _, m := range res.Momenta {
		assert.Equal(t, velocity.StateInsufficientData, m.State)
	}
	assert.Equal(t, velocity.ComparisonInsufficientHistory, res.Comparison.State)
}

func TestCompareUsesEligibleMomenta(t *testing.T) {
	base := time.Now().UTC().Add(-30 * 24 * time.Hour)
	st := &fakeStore{history: map[string][]velocity.Point{
		"alpha": {{At: base, Value: 100}, {At: base.Add(30 * 24 * time.Hour), Value: 160}},
		"beta":  {{At: base, Value: 100}, {At: base.Add(30 * 24 * time.Hour), Value: 105}},
	}}
	counts := map[string]int64{"alpha": 10, "beta": 20}

	p := New(testConfig(), testCollectors(counts, nil), st, zerolog.Nop())

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, velocity.ComparisonOK, res.Comparison.State)
	assert.Equal(t, "enterprise", res.Comparison.Leader)
	assert.InDelta(t, 60.0, res.Comparison.LeftMean, 0.001)
	assert.InDelta(t, 5.0, res.Comparison.RightMean, 0.001)
}

func TestBuildCollectorsUnknownSource(t *testing.T) {
	// No collector packages are imported in this test binary, so the
	// registry only has what other tests registered. BuildCollectors
	// must still construct cleanly from whatever is registered.
	cfg := testConfig()
	collectors, err := BuildCollectors(cfg)
	require.NoError(t, err)
	for src, col := range collectors {
		assert.Equal(t, src, col.Source())
	}
}
