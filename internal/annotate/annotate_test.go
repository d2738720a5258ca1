package annotate

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/shanehull/filinglens/internal/filings"
	"github.com/shanehull/filinglens/internal/history"
	"github.com/shanehull/filinglens/internal/types"
)

type fakeAnnotator struct {
	fail  map[types.FiscalYear]bool
	calls atomic.Int32
}

func (f *fakeAnnotator) Annotate(_ context.Context, req types.AnnotationRequest) (types.AnnotationResult, error) {
	f.calls.Add(1)
	if f.fail[req.Year] {
		return types.AnnotationResult{}, &types.OpError{Op: "fake", Kind: types.KindAnnotation, Err: errors.New("engine down")}
	}
	return types.AnnotationResult{
		Keywords:  []types.Keyword{{Text: req.Text, Count: int(req.Year)}},
		Sentiment: types.Sentiment{DocumentScore: float64(req.Year) / 10000},
		Relations: []types.Relation{{Type: "rel", Subject: req.Entity, Object: req.Text}},
	}, nil
}

func threeYears() *filings.Corpus {
	c := filings.NewCorpus()
	c.Set(2019, "c")
	c.Set(2017, "a")
	c.Set(2018, "b")
	return c
}

func TestAggregateAlignsAscending(t *testing.T) {
	agg := &Aggregator{Annotator: &fakeAnnotator{}}
	out, err := agg.Aggregate(context.Background(), "AAPL", threeYears())
	require.NoError(t, err)

	assert.Equal(t, []types.FiscalYear{2017, 2018, 2019}, out.Years)
	require.Len(t, out.Keywords, 3)
	assert.Equal(t, "a", out.Keywords[0][0].Text)
	assert.Equal(t, "c", out.Keywords[2][0].Text)
	assert.Equal(t, 0.2018, out.Sentiments[1].DocumentScore)
	assert.Equal(t, []types.FiscalYear{2017, 2018, 2019}, out.Corpus.Years())
}

func TestAggregateDropsFailedYearEverywhere(t *testing.T) {
	var mu sync.Mutex
	outcomes := map[string]int{}
	agg := &Aggregator{
		Annotator: &fakeAnnotator{fail: map[types.FiscalYear]bool{2018: true}},
		Observe: func(o string) {
			mu.Lock()
			outcomes[o]++
			mu.Unlock()
		},
	}
	out, err := agg.Aggregate(context.Background(), "AAPL", threeYears())
	require.NoError(t, err)

	assert.Equal(t, []types.FiscalYear{2017, 2019}, out.Years)
	assert.Len(t, out.Keywords, 2)
	assert.Len(t, out.Sentiments, 2)
	assert.Len(t, out.Relations, 2)
	assert.Equal(t, []types.FiscalYear{2017, 2019}, out.Corpus.Years())
	require.Len(t, out.Failures, 1)
	assert.Equal(t, types.FiscalYear(2018), out.Failures[0].Year)
	assert.Equal(t, map[string]int{OutcomeOK: 2, OutcomeFailed: 1}, outcomes)

	i, ok := out.Index(2019)
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = out.Index(2018)
	assert.False(t, ok)
}

func TestAggregateAllFail(t *testing.T) {
	agg := &Aggregator{Annotator: &fakeAnnotator{fail: map[types.FiscalYear]bool{2017: true, 2018: true, 2019: true}}}
	out, err := agg.Aggregate(context.Background(), "AAPL", threeYears())
	assert.ErrorIs(t, err, types.ErrAnnotation)
	assert.Len(t, out.Failures, 3)
}

func TestAggregateConcurrentMatchesSequential(t *testing.T) {
	c := filings.NewCorpus()
	for y := types.FiscalYear(1995); y < 2025; y++ {
		c.Set(y, "text")
	}
	fail := map[types.FiscalYear]bool{1999: true, 2010: true}

	seq, err := (&Aggregator{Annotator: &fakeAnnotator{fail: fail}}).Aggregate(context.Background(), "E", c)
	require.NoError(t, err)
	par, err := (&Aggregator{
		Annotator:   &fakeAnnotator{fail: fail},
		Concurrency: 8,
		Limiter:     rate.NewLimiter(rate.Inf, 1),
	}).Aggregate(context.Background(), "E", c)
	require.NoError(t, err)

	assert.Equal(t, seq.Years, par.Years)
	assert.Equal(t, seq.Keywords, par.Keywords)
	assert.Equal(t, seq.Sentiments, par.Sentiments)
	assert.Equal(t, seq.Relations, par.Relations)
	assert.ElementsMatch(t, seq.Failures, par.Failures)
}

func TestAggregateCacheHitSkipsAnnotator(t *testing.T) {
	cache, err := history.NewManager(filepath.Join(t.TempDir(), "h.json"), 0, nil)
	require.NoError(t, err)

	first := &fakeAnnotator{}
	_, err = (&Aggregator{Annotator: first, Cache: cache}).Aggregate(context.Background(), "AAPL", threeYears())
	require.NoError(t, err)
	assert.Equal(t, int32(3), first.calls.Load())

	second := &fakeAnnotator{}
	out, err := (&Aggregator{Annotator: second, Cache: cache}).Aggregate(context.Background(), "AAPL", threeYears())
	require.NoError(t, err)
	assert.Equal(t, int32(0), second.calls.Load())
	assert.Equal(t, []types.FiscalYear{2017, 2018, 2019}, out.Years)
}

func TestAggregateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ann := &fakeAnnotator{}
	out, err := (&Aggregator{Annotator: ann}).Aggregate(ctx, "AAPL", threeYears())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.Years)
	assert.Empty(t, out.Failures)
	assert.Equal(t, int32(0), ann.calls.Load())
}
