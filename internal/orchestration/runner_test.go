package orchestration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supercuts/supercuts/internal/cache"
	"github.com/supercuts/supercuts/internal/dataset"
	"github.com/supercuts/supercuts/internal/identity"
	"github.com/supercuts/supercuts/internal/models"
	"go.uber.org/mock/gomock"
)

func fp(v float64) *float64 { return &v }

func metDataset(t *testing.T) *dataset.Columns {
	t.Helper()
	ds, err := dataset.NewColumns("test", map[string][]float64{
		"met":    {50, 150, 250},
		"n_jets": {2, 4, 6},
		"weight": {1, 2, 3},
	})
	require.NoError(t, err)
	return ds
}

func metSweep() []models.CutDefinition {
	return []models.CutDefinition{
		{Field: "met", Direction: ">", Start: fp(0), Stop: fp(200), Step: fp(100)},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	r := NewSweepRunner("weight", 1)
	outcome, err := r.Run(context.Background(), metDataset(t), metSweep())
	require.NoError(t, err)
	require.Len(t, outcome.Results, 2)

	byHash := map[string]models.SignificanceRecord{}
	for _, res := range outcome.Results {
		byHash[res.Hash] = res.Details
	}

	h0 := identity.Hash(models.Combination{{Field: "met", Direction: ">", Pivot: fp(0)}})
	h100 := identity.Hash(models.Combination{{Field: "met", Direction: ">", Pivot: fp(100)}})

	assert.Equal(t, models.SignificanceRecord{Raw: 3, Weighted: 6, Scaled: 6}, byHash[h0])
	assert.Equal(t, models.SignificanceRecord{Raw: 2, Weighted: 5, Scaled: 5}, byHash[h100])

	assert.Equal(t, 2, outcome.Summary.Combinations)
	require.NotNil(t, outcome.Summary.Best)
	assert.Equal(t, h0, outcome.Summary.Best.Hash)
	assert.Equal(t, 6.0, outcome.Summary.Yield.Max)
}

func TestRun_SortedDescendingByHash(t *testing.T) {
	defs := []models.CutDefinition{
		{Field: "met", Direction: ">", Start: fp(0), Stop: fp(300), Step: fp(25)},
		{Field: "n_jets", Direction: ">=", Start: fp(0), Stop: fp(8), Step: fp(1)},
	}
	outcome, err := NewSweepRunner("weight", 0.5).Run(context.Background(), metDataset(t), defs)
	require.NoError(t, err)
	require.Len(t, outcome.Results, 12*8)

	for i := 1; i < len(outcome.Results); i++ {
		assert.Greater(t, outcome.Results[i-1].Hash, outcome.Results[i].Hash)
	}
}

func TestRun_ConcurrentMatchesSequential(t *testing.T) {
	defs := []models.CutDefinition{
		{Field: "met", Direction: ">", Start: fp(0), Stop: fp(300), Step: fp(10)},
		{Field: "n_jets", Direction: "<=", Start: fp(0), Stop: fp(8), Step: fp(1)},
		{Field: "weight", Direction: ">", Pivot: fp(0)},
	}
	ds := metDataset(t)

	seq, err := NewSweepRunner("weight", 2).Run(context.Background(), ds, defs)
	require.NoError(t, err)
	par, err := NewSweepRunner("weight", 2, WithWorkers(8)).Run(context.Background(), ds, defs)
	require.NoError(t, err)

	assert.Equal(t, seq.Results, par.Results)
}

func TestRun_MissingFieldAborts(t *testing.T) {
	defs := append(metSweep(), models.CutDefinition{Field: "mjj", Direction: ">", Pivot: fp(1)})

	for _, workers := range []int{1, 4} {
		outcome, err := NewSweepRunner("weight", 1, WithWorkers(workers)).Run(context.Background(), metDataset(t), defs)
		assert.Nil(t, outcome)
		var schemaErr *models.SchemaError
		require.ErrorAs(t, err, &schemaErr, "workers=%d", workers)
		assert.Equal(t, "mjj", schemaErr.Field)
	}
}

func TestRun_MissingWeightAborts(t *testing.T) {
	_, err := NewSweepRunner("event_weight", 1).Run(context.Background(), metDataset(t), metSweep())
	var dsErr *models.DataSourceError
	require.ErrorAs(t, err, &dsErr)
	assert.Equal(t, "event_weight", dsErr.Field)
}

func TestRun_MalformedDefinition(t *testing.T) {
	defs := []models.CutDefinition{{Field: "met", Start: fp(0)}}
	_, err := NewSweepRunner("weight", 1).Run(context.Background(), metDataset(t), defs)
	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestRun_SourceErrorIsFailFast(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := dataset.NewMockSource(ctrl)
	boom := errors.New("read failed")

	src.EXPECT().Len().Return(3).AnyTimes()
	src.EXPECT().Column("met").Return(nil, boom).Times(1)

	r := NewSweepRunner("weight", 1)
	_, err := r.Run(context.Background(), src, metSweep())
	assert.ErrorIs(t, err, boom)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		_, err := NewSweepRunner("weight", 1, WithWorkers(workers)).Run(ctx, metDataset(t), metSweep())
		assert.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
	}
}

func TestRun_Progress(t *testing.T) {
	r := NewSweepRunner("weight", 1, WithWorkers(2))

	var mu sync.Mutex
	counts := map[EventType]int{}
	r.OnProgress(func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		counts[e.EventType]++
		assert.Equal(t, 2, e.Total)
	})

	_, err := r.Run(context.Background(), metDataset(t), metSweep())
	require.NoError(t, err)
	assert.Equal(t, 1, counts[EventSweepStart])
	assert.Equal(t, 2, counts[EventCombinationScore])
	assert.Equal(t, 1, counts[EventSweepComplete])
}

func TestRun_Cache(t *testing.T) {
	c := cache.New(t.TempDir())
	ds := metDataset(t)

	first := NewSweepRunner("weight", 1, WithCache(c, "k1"))
	out1, err := first.Run(context.Background(), ds, metSweep())
	require.NoError(t, err)

	second := NewSweepRunner("weight", 1, WithCache(c, "k1"))
	var cached bool
	second.OnProgress(func(e ProgressEvent) {
		if e.EventType == EventSweepCached {
			cached = true
		}
	})
	out2, err := second.Run(context.Background(), ds, metSweep())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, out1.Results, out2.Results)
}
