package scheduler

import (
	"context"
	"errors"
	"testing"

	"DebtVsDCA/internal/collector"
	"DebtVsDCA/internal/model"
	"DebtVsDCA/internal/session"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePurger struct {
	calls int
	err   error
}

func (p *fakePurger) Purge(context.Context) (int64, error) {
	p.calls++
	return 3, p.err
}

func newTestScheduler(t *testing.T, f collector.Fetcher) (*Scheduler, *session.Store) {
	t.Helper()
	store, err := session.NewStore("")
	require.NoError(t, err)
	return NewScheduler(context.Background(), collector.NewCollector(f), store, zap.NewNop().Sugar()), store
}

func TestRefreshNow(t *testing.T) {
	s, store := newTestScheduler(t, &collector.MockFetcher{Price: 100, History: []float64{100, 110, 99}})

	withAsset := store.Create(model.Asset{ID: "bitcoin", Symbol: "BTC"}, model.Period1Month)
	empty := store.Create(model.Asset{}, "")

	s.RefreshNow()

	got, err := store.Get(withAsset.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Stats)
	require.Equal(t, model.SourceHistory, got.Stats.Source)
	require.Equal(t, 2, got.Stats.Samples)

	got, err = store.Get(empty.ID)
	require.NoError(t, err)
	require.Nil(t, got.Stats, "sessions without an asset are skipped")
}

func TestRefreshNowStopsOnCancelledContext(t *testing.T) {
	s, store := newTestScheduler(t, &collector.MockFetcher{Price: 100, History: []float64{100, 110}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Ctx = ctx

	sess := store.Create(model.Asset{ID: "bitcoin"}, "")
	s.RefreshNow()

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	require.Nil(t, got.Stats)
}

func TestRegister(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{})
	require.Error(t, s.Register("not a cron spec"))

	s, _ = newTestScheduler(t, &collector.MockFetcher{})
	require.NoError(t, s.Register("0 */5 * * * *"))
	require.Len(t, s.Cron.Entries(), 1)

	s, _ = newTestScheduler(t, &collector.MockFetcher{})
	s.Cache = &fakePurger{}
	require.NoError(t, s.Register("0 */5 * * * *"))
	require.Len(t, s.Cron.Entries(), 2)

	s.Start()
	s.Stop()
}

func TestPurgeCache(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{})
	p := &fakePurger{}
	s.Cache = p
	s.purgeCache()
	require.Equal(t, 1, p.calls)

	p.err = errors.New("locked")
	require.NotPanics(t, s.purgeCache)
	require.Equal(t, 2, p.calls)
}
