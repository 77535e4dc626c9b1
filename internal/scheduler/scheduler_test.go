package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaynaArora/neo-hackathon/internal/logger"
	"github.com/RaynaArora/neo-hackathon/internal/service"
)

type fakeRanker struct {
	err  error
	opts []service.RankOptions
}

func (f *fakeRanker) Rank(_ context.Context, opts service.RankOptions) (*service.Ranking, error) {
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &service.Ranking{RunID: "run-1", AsOf: opts.AsOf, Stats: service.RunStats{Scored: 2}}, nil
}

func newTestScheduler(r Ranker) *Scheduler {
	s := NewScheduler(r, logger.NewDiscardLogger())
	s.now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestScheduleRankingValidatesCron(t *testing.T) {
	s := newTestScheduler(&fakeRanker{})
	assert.Error(t, s.ScheduleRanking("not a cron", JobConfig{}))
	assert.Error(t, s.Start(), "no jobs scheduled")

	require.NoError(t, s.ScheduleRanking("0 6 * * *", JobConfig{}))
	assert.Equal(t, time.Hour, s.job.Timeout)
}

func TestRunNowRecordsStatusAndExports(t *testing.T) {
	ranker := &fakeRanker{}
	s := newTestScheduler(ranker)
	out := filepath.Join(t.TempDir(), "ranking.json")
	require.NoError(t, s.ScheduleRanking("@daily", JobConfig{LookaheadMonths: 18, ExcludePast: true, Limit: 5, OutputPath: out}))

	_, ok := s.LastRun()
	assert.False(t, ok)

	status := s.RunNow(context.Background())
	assert.Equal(t, "run-1", status.RunID)
	assert.Empty(t, status.Error)
	assert.Equal(t, 2, status.Stats.Scored)

	require.Len(t, ranker.opts, 1)
	assert.Equal(t, service.RankOptions{
		AsOf:            time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		LookaheadMonths: 18,
		ExcludePast:     true,
		Limit:           5,
	}, ranker.opts[0])

	last, ok := s.LastRun()
	require.True(t, ok)
	assert.Equal(t, status, last)
	require.NotNil(t, s.Latest())

	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestRunNowKeepsPreviousRankingOnFailure(t *testing.T) {
	ranker := &fakeRanker{}
	s := newTestScheduler(ranker)
	s.RunNow(context.Background())

	ranker.err = errors.New("election service down")
	status := s.RunNow(context.Background())
	assert.Equal(t, "election service down", status.Error)
	assert.Empty(t, status.RunID)
	require.NotNil(t, s.Latest())
	assert.Equal(t, "run-1", s.Latest().RunID)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&fakeRanker{}, logrus.New())
	require.NoError(t, s.ScheduleRanking("@hourly", JobConfig{}))
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.False(t, s.GetNextRun().IsZero())
	assert.Error(t, s.ScheduleRanking("@daily", JobConfig{}))

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())
	assert.NoError(t, s.Stop())
}
