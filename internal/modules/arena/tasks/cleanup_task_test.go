package tasks

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robot-arena/internal/modules/arena/service"
	"robot-arena/internal/pkg/log"
	"robot-arena/internal/pkg/xerrors"
)

type stubSweeper struct {
	stale   []service.StaleBattle
	fail    map[string]error
	evicted []string
}

func (s *stubSweeper) StaleBattles(time.Time) []service.StaleBattle {
	return s.stale
}

func (s *stubSweeper) EvictBattle(_ context.Context, battleID, _ string) error {
	if err := s.fail[battleID]; err != nil {
		return err
	}
	s.evicted = append(s.evicted, battleID)
	return nil
}

func TestCleanupTask_SweepSkipsFailures(t *testing.T) {
	stub := &stubSweeper{
		stale: []service.StaleBattle{
			{ID: "a", Reason: service.ReasonWaitingTimeout},
			{ID: "b", Reason: service.ReasonMaxDuration},
			{ID: "c", Reason: service.ReasonRetention},
		},
		fail: map[string]error{"b": errors.New("boom")},
	}
	task := NewCleanupTask(stub, "@every 1s", log.NewDiscardLogger())

	removed := task.Sweep(context.Background())
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"a", "c"}, stub.evicted)
}

func TestCleanupTask_SweepRegistry(t *testing.T) {
	settings := service.DefaultSettings()
	settings.WaitingTimeout = time.Minute
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	registry := service.NewBattleRegistry(settings, service.Dependencies{
		Logger: log.NewDiscardLogger(),
		Rand:   rand.New(rand.NewSource(1)),
		Clock:  func() time.Time { return now },
	})
	t.Cleanup(func() { _ = registry.Shutdown(context.Background()) })

	b, err := registry.CreateBattle(context.Background(), service.CreateBattleRequest{Name: "idle"})
	require.NoError(t, err)

	task := NewCleanupTask(registry, settings.CleanupSchedule, log.NewDiscardLogger())
	task.clock = func() time.Time { return now.Add(30 * time.Second) }
	assert.Equal(t, 0, task.Sweep(context.Background()), "未超时的战斗保留")

	task.clock = func() time.Time { return now.Add(2 * time.Minute) }
	assert.Equal(t, 1, task.Sweep(context.Background()))

	_, err = registry.GetBattle(b.ID)
	assert.True(t, xerrors.IsCode(err, xerrors.CodeBattleNotFound))
}

func TestCleanupTask_StartStop(t *testing.T) {
	stub := &stubSweeper{}
	task := NewCleanupTask(stub, "@every 1h", log.NewDiscardLogger())
	require.NoError(t, task.Start())
	task.Stop()

	bad := NewCleanupTask(stub, "not a schedule", log.NewDiscardLogger())
	assert.Error(t, bad.Start())
	bad.Stop()
}
