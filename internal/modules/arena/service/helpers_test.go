package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"robot-arena/internal/pkg/log"
	"robot-arena/internal/repository/interfaces"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []BattleEvent
}

func (o *recordingObserver) OnBattleEvent(_ context.Context, event BattleEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) Events() []BattleEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]BattleEvent(nil), o.events...)
}

type fakeReports struct {
	mu      sync.Mutex
	reports []*interfaces.BattleReport
}

func (f *fakeReports) Create(_ context.Context, report *interfaces.BattleReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeReports) ListRecent(_ context.Context, limit int) ([]*interfaces.BattleReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*interfaces.BattleReport(nil), f.reports...), nil
}

func (f *fakeReports) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

type testEnv struct {
	reg      *BattleRegistry
	clock    *fakeClock
	observer *recordingObserver
	reports  *fakeReports
}

func newTestEnv(t *testing.T, mutate func(*Settings)) *testEnv {
	t.Helper()
	settings := DefaultSettings()
	if mutate != nil {
		mutate(&settings)
	}
	env := &testEnv{
		clock:    newFakeClock(),
		observer: &recordingObserver{},
		reports:  &fakeReports{},
	}
	env.reg = NewBattleRegistry(settings, Dependencies{
		Logger:   log.NewDiscardLogger(),
		Observer: env.observer,
		Reports:  env.reports,
		Rand:     rand.New(rand.NewSource(42)),
		Clock:    env.clock.Now,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = env.reg.Shutdown(ctx)
	})
	return env
}

func ptr[T any](v T) *T { return &v }

// emptyBattle 创建无障碍物、最短移动间隔的战斗
func (e *testEnv) emptyBattle(t *testing.T, name string) *BattleSnapshot {
	t.Helper()
	b, err := e.reg.CreateBattle(context.Background(), CreateBattleRequest{
		Name:                name + " empty",
		MovementTimeSeconds: ptr(0.1),
	})
	if err != nil {
		t.Fatalf("create battle: %v", err)
	}
	return b
}

func (e *testEnv) register(t *testing.T, battleID, name string) *RobotSnapshot {
	t.Helper()
	r, err := e.reg.RegisterRobot(context.Background(), RegisterRobotRequest{Name: name, BattleID: battleID})
	if err != nil {
		t.Fatalf("register robot: %v", err)
	}
	return r
}

func (e *testEnv) start(t *testing.T, battleID string) {
	t.Helper()
	if _, err := e.reg.StartBattle(context.Background(), battleID); err != nil {
		t.Fatalf("start battle: %v", err)
	}
}

// place 直接改写机器人坐标
func (e *testEnv) place(robotID string, x, y int) {
	e.reg.mu.Lock()
	defer e.reg.mu.Unlock()
	e.reg.robots[robotID].Position = Cell{X: x, Y: y}
}

func (e *testEnv) setHitPoints(robotID string, hp int) {
	e.reg.mu.Lock()
	defer e.reg.mu.Unlock()
	e.reg.robots[robotID].HitPoints = hp
}

func (e *testEnv) addWall(battleID string, wall *Wall) {
	e.reg.mu.Lock()
	defer e.reg.mu.Unlock()
	b := e.reg.battles[battleID]
	b.setWalls(append(b.Walls, wall))
}

func (e *testEnv) robot(t *testing.T, battleID, robotID string) RobotSnapshot {
	t.Helper()
	r, err := e.reg.GetRobot(battleID, robotID)
	if err != nil {
		t.Fatalf("get robot: %v", err)
	}
	return *r
}

// newBattle 直接构造战斗用于引擎单测
func newBattle(width, height int, walls ...*Wall) *Battle {
	b := &Battle{ID: "b", Width: width, Height: height, State: BattleInProgress}
	b.setWalls(walls)
	return b
}

func addRobot(b *Battle, id string, x, y int) *Robot {
	r := &Robot{
		ID:           id,
		Name:         id,
		BattleID:     b.ID,
		Position:     Cell{X: x, Y: y},
		Direction:    North,
		Status:       RobotIdle,
		HitPoints:    100,
		MaxHitPoints: 100,
	}
	b.Robots = append(b.Robots, r)
	return r
}

func wallOf(t WallType, cells ...Cell) *Wall {
	return &Wall{Type: t, Cells: cells}
}
