package service

import (
	"context"
	"sync"
	"time"

	"robot-arena/internal/pkg/log"
)

// StepOutcome 单步推进的结果
type StepOutcome int

const (
	StepAdvanced StepOutcome = iota // 前进一格，仍在移动
	StepArrived                     // 前进一格并走完全部格数
	StepBlocked                     // 被边界、障碍物或其他机器人挡住，原地停下
	StepCrashed                     // 撞墙且启用了撞毁策略，由调用方执行坠毁
)

// robotAdvancer 由 BattleRegistry 实现：在持锁状态下推进一格
// 返回 false 表示任务应当结束
type robotAdvancer interface {
	advanceRobot(robotID string, seq uint64) bool
}

type moveTask struct {
	seq    uint64
	cancel context.CancelFunc
}

// MovementEngine 每个移动中的机器人对应一个可取消的推进任务
// 加锁顺序：BattleRegistry.mu 先于 MovementEngine.mu
type MovementEngine struct {
	crashOnWall bool
	logger      log.Logger
	advancer    robotAdvancer

	mu     sync.Mutex
	tasks  map[string]moveTask
	closed bool // StopAll 之后不再接受新任务
	wg     sync.WaitGroup
}

// NewMovementEngine 创建移动引擎
func NewMovementEngine(crashOnWall bool, advancer robotAdvancer, logger log.Logger) *MovementEngine {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &MovementEngine{
		crashOnWall: crashOnWall,
		logger:      logger.With("component", "movement_engine"),
		advancer:    advancer,
		tasks:       make(map[string]moveTask),
	}
}

// Begin 写入新的移动指令并返回其序号，调用方持有 registry 写锁
func (e *MovementEngine) Begin(r *Robot, dir Direction, blocks int) uint64 {
	r.moveSeq++
	r.Direction = dir
	r.TargetBlocks = blocks
	r.BlocksRemaining = blocks
	r.Status = RobotMoving
	return r.moveSeq
}

// Start 取消该机器人正在进行的任务并启动新任务，返回是否已启动
// 调用方持有 registry 写锁，旧任务在拿到锁之前已无法推进
func (e *MovementEngine) Start(robotID string, seq uint64, interval time.Duration) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	if prev, ok := e.tasks[robotID]; ok {
		prev.cancel()
	}
	e.tasks[robotID] = moveTask{seq: seq, cancel: cancel}
	e.wg.Add(1)
	e.mu.Unlock()

	go e.run(ctx, robotID, seq, interval)
	return true
}

// Stop 取消机器人的移动任务（不修改机器人状态）
func (e *MovementEngine) Stop(robotID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if task, ok := e.tasks[robotID]; ok {
		task.cancel()
		delete(e.tasks, robotID)
	}
}

// StopAll 取消全部任务并等待退出，之后的 Start 都不再生效
func (e *MovementEngine) StopAll() {
	e.mu.Lock()
	e.closed = true
	for id, task := range e.tasks {
		task.cancel()
		delete(e.tasks, id)
	}
	e.mu.Unlock()
	e.wg.Wait()
}

// Active 当前推进中的任务数
func (e *MovementEngine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

func (e *MovementEngine) run(ctx context.Context, robotID string, seq uint64, interval time.Duration) {
	defer e.wg.Done()
	defer e.finish(robotID, seq)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			return
		}
		if !e.advancer.advanceRobot(robotID, seq) {
			return
		}
	}
}

// finish 只清理属于自己的任务记录，新任务已登记时不动
func (e *MovementEngine) finish(robotID string, seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if task, ok := e.tasks[robotID]; ok && task.seq == seq {
		task.cancel()
		delete(e.tasks, robotID)
	}
}

// Step 推进一格，调用方持有 registry 写锁
func (e *MovementEngine) Step(b *Battle, r *Robot) StepOutcome {
	next := r.Position.Add(r.Direction.Delta())

	switch {
	case !b.InBounds(next):
		halt(r)
		return StepBlocked
	case b.WallAt(next) != nil:
		if e.crashOnWall {
			return StepCrashed
		}
		halt(r)
		return StepBlocked
	case b.RobotAt(next, r.ID, true) != nil:
		halt(r)
		return StepBlocked
	}

	r.Position = next
	r.BlocksRemaining--
	if r.BlocksRemaining <= 0 {
		halt(r)
		return StepArrived
	}
	return StepAdvanced
}

func halt(r *Robot) {
	r.BlocksRemaining = 0
	if r.Status == RobotMoving {
		r.Status = RobotIdle
	}
}
