package service

import (
	"cmp"
	"context"
	"encoding/json"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"robot-arena/internal/pkg/log"
	"robot-arena/internal/pkg/metrics"
	"robot-arena/internal/pkg/xerrors"
	"robot-arena/internal/repository/interfaces"
)

// 战斗移除原因（指标标签 / 事件 reason）
const (
	ReasonDeleted        = "deleted"
	ReasonForced         = "forced"
	ReasonWaitingTimeout = "waiting_timeout"
	ReasonMaxDuration    = "max_duration"
	ReasonRetention      = "retention"
)

// 战斗结果（指标标签 / 归档 result_status）
const (
	ResultWinner   = "winner"
	ResultNoWinner = "no_winner"
	ResultDeclared = "declared"
)

// Dependencies BattleRegistry 的外部协作者，除 Logger 外均可为空
type Dependencies struct {
	Logger   log.Logger
	Metrics  *metrics.ArenaMetrics
	Observer BattleObserver
	Reports  interfaces.BattleReportRepository
	Rand     *rand.Rand
	Clock    func() time.Time
	NewID    func() string
}

// ==================== 请求 ====================

// CreateBattleRequest 创建战斗，空指针字段取默认值
type CreateBattleRequest struct {
	Name                string
	Width               *int
	Height              *int
	MovementTimeSeconds *float64
}

// RegisterRobotRequest 注册机器人，BattleID 为空时加入第一个可加入的战斗
type RegisterRobotRequest struct {
	Name     string
	BattleID string
}

// MoveRequest 移动指令
type MoveRequest struct {
	BattleID  string
	RobotID   string
	Direction Direction
	Blocks    int
}

// LaserRequest 激光射击，Range 为 0 时取默认射程
type LaserRequest struct {
	BattleID  string
	RobotID   string
	Direction Direction
	Range     int
}

// BattleSummary 列表视图
type BattleSummary struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	State        BattleState `json:"state"`
	ArenaWidth   int         `json:"arenaWidth"`
	ArenaHeight  int         `json:"arenaHeight"`
	RobotCount   int         `json:"robotCount"`
	ActiveRobots int         `json:"activeRobots"`
	WinnerID     string      `json:"winnerId,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// StaleBattle 违反存活策略、应被清理的战斗
type StaleBattle struct {
	ID     string
	Name   string
	State  BattleState
	Reason string
}

// completion 战斗结束后需要在锁外处理的收尾工作
type completion struct {
	report   *interfaces.BattleReport
	duration time.Duration
}

// ==================== BattleRegistry ====================

// BattleRegistry 持有全部战斗与机器人状态，是引擎对外的唯一入口
// 一把读写锁同时保护两张表；观察者、指标、归档一律在锁外调用
type BattleRegistry struct {
	settings Settings
	logger   log.Logger
	metrics  *metrics.ArenaMetrics
	observer BattleObserver
	reports  interfaces.BattleReportRepository
	clock    func() time.Time
	newID    func() string

	walls    *WallGenerator
	radar    *RadarEngine
	laser    *LaserEngine
	movement *MovementEngine

	mu      sync.RWMutex
	rng     *rand.Rand // 只在持有写锁时使用
	battles map[string]*Battle
	robots  map[string]*Robot
	names   map[string]string // 战斗名 → ID

	archiveWG sync.WaitGroup
}

// NewBattleRegistry 创建注册表
func NewBattleRegistry(settings Settings, deps Dependencies) *BattleRegistry {
	logger := deps.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	rng := deps.Rand
	if rng == nil {
		seed := settings.RandomSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	r := &BattleRegistry{
		settings: settings,
		logger:   logger.With("component", "battle_registry"),
		metrics:  deps.Metrics,
		observer: deps.Observer,
		reports:  deps.Reports,
		clock:    clock,
		newID:    newID,
		rng:      rng,
		battles:  make(map[string]*Battle),
		robots:   make(map[string]*Robot),
		names:    make(map[string]string),
	}
	r.walls = NewWallGenerator(settings, logger, deps.Metrics.RecordWallFallback)
	r.radar = NewRadarEngine(settings.RadarMaxRange)
	r.laser = NewLaserEngine(settings.LaserDamage)
	r.movement = NewMovementEngine(settings.CrashOnWallCollision, r, logger)
	return r
}

// Settings 当前参数
func (r *BattleRegistry) Settings() Settings {
	return r.settings
}

// ==================== 生命周期 ====================

// CreateBattle 创建战斗（WAITING_ON_ROBOTS）
func (r *BattleRegistry) CreateBattle(ctx context.Context, req CreateBattleRequest) (*BattleSnapshot, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, xerrors.NewValidationError("name", "战斗名称不能为空")
	}
	width, height, movementTime, err := r.resolveArena(req)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if _, exists := r.names[name]; exists {
		r.mu.Unlock()
		return nil, xerrors.NewBattleNameExistsError(name)
	}
	battle := r.createLocked(name, width, height, movementTime)
	snap := battle.snapshot()
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "战斗已创建",
		log.String("battle_id", snap.ID),
		log.String("name", name),
		log.Int("walls", len(snap.Walls)),
	)
	r.metrics.RecordBattleCreated()
	r.publishUpdated(ctx, snap)
	return snap, nil
}

func (r *BattleRegistry) resolveArena(req CreateBattleRequest) (int, int, time.Duration, error) {
	s := r.settings
	width, height := s.DefaultWidth, s.DefaultHeight
	if req.Width != nil {
		width = *req.Width
	}
	if req.Height != nil {
		height = *req.Height
	}
	if width < s.MinArenaSize || width > s.MaxArenaSize {
		return 0, 0, 0, xerrors.NewValidationError("width", "竞技场宽度超出范围").
			WithMetadata("min", s.MinArenaSize).WithMetadata("max", s.MaxArenaSize)
	}
	if height < s.MinArenaSize || height > s.MaxArenaSize {
		return 0, 0, 0, xerrors.NewValidationError("height", "竞技场高度超出范围").
			WithMetadata("min", s.MinArenaSize).WithMetadata("max", s.MaxArenaSize)
	}

	movementTime := s.DefaultMovementTime
	if req.MovementTimeSeconds != nil {
		secs := *req.MovementTimeSeconds
		if secs < s.MinMovementTime.Seconds() || secs > s.MaxMovementTime.Seconds() {
			return 0, 0, 0, xerrors.NewValidationError("movementTimeSeconds", "移动耗时超出范围").
				WithMetadata("min", s.MinMovementTime.Seconds()).WithMetadata("max", s.MaxMovementTime.Seconds())
		}
		movementTime = time.Duration(secs * float64(time.Second))
	}
	return width, height, movementTime, nil
}

func (r *BattleRegistry) createLocked(name string, width, height int, movementTime time.Duration) *Battle {
	battle := &Battle{
		ID:           r.newID(),
		Name:         name,
		Width:        width,
		Height:       height,
		MovementTime: movementTime,
		State:        BattleWaiting,
		CreatedAt:    r.clock(),
		version:      1,
	}
	battle.setWalls(r.walls.Generate(name, width, height, r.rng))

	r.battles[battle.ID] = battle
	r.names[name] = battle.ID
	return battle
}

// RegisterRobot 注册机器人并在空闲格出生
func (r *BattleRegistry) RegisterRobot(ctx context.Context, req RegisterRobotRequest) (*RobotSnapshot, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, xerrors.NewValidationError("name", "机器人名称不能为空")
	}

	r.mu.Lock()
	var (
		battle  *Battle
		created bool
	)
	if req.BattleID != "" {
		battle = r.battles[req.BattleID]
		if battle == nil {
			r.mu.Unlock()
			return nil, xerrors.NewBattleNotFoundError(req.BattleID)
		}
	} else if battle = r.firstOpenLocked(); battle == nil {
		battle = r.createLocked(r.generatedNameLocked(), r.settings.DefaultWidth, r.settings.DefaultHeight, r.settings.DefaultMovementTime)
		created = true
	}

	if battle.State == BattleInProgress || battle.State == BattleCompleted {
		r.mu.Unlock()
		return nil, xerrors.NewBattleStateError(battle.ID, string(battle.State), "register_robot")
	}

	spawn, ok := r.spawnLocked(battle)
	if !ok {
		r.mu.Unlock()
		return nil, xerrors.NewArenaFullError(battle.ID)
	}

	robot := &Robot{
		ID:           r.newID(),
		Name:         name,
		BattleID:     battle.ID,
		Position:     spawn,
		Direction:    North,
		Status:       RobotIdle,
		HitPoints:    r.settings.MaxHitPoints,
		MaxHitPoints: r.settings.MaxHitPoints,
	}
	battle.Robots = append(battle.Robots, robot)
	r.robots[robot.ID] = robot
	if battle.State == BattleWaiting && len(battle.Robots) >= 2 {
		battle.State = BattleReady
	}
	battle.version++
	robotSnap := robot.snapshot()
	battleSnap := battle.snapshot()
	r.mu.Unlock()

	if created {
		r.logger.InfoContext(ctx, "没有可加入的战斗，已自动创建", log.String("battle_id", battle.ID))
		r.metrics.RecordBattleCreated()
	}
	r.logger.InfoContext(ctx, "机器人已注册",
		log.String("battle_id", battleSnap.ID),
		log.String("robot_id", robotSnap.ID),
		log.String("state", string(battleSnap.State)),
	)
	r.metrics.RecordRobotRegistered()
	r.publishUpdated(ctx, battleSnap)
	return &robotSnap, nil
}

// firstOpenLocked 最早创建的、仍可加入的战斗
func (r *BattleRegistry) firstOpenLocked() *Battle {
	var first *Battle
	for _, b := range r.battles {
		if b.State != BattleWaiting && b.State != BattleReady {
			continue
		}
		if first == nil || b.CreatedAt.Before(first.CreatedAt) ||
			(b.CreatedAt.Equal(first.CreatedAt) && b.ID < first.ID) {
			first = b
		}
	}
	return first
}

func (r *BattleRegistry) generatedNameLocked() string {
	for {
		name := "Battle-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		if _, exists := r.names[name]; !exists {
			return name
		}
	}
}

// spawnLocked 先随机采样，多次碰撞后按行列顺序扫描
func (r *BattleRegistry) spawnLocked(b *Battle) (Cell, bool) {
	free := func(c Cell) bool {
		return b.InBounds(c) && b.WallAt(c) == nil && b.RobotAt(c, "", false) == nil
	}
	for range r.settings.SpawnAttempts {
		c := Cell{X: r.rng.Intn(b.Width), Y: r.rng.Intn(b.Height)}
		if free(c) {
			return c, true
		}
	}
	for x := range b.Width {
		for y := range b.Height {
			if c := (Cell{X: x, Y: y}); free(c) {
				return c, true
			}
		}
	}
	return Cell{}, false
}

// StartBattle READY → IN_PROGRESS
func (r *BattleRegistry) StartBattle(ctx context.Context, battleID string) (*BattleSnapshot, error) {
	r.mu.Lock()
	battle := r.battles[battleID]
	if battle == nil {
		r.mu.Unlock()
		return nil, xerrors.NewBattleNotFoundError(battleID)
	}
	if battle.State != BattleReady {
		r.mu.Unlock()
		return nil, xerrors.NewBattleStateError(battleID, string(battle.State), "start")
	}
	battle.State = BattleInProgress
	battle.StartedAt = r.clock()
	battle.version++
	snap := battle.snapshot()
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "战斗开始", log.String("battle_id", battleID), log.Int("robots", len(snap.Robots)))
	r.publishUpdated(ctx, snap)
	return snap, nil
}

// DeleteBattle 删除已结束的战斗；并发删除同一场战斗只有一个成功，其余得到 not found
func (r *BattleRegistry) DeleteBattle(ctx context.Context, battleID string) error {
	r.mu.Lock()
	battle := r.battles[battleID]
	if battle == nil {
		r.mu.Unlock()
		return xerrors.NewBattleNotFoundError(battleID)
	}
	if battle.State != BattleCompleted {
		r.mu.Unlock()
		return xerrors.NewBattleNotCompletedError(battleID, string(battle.State))
	}
	r.removeLocked(battle)
	r.mu.Unlock()

	r.afterRemove(ctx, battleID, ReasonDeleted)
	return nil
}

// EvictBattle 运维/清理路径：不论状态直接移除
func (r *BattleRegistry) EvictBattle(ctx context.Context, battleID, reason string) error {
	r.mu.Lock()
	battle := r.battles[battleID]
	if battle == nil {
		r.mu.Unlock()
		return xerrors.NewBattleNotFoundError(battleID)
	}
	state := battle.State
	r.removeLocked(battle)
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "战斗已被移除",
		log.String("battle_id", battleID),
		log.String("state", string(state)),
		log.String("reason", reason),
	)
	r.afterRemove(ctx, battleID, reason)
	return nil
}

func (r *BattleRegistry) removeLocked(b *Battle) {
	for _, robot := range b.Robots {
		r.movement.Stop(robot.ID)
		delete(r.robots, robot.ID)
	}
	delete(r.names, b.Name)
	delete(r.battles, b.ID)
}

func (r *BattleRegistry) afterRemove(ctx context.Context, battleID, reason string) {
	r.metrics.RecordBattleEvicted(reason)
	r.notify(ctx, BattleEvent{
		Type:       EventBattleDeleted,
		BattleID:   battleID,
		Reason:     reason,
		OccurredAt: r.clock(),
	})
}

// ==================== 动作 ====================

// MoveRobot 下达移动指令；正在移动的机器人会被新指令取代
func (r *BattleRegistry) MoveRobot(ctx context.Context, req MoveRequest) (*RobotSnapshot, error) {
	if !req.Direction.Valid() {
		return nil, xerrors.NewValidationError("direction", "无效的方向")
	}
	if req.Blocks < 1 || req.Blocks > r.settings.MaxMoveBlocks {
		return nil, xerrors.NewValidationError("blocks", "移动格数超出范围").
			WithMetadata("min", 1).WithMetadata("max", r.settings.MaxMoveBlocks)
	}

	r.mu.Lock()
	battle, robot, err := r.actorLocked(req.BattleID, req.RobotID, "move")
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	seq := r.movement.Begin(robot, req.Direction, req.Blocks)
	if !r.movement.Start(robot.ID, seq, battle.MovementTime) {
		halt(robot) // 注册表已关闭
	}
	battle.version++
	robotSnap := robot.snapshot()
	battleSnap := battle.snapshot()
	r.mu.Unlock()

	r.metrics.RecordMove()
	r.publishUpdated(ctx, battleSnap)
	return &robotSnap, nil
}

// advanceRobot 由移动任务每个 tick 调用
func (r *BattleRegistry) advanceRobot(robotID string, seq uint64) bool {
	r.mu.Lock()
	robot := r.robots[robotID]
	if robot == nil || robot.moveSeq != seq || robot.Status != RobotMoving {
		r.mu.Unlock()
		return false
	}
	battle := r.battles[robot.BattleID]
	if battle == nil {
		r.mu.Unlock()
		return false
	}

	outcome := r.movement.Step(battle, robot)
	var done *completion
	if outcome == StepCrashed {
		done = r.crashLocked(battle, robot)
	}
	battle.version++
	snap := battle.snapshot()
	r.mu.Unlock()

	ctx := context.Background()
	if outcome == StepCrashed {
		r.logger.InfoContext(ctx, "机器人撞墙坠毁", log.String("battle_id", battle.ID), log.String("robot_id", robotID))
	}
	r.afterCompletion(ctx, done)
	r.publishUpdated(ctx, snap)
	return outcome == StepAdvanced
}

// RadarScan 雷达扫描，只读
func (r *BattleRegistry) RadarScan(ctx context.Context, battleID, robotID string, scanRange int) (*RadarResult, error) {
	if scanRange < 1 {
		return nil, xerrors.NewValidationError("range", "雷达范围必须为正数")
	}

	r.mu.RLock()
	battle, robot, err := r.actorLocked(battleID, robotID, "radar")
	if err != nil {
		r.mu.RUnlock()
		return nil, err
	}
	result := r.radar.Scan(battle, robot, scanRange)
	r.mu.RUnlock()

	r.metrics.RecordRadarScan()
	return &result, nil
}

// FireLaser 激光射击；伤害结算与战斗结束判定在同一临界区内完成
func (r *BattleRegistry) FireLaser(ctx context.Context, req LaserRequest) (*LaserResult, error) {
	if !req.Direction.Valid() {
		return nil, xerrors.NewValidationError("direction", "无效的方向")
	}
	laserRange := req.Range
	if laserRange == 0 {
		laserRange = r.settings.LaserDefaultRange
	}
	if laserRange < 1 || laserRange > r.settings.LaserMaxRange {
		return nil, xerrors.NewValidationError("range", "激光射程超出范围").
			WithMetadata("min", 1).WithMetadata("max", r.settings.LaserMaxRange)
	}

	r.mu.Lock()
	battle, robot, err := r.actorLocked(req.BattleID, req.RobotID, "laser")
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	result := r.laser.Fire(battle, robot, req.Direction, laserRange)

	var (
		done *completion
		snap *BattleSnapshot
	)
	if target := result.target; target != nil {
		if !target.IsActive() {
			r.movement.Stop(target.ID)
		}
		done = r.checkCompletionLocked(battle)
		battle.version++
		snap = battle.snapshot()
	}
	r.mu.Unlock()

	outcome := string(result.BlockedBy)
	if outcome == "" {
		outcome = "RANGE"
	}
	r.metrics.RecordLaser(outcome)
	if result.Hit {
		r.logger.InfoContext(ctx, "激光命中",
			log.String("battle_id", req.BattleID),
			log.String("shooter_id", req.RobotID),
			log.String("target_id", result.HitRobotID),
			log.Int("damage", result.DamageDealt),
		)
	}
	r.afterCompletion(ctx, done)
	if snap != nil {
		r.publishUpdated(ctx, snap)
	}
	return &result, nil
}

// CrashRobot 显式坠毁：生命值归零，状态 CRASHED，并触发结束判定
func (r *BattleRegistry) CrashRobot(ctx context.Context, battleID, robotID string) (*RobotSnapshot, error) {
	r.mu.Lock()
	battle, robot, err := r.actorLocked(battleID, robotID, "crash")
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	done := r.crashLocked(battle, robot)
	battle.version++
	robotSnap := robot.snapshot()
	battleSnap := battle.snapshot()
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "机器人坠毁", log.String("battle_id", battleID), log.String("robot_id", robotID))
	r.afterCompletion(ctx, done)
	r.publishUpdated(ctx, battleSnap)
	return &robotSnap, nil
}

func (r *BattleRegistry) crashLocked(b *Battle, robot *Robot) *completion {
	r.movement.Stop(robot.ID)
	robot.HitPoints = 0
	robot.Status = RobotCrashed
	robot.BlocksRemaining = 0
	return r.checkCompletionLocked(b)
}

// DeclareWinner 显式宣布胜者，IN_PROGRESS → COMPLETED
func (r *BattleRegistry) DeclareWinner(ctx context.Context, battleID, robotID string) (*BattleSnapshot, error) {
	r.mu.Lock()
	battle, robot, err := r.actorLocked(battleID, robotID, "declare_winner")
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	done := r.completeLocked(battle, robot, ResultDeclared)
	snap := battle.snapshot()
	r.mu.Unlock()

	r.afterCompletion(ctx, done)
	r.publishUpdated(ctx, snap)
	return snap, nil
}

// checkCompletionLocked 存活机器人不超过一个时结束战斗
func (r *BattleRegistry) checkCompletionLocked(b *Battle) *completion {
	if b.State != BattleInProgress {
		return nil
	}
	active := b.ActiveRobots()
	switch len(active) {
	case 0:
		return r.completeLocked(b, nil, ResultNoWinner)
	case 1:
		return r.completeLocked(b, active[0], ResultWinner)
	default:
		return nil
	}
}

func (r *BattleRegistry) completeLocked(b *Battle, winner *Robot, result string) *completion {
	b.State = BattleCompleted
	b.CompletedAt = r.clock()
	if winner != nil {
		b.WinnerID = winner.ID
	}
	for _, robot := range b.Robots {
		r.movement.Stop(robot.ID)
		halt(robot)
	}
	b.version++

	report := &interfaces.BattleReport{
		BattleID:     b.ID,
		Name:         b.Name,
		ArenaWidth:   b.Width,
		ArenaHeight:  b.Height,
		ResultStatus: result,
		RobotCount:   len(b.Robots),
		CompletedAt:  b.CompletedAt,
	}
	if winner != nil {
		report.WinnerID = null.StringFrom(winner.ID)
		report.WinnerName = null.StringFrom(winner.Name)
	}
	if !b.StartedAt.IsZero() {
		report.StartedAt = null.TimeFrom(b.StartedAt)
	}
	participants := make([]RobotSnapshot, 0, len(b.Robots))
	for _, robot := range b.Robots {
		participants = append(participants, robot.snapshot())
	}
	if raw, err := json.Marshal(participants); err == nil {
		report.Participants = raw
	}
	return &completion{report: report, duration: b.CompletedAt.Sub(b.StartedAt)}
}

// afterCompletion 指标与异步归档
func (r *BattleRegistry) afterCompletion(ctx context.Context, done *completion) {
	if done == nil {
		return
	}
	report := done.report
	r.logger.InfoContext(ctx, "战斗结束",
		log.String("battle_id", report.BattleID),
		log.String("result", report.ResultStatus),
		log.String("winner", report.WinnerName.String),
	)
	r.metrics.RecordBattleCompleted(report.ResultStatus, done.duration)

	if r.reports == nil {
		return
	}
	r.archiveWG.Add(1)
	go func() {
		defer r.archiveWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := r.reports.Create(ctx, report)
		r.metrics.RecordDependency("postgres", "INSERT", err)
		if err != nil {
			r.logger.Error("战斗归档失败", err, log.String("battle_id", report.BattleID))
		}
	}()
}

// actorLocked 动作前置校验：战斗存在且进行中，机器人属于该战斗且仍可行动
func (r *BattleRegistry) actorLocked(battleID, robotID, action string) (*Battle, *Robot, error) {
	battle, robot, err := r.robotLocked(battleID, robotID)
	if err != nil {
		return nil, nil, err
	}
	if battle.State != BattleInProgress {
		return nil, nil, xerrors.NewBattleStateError(battleID, string(battle.State), action)
	}
	if !robot.IsActive() {
		return nil, nil, xerrors.NewRobotInactiveError(robotID, string(robot.Status))
	}
	return battle, robot, nil
}

func (r *BattleRegistry) robotLocked(battleID, robotID string) (*Battle, *Robot, error) {
	battle := r.battles[battleID]
	if battle == nil {
		return nil, nil, xerrors.NewBattleNotFoundError(battleID)
	}
	robot := r.robots[robotID]
	if robot == nil {
		return nil, nil, xerrors.NewRobotNotFoundError(robotID)
	}
	if robot.BattleID != battleID {
		return nil, nil, xerrors.NewRobotNotInBattleError(battleID, robotID)
	}
	return battle, robot, nil
}

// ==================== 查询 ====================

// GetBattle 战斗快照
func (r *BattleRegistry) GetBattle(battleID string) (*BattleSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	battle := r.battles[battleID]
	if battle == nil {
		return nil, xerrors.NewBattleNotFoundError(battleID)
	}
	return battle.snapshot(), nil
}

// GetBattleForRobot 校验机器人属于该战斗，仍返回完整战斗
func (r *BattleRegistry) GetBattleForRobot(battleID, robotID string) (*BattleSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	battle, _, err := r.robotLocked(battleID, robotID)
	if err != nil {
		return nil, err
	}
	return battle.snapshot(), nil
}

// GetRobot 机器人完整快照（含坐标）
func (r *BattleRegistry) GetRobot(battleID, robotID string) (*RobotSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, robot, err := r.robotLocked(battleID, robotID)
	if err != nil {
		return nil, err
	}
	snap := robot.snapshot()
	return &snap, nil
}

// GetRobotStatus 机器人状态，不暴露坐标
func (r *BattleRegistry) GetRobotStatus(battleID, robotID string) (*RobotStatusSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	battle, robot, err := r.robotLocked(battleID, robotID)
	if err != nil {
		return nil, err
	}
	status := battle.statusOf(robot)
	return &status, nil
}

// ListBattles 按创建时间排序的战斗列表
func (r *BattleRegistry) ListBattles() []BattleSummary {
	r.mu.RLock()
	list := make([]BattleSummary, 0, len(r.battles))
	for _, b := range r.battles {
		list = append(list, BattleSummary{
			ID:           b.ID,
			Name:         b.Name,
			State:        b.State,
			ArenaWidth:   b.Width,
			ArenaHeight:  b.Height,
			RobotCount:   len(b.Robots),
			ActiveRobots: len(b.ActiveRobots()),
			WinnerID:     b.WinnerID,
			CreatedAt:    b.CreatedAt,
		})
	}
	r.mu.RUnlock()

	slices.SortFunc(list, func(a, b BattleSummary) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return list
}

// StaleBattles 违反存活策略的战斗
func (r *BattleRegistry) StaleBattles(now time.Time) []StaleBattle {
	s := r.settings
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []StaleBattle
	for _, b := range r.battles {
		reason := ""
		switch {
		case b.State == BattleWaiting && s.WaitingTimeout > 0 && now.Sub(b.CreatedAt) > s.WaitingTimeout:
			reason = ReasonWaitingTimeout
		case b.State == BattleInProgress && s.MaxBattleDuration > 0 && now.Sub(b.StartedAt) > s.MaxBattleDuration:
			reason = ReasonMaxDuration
		case b.State == BattleCompleted && s.CompletedRetention > 0 && now.Sub(b.CompletedAt) > s.CompletedRetention:
			reason = ReasonRetention
		}
		if reason != "" {
			stale = append(stale, StaleBattle{ID: b.ID, Name: b.Name, State: b.State, Reason: reason})
		}
	}
	return stale
}

// ActiveMovements 正在推进的移动任务数
func (r *BattleRegistry) ActiveMovements() int {
	return r.movement.Active()
}

// Shutdown 停止全部移动任务并等待归档写入完成
func (r *BattleRegistry) Shutdown(ctx context.Context) error {
	r.movement.StopAll()

	done := make(chan struct{})
	go func() {
		r.archiveWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ==================== 推送 ====================

func (r *BattleRegistry) publishUpdated(ctx context.Context, snap *BattleSnapshot) {
	r.notify(ctx, BattleEvent{
		Type:       EventBattleUpdated,
		BattleID:   snap.ID,
		Battle:     snap,
		OccurredAt: r.clock(),
	})
}

func (r *BattleRegistry) notify(ctx context.Context, event BattleEvent) {
	if r.observer == nil {
		return
	}
	r.observer.OnBattleEvent(context.WithoutCancel(ctx), event)
}
