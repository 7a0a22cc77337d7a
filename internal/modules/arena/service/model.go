package service

import (
	"slices"
	"strings"
	"time"
)

// ==================== 方向 ====================

// Direction 八方向罗盘，北为 +y，东为 +x
type Direction string

const (
	North     Direction = "NORTH"
	NorthEast Direction = "NORTH_EAST"
	East      Direction = "EAST"
	SouthEast Direction = "SOUTH_EAST"
	South     Direction = "SOUTH"
	SouthWest Direction = "SOUTH_WEST"
	West      Direction = "WEST"
	NorthWest Direction = "NORTH_WEST"
)

var directionDeltas = map[Direction]Cell{
	North:     {X: 0, Y: 1},
	NorthEast: {X: 1, Y: 1},
	East:      {X: 1, Y: 0},
	SouthEast: {X: 1, Y: -1},
	South:     {X: 0, Y: -1},
	SouthWest: {X: -1, Y: -1},
	West:      {X: -1, Y: 0},
	NorthWest: {X: -1, Y: 1},
}

var directionAliases = map[string]Direction{
	"N": North, "NE": NorthEast, "E": East, "SE": SouthEast,
	"S": South, "SW": SouthWest, "W": West, "NW": NorthWest,
	"NORTHEAST": NorthEast, "SOUTHEAST": SouthEast,
	"SOUTHWEST": SouthWest, "NORTHWEST": NorthWest,
}

// ParseDirection 解析方向字符串，大小写不敏感，接受 "north-east"、"NE" 等写法
func ParseDirection(s string) (Direction, bool) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if _, ok := directionDeltas[Direction(key)]; ok {
		return Direction(key), true
	}
	d, ok := directionAliases[key]
	return d, ok
}

// IsValidDirection 供请求校验使用
func IsValidDirection(s string) bool {
	_, ok := ParseDirection(s)
	return ok
}

// Valid 是否为八方向之一
func (d Direction) Valid() bool {
	_, ok := directionDeltas[d]
	return ok
}

// Delta 单位步长向量
func (d Direction) Delta() Cell {
	return directionDeltas[d]
}

// ==================== 坐标 ====================

// Cell 竞技场网格坐标，原点 (0,0) 在西南角
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add 平移
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Manhattan 曼哈顿距离
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ==================== 状态枚举 ====================

// BattleState 战斗生命周期
type BattleState string

const (
	BattleWaiting    BattleState = "WAITING_ON_ROBOTS"
	BattleReady      BattleState = "READY"
	BattleInProgress BattleState = "IN_PROGRESS"
	BattleCompleted  BattleState = "COMPLETED"
)

// RobotStatus 机器人状态
type RobotStatus string

const (
	RobotIdle      RobotStatus = "IDLE"
	RobotMoving    RobotStatus = "MOVING"
	RobotCrashed   RobotStatus = "CRASHED"
	RobotDestroyed RobotStatus = "DESTROYED"
)

// WallType 障碍物形状
type WallType string

const (
	WallSquare WallType = "SQUARE"
	WallLong   WallType = "LONG"
	WallU      WallType = "U_SHAPE"
)

// DetectionType 雷达探测到的对象类型
type DetectionType string

const (
	DetectWall  DetectionType = "WALL"
	DetectRobot DetectionType = "ROBOT"
)

// BlockCause 激光停止的原因，空值表示射程耗尽
type BlockCause string

const (
	BlockedByRobot    BlockCause = "ROBOT"
	BlockedByWall     BlockCause = "WALL"
	BlockedByBoundary BlockCause = "BOUNDARY"
)

// ==================== 战斗与机器人 ====================
// 以下可变结构只允许在持有 BattleRegistry.mu 时读写，对外一律返回快照

// Battle 一场战斗
type Battle struct {
	ID           string
	Name         string
	Width        int
	Height       int
	MovementTime time.Duration
	State        BattleState
	Robots       []*Robot
	Walls        []*Wall
	WinnerID     string
	CreatedAt    time.Time
	StartedAt    time.Time
	CompletedAt  time.Time

	// 每次变更递增，观察者据此丢弃乱序到达的旧快照
	version   uint64
	wallIndex map[Cell]*Wall
}

// Robot 机器人
type Robot struct {
	ID              string
	Name            string
	BattleID        string
	Position        Cell
	Direction       Direction
	Status          RobotStatus
	TargetBlocks    int
	BlocksRemaining int
	HitPoints       int
	MaxHitPoints    int

	// 每次下达移动指令递增，被取代的移动任务据此放弃推进
	moveSeq uint64
}

// Wall 障碍物
type Wall struct {
	Type  WallType
	Cells []Cell
}

// IsActive 生命值大于 0 且未坠毁/被摧毁
func (r *Robot) IsActive() bool {
	return r.HitPoints > 0 && r.Status != RobotCrashed && r.Status != RobotDestroyed
}

// setWalls 替换障碍物并重建索引
func (b *Battle) setWalls(walls []*Wall) {
	b.Walls = walls
	b.wallIndex = make(map[Cell]*Wall)
	for _, w := range walls {
		for _, c := range w.Cells {
			b.wallIndex[c] = w
		}
	}
}

// InBounds 坐标是否在 [0,width)×[0,height) 内
func (b *Battle) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < b.Width && c.Y >= 0 && c.Y < b.Height
}

// IsBoundary 是否为竞技场边缘格
func (b *Battle) IsBoundary(c Cell) bool {
	return c.X == 0 || c.Y == 0 || c.X == b.Width-1 || c.Y == b.Height-1
}

// WallAt 返回覆盖该格的障碍物
func (b *Battle) WallAt(c Cell) *Wall {
	return b.wallIndex[c]
}

// RobotAt 返回占据该格的其他机器人，activeOnly 为 true 时忽略残骸
func (b *Battle) RobotAt(c Cell, excludeID string, activeOnly bool) *Robot {
	for _, r := range b.Robots {
		if r.ID == excludeID || r.Position != c {
			continue
		}
		if activeOnly && !r.IsActive() {
			continue
		}
		return r
	}
	return nil
}

// ActiveRobots 仍可行动的机器人
func (b *Battle) ActiveRobots() []*Robot {
	active := make([]*Robot, 0, len(b.Robots))
	for _, r := range b.Robots {
		if r.IsActive() {
			active = append(active, r)
		}
	}
	return active
}

// robot 按 ID 查找本场机器人
func (b *Battle) robot(id string) *Robot {
	i := slices.IndexFunc(b.Robots, func(r *Robot) bool { return r.ID == id })
	if i < 0 {
		return nil
	}
	return b.Robots[i]
}

// ==================== 快照（对外契约） ====================

// BattleSnapshot 战斗的只读视图
type BattleSnapshot struct {
	ID                       string          `json:"id"`
	Name                     string          `json:"name"`
	ArenaWidth               int             `json:"arenaWidth"`
	ArenaHeight              int             `json:"arenaHeight"`
	RobotMovementTimeSeconds float64         `json:"robotMovementTimeSeconds"`
	State                    BattleState     `json:"state"`
	Robots                   []RobotSnapshot `json:"robots"`
	Walls                    []WallSnapshot  `json:"walls"`
	WinnerID                 *string         `json:"winnerId"`
	WinnerName               *string         `json:"winnerName"`
	CreatedAt                time.Time       `json:"createdAt"`
	StartedAt                *time.Time      `json:"startedAt,omitempty"`
	CompletedAt              *time.Time      `json:"completedAt,omitempty"`
	Version                  uint64          `json:"version"`
}

// RobotSnapshot 机器人完整视图（含坐标）
type RobotSnapshot struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	BattleID        string      `json:"battleId"`
	PositionX       int         `json:"positionX"`
	PositionY       int         `json:"positionY"`
	Direction       Direction   `json:"direction"`
	Status          RobotStatus `json:"status"`
	TargetBlocks    int         `json:"targetBlocks"`
	BlocksRemaining int         `json:"blocksRemaining"`
	HitPoints       int         `json:"hitPoints"`
	MaxHitPoints    int         `json:"maxHitPoints"`
}

// RobotStatusSnapshot 机器人状态视图，不含坐标
type RobotStatusSnapshot struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	BattleID     string      `json:"battleId"`
	Status       RobotStatus `json:"status"`
	HitPoints    int         `json:"hitPoints"`
	MaxHitPoints int         `json:"maxHitPoints"`
	Active       bool        `json:"active"`
	BattleState  BattleState `json:"battleState"`
	Winner       bool        `json:"winner"`
}

// WallSnapshot 障碍物视图
type WallSnapshot struct {
	Type      WallType `json:"type"`
	Positions []Cell   `json:"positions"`
}

// Detection 雷达探测结果，坐标相对扫描者
type Detection struct {
	X       int           `json:"x"`
	Y       int           `json:"y"`
	Type    DetectionType `json:"type"`
	Details string        `json:"details"`
}

// RadarResult 一次雷达扫描
type RadarResult struct {
	Range      int         `json:"range"`
	Detections []Detection `json:"detections"`
}

// LaserResult 一次激光射击
type LaserResult struct {
	Hit          bool       `json:"hit"`
	HitRobotID   string     `json:"hitRobotId,omitempty"`
	HitRobotName string     `json:"hitRobotName,omitempty"`
	DamageDealt  int        `json:"damageDealt"`
	Range        int        `json:"range"`
	Direction    Direction  `json:"direction"`
	LaserPath    []Cell     `json:"laserPath"`
	HitPosition  *Cell      `json:"hitPosition,omitempty"`
	BlockedBy    BlockCause `json:"blockedBy,omitempty"`

	target *Robot
}

func (r *Robot) snapshot() RobotSnapshot {
	return RobotSnapshot{
		ID:              r.ID,
		Name:            r.Name,
		BattleID:        r.BattleID,
		PositionX:       r.Position.X,
		PositionY:       r.Position.Y,
		Direction:       r.Direction,
		Status:          r.Status,
		TargetBlocks:    r.TargetBlocks,
		BlocksRemaining: r.BlocksRemaining,
		HitPoints:       r.HitPoints,
		MaxHitPoints:    r.MaxHitPoints,
	}
}

func (b *Battle) snapshot() *BattleSnapshot {
	s := &BattleSnapshot{
		ID:                       b.ID,
		Name:                     b.Name,
		ArenaWidth:               b.Width,
		ArenaHeight:              b.Height,
		RobotMovementTimeSeconds: b.MovementTime.Seconds(),
		State:                    b.State,
		Robots:                   make([]RobotSnapshot, 0, len(b.Robots)),
		Walls:                    make([]WallSnapshot, 0, len(b.Walls)),
		CreatedAt:                b.CreatedAt,
		Version:                  b.version,
	}
	for _, r := range b.Robots {
		s.Robots = append(s.Robots, r.snapshot())
	}
	for _, w := range b.Walls {
		s.Walls = append(s.Walls, WallSnapshot{Type: w.Type, Positions: slices.Clone(w.Cells)})
	}
	if winner := b.robot(b.WinnerID); winner != nil {
		id, name := winner.ID, winner.Name
		s.WinnerID, s.WinnerName = &id, &name
	}
	if !b.StartedAt.IsZero() {
		t := b.StartedAt
		s.StartedAt = &t
	}
	if !b.CompletedAt.IsZero() {
		t := b.CompletedAt
		s.CompletedAt = &t
	}
	return s
}

func (b *Battle) statusOf(r *Robot) RobotStatusSnapshot {
	return RobotStatusSnapshot{
		ID:           r.ID,
		Name:         r.Name,
		BattleID:     r.BattleID,
		Status:       r.Status,
		HitPoints:    r.HitPoints,
		MaxHitPoints: r.MaxHitPoints,
		Active:       r.IsActive(),
		BattleState:  b.State,
		Winner:       b.WinnerID != "" && b.WinnerID == r.ID,
	}
}
