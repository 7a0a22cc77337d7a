package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"robot-arena/internal/pkg/config"
)

// Settings 竞技场运行参数
type Settings struct {
	DefaultWidth  int
	DefaultHeight int
	MinArenaSize  int
	MaxArenaSize  int

	DefaultMovementTime time.Duration
	MinMovementTime     time.Duration
	MaxMovementTime     time.Duration
	MaxMoveBlocks       int

	MaxHitPoints int

	LaserDamage       int
	LaserDefaultRange int
	LaserMaxRange     int
	RadarMaxRange     int

	WallCoveragePercent  int
	WallMinBudget        int
	WallMaxAttempts      int
	WallPlacementRetries int
	SpawnAttempts        int
	EmptyArenaMarker     string
	CrashOnWallCollision bool

	CleanupSchedule    string
	WaitingTimeout     time.Duration
	MaxBattleDuration  time.Duration
	CompletedRetention time.Duration // 0 表示已结束的战斗只能手动删除
	SnapshotTTL        time.Duration

	RandomSeed int64 // 0 表示按时间取种子
}

// ScheduleParser 与 cron.WithSeconds() 一致：6 段表达式或 @every 描述符
var ScheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// DefaultSettings 默认参数
func DefaultSettings() Settings {
	return Settings{
		DefaultWidth:  20,
		DefaultHeight: 20,
		MinArenaSize:  10,
		MaxArenaSize:  1000,

		DefaultMovementTime: time.Second,
		MinMovementTime:     100 * time.Millisecond,
		MaxMovementTime:     10 * time.Second,
		MaxMoveBlocks:       10,

		MaxHitPoints: 100,

		LaserDamage:       20,
		LaserDefaultRange: 10,
		LaserMaxRange:     20,
		RadarMaxRange:     20,

		WallCoveragePercent:  10,
		WallMinBudget:        10,
		WallMaxAttempts:      50,
		WallPlacementRetries: 20,
		SpawnAttempts:        100,
		EmptyArenaMarker:     "empty",

		CleanupSchedule:   "@every 30s",
		WaitingTimeout:    10 * time.Minute,
		MaxBattleDuration: 30 * time.Minute,
		SnapshotTTL:       10 * time.Minute,
	}
}

// LoadSettings 在默认值之上叠加 ARENA_* 环境变量
func LoadSettings() Settings {
	s := DefaultSettings()

	s.DefaultWidth = config.GetEnvInt("ARENA_DEFAULT_WIDTH", s.DefaultWidth)
	s.DefaultHeight = config.GetEnvInt("ARENA_DEFAULT_HEIGHT", s.DefaultHeight)
	s.DefaultMovementTime = config.GetEnvDuration("ARENA_DEFAULT_MOVEMENT_SECONDS", s.DefaultMovementTime)
	s.MaxHitPoints = config.GetEnvInt("ARENA_ROBOT_MAX_HP", s.MaxHitPoints)

	s.LaserDamage = config.GetEnvInt("ARENA_LASER_DAMAGE", s.LaserDamage)
	s.LaserDefaultRange = config.GetEnvInt("ARENA_LASER_DEFAULT_RANGE", s.LaserDefaultRange)
	s.LaserMaxRange = config.GetEnvInt("ARENA_LASER_MAX_RANGE", s.LaserMaxRange)
	s.RadarMaxRange = config.GetEnvInt("ARENA_RADAR_MAX_RANGE", s.RadarMaxRange)

	s.WallCoveragePercent = config.GetEnvInt("ARENA_WALL_COVERAGE_PERCENT", s.WallCoveragePercent)
	s.EmptyArenaMarker = config.GetEnvOrDefault("ARENA_EMPTY_MARKER", s.EmptyArenaMarker)
	s.CrashOnWallCollision = config.GetEnvBool("ARENA_CRASH_ON_WALL", s.CrashOnWallCollision)

	s.CleanupSchedule = config.GetEnvOrDefault("ARENA_CLEANUP_SCHEDULE", s.CleanupSchedule)
	s.WaitingTimeout = config.GetEnvDuration("ARENA_WAITING_TIMEOUT", s.WaitingTimeout)
	s.MaxBattleDuration = config.GetEnvDuration("ARENA_MAX_BATTLE_DURATION", s.MaxBattleDuration)
	s.CompletedRetention = config.GetEnvDuration("ARENA_COMPLETED_RETENTION", s.CompletedRetention)
	s.SnapshotTTL = config.GetEnvDuration("ARENA_SNAPSHOT_TTL", s.SnapshotTTL)
	s.RandomSeed = config.GetEnvInt64("ARENA_RANDOM_SEED", s.RandomSeed)

	return s
}

// Validate 启动时检查参数组合，错误的配置直接拒绝启动
func (s Settings) Validate() error {
	if s.MinArenaSize < 1 || s.MinArenaSize > s.MaxArenaSize {
		return fmt.Errorf("arena size bounds invalid: [%d,%d]", s.MinArenaSize, s.MaxArenaSize)
	}
	if s.DefaultWidth < s.MinArenaSize || s.DefaultWidth > s.MaxArenaSize ||
		s.DefaultHeight < s.MinArenaSize || s.DefaultHeight > s.MaxArenaSize {
		return fmt.Errorf("default arena %dx%d outside [%d,%d]", s.DefaultWidth, s.DefaultHeight, s.MinArenaSize, s.MaxArenaSize)
	}
	if s.DefaultMovementTime < s.MinMovementTime || s.DefaultMovementTime > s.MaxMovementTime {
		return fmt.Errorf("default movement time %s outside [%s,%s]", s.DefaultMovementTime, s.MinMovementTime, s.MaxMovementTime)
	}
	if s.MaxHitPoints <= 0 || s.LaserDamage <= 0 {
		return fmt.Errorf("hit points (%d) and laser damage (%d) must be positive", s.MaxHitPoints, s.LaserDamage)
	}
	if s.LaserDefaultRange < 1 || s.LaserDefaultRange > s.LaserMaxRange {
		return fmt.Errorf("laser default range %d outside [1,%d]", s.LaserDefaultRange, s.LaserMaxRange)
	}
	if s.RadarMaxRange < 1 {
		return fmt.Errorf("radar max range must be positive, got %d", s.RadarMaxRange)
	}
	if s.WallCoveragePercent < 0 || s.WallCoveragePercent > 100 {
		return fmt.Errorf("wall coverage percent %d outside [0,100]", s.WallCoveragePercent)
	}
	if _, err := ScheduleParser.Parse(s.CleanupSchedule); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.CleanupSchedule, err)
	}
	return nil
}

// LogFields 启动日志中输出的关键参数
func (s Settings) LogFields() map[string]any {
	return map[string]any{
		"default_arena":       fmt.Sprintf("%dx%d", s.DefaultWidth, s.DefaultHeight),
		"movement_time":       s.DefaultMovementTime.String(),
		"wall_coverage":       s.WallCoveragePercent,
		"crash_on_wall":       s.CrashOnWallCollision,
		"cleanup_schedule":    s.CleanupSchedule,
		"waiting_timeout":     s.WaitingTimeout.String(),
		"max_battle_duration": s.MaxBattleDuration.String(),
		"completed_retention": s.CompletedRetention.String(),
		"random_seed":         s.RandomSeed,
	}
}
