// File: internal/pkg/metrics/arena_metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ArenaMetrics 竞技场业务指标收集器
type ArenaMetrics struct {
	// 创建的战斗数
	BattlesCreated prometheus.Counter

	// 结束的战斗数（result: winner/no_winner/declared）
	BattlesCompleted *prometheus.CounterVec

	// 从内存移除的战斗数（reason: deleted/waiting_timeout/max_duration/retention/forced）
	BattlesEvicted *prometheus.CounterVec

	// 当前内存中的战斗数
	ActiveBattles prometheus.Gauge

	// 从开始到结束的战斗时长
	BattleDuration prometheus.Histogram

	// 注册的机器人数
	RobotsRegistered prometheus.Counter

	// 动作计数
	Moves        prometheus.Counter
	RadarScans   prometheus.Counter
	LasersFired  *prometheus.CounterVec // outcome: ROBOT/WALL/BOUNDARY/RANGE
	WallFallback prometheus.Counter

	// 外部依赖操作（redis/nats/postgres）
	DependencyOperations *prometheus.CounterVec
}

// BattleBuckets 战斗时长分布，单位：秒
// 机器人对战预期 1-15 分钟
var BattleBuckets = []float64{
	30,   // 30s
	60,   // 1分钟
	120,  // 2分钟
	300,  // 5分钟
	600,  // 10分钟
	900,  // 15分钟
	1800, // 30分钟
}

// NewArenaMetrics 创建新的竞技场指标收集器（使用默认注册表）
func NewArenaMetrics(namespace string) *ArenaMetrics {
	return NewArenaMetricsWithRegistry(namespace, GetRegisterer())
}

// NewArenaMetricsWithRegistry 创建新的竞技场指标收集器（使用自定义注册表）
func NewArenaMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *ArenaMetrics {
	factory := promauto.With(registerer)
	constLabels := ConstLabels()

	return &ArenaMetrics{
		BattlesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "arena",
			Name:        "battles_created_total",
			Help:        "Total number of battles created",
			ConstLabels: constLabels,
		}),
		BattlesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "arena",
			Name:        "battles_completed_total",
			Help:        "Total number of battles that reached COMPLETED by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
		BattlesEvicted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "arena",
			Name:        "battles_evicted_total",
			Help:        "Total number of battles removed from the registry by reason",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		ActiveBattles: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "arena",
			Name:        "active_battles",
			Help:        "Current number of battles held in memory",
			ConstLabels: constLabels,
		}),
		BattleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "arena",
			Name:        "battle_duration_seconds",
			Help:        "Battle duration from start to completion in seconds",
			Buckets:     BattleBuckets,
			ConstLabels: constLabels,
		}),
		RobotsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "arena",
			Name:        "robots_registered_total",
			Help:        "Total number of robots registered",
			ConstLabels: constLabels,
		}),
		Moves: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "arena",
			Name:        "moves_total",
			Help:        "Total number of accepted move commands",
			ConstLabels: constLabels,
		}),
		RadarScans: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "arena",
			Name:        "radar_scans_total",
			Help:        "Total number of radar scans",
			ConstLabels: constLabels,
		}),
		LasersFired: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "arena",
			Name:        "lasers_fired_total",
			Help:        "Total number of laser shots by stop cause",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		WallFallback: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "arena",
			Name:        "wall_fallback_total",
			Help:        "Number of arenas that needed the fallback wall placement",
			ConstLabels: constLabels,
		}),
		DependencyOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "arena",
			Name:        "dependency_operations_total",
			Help:        "Calls to external dependencies by dependency, operation and result",
			ConstLabels: constLabels,
		}, []string{"dependency", "operation", "result"}),
	}
}

// RecordBattleCompleted 记录战斗结束
func (m *ArenaMetrics) RecordBattleCompleted(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.BattlesCompleted.WithLabelValues(result).Inc()
	if duration > 0 {
		m.BattleDuration.Observe(duration.Seconds())
	}
}

// RecordBattleEvicted 记录战斗从内存移除
func (m *ArenaMetrics) RecordBattleEvicted(reason string) {
	if m == nil {
		return
	}
	m.BattlesEvicted.WithLabelValues(reason).Inc()
	m.ActiveBattles.Dec()
}

// RecordBattleCreated 记录战斗创建
func (m *ArenaMetrics) RecordBattleCreated() {
	if m == nil {
		return
	}
	m.BattlesCreated.Inc()
	m.ActiveBattles.Inc()
}

// RecordRobotRegistered 记录机器人注册
func (m *ArenaMetrics) RecordRobotRegistered() {
	if m == nil {
		return
	}
	m.RobotsRegistered.Inc()
}

// RecordMove 记录一次移动指令
func (m *ArenaMetrics) RecordMove() {
	if m == nil {
		return
	}
	m.Moves.Inc()
}

// RecordRadarScan 记录一次雷达扫描
func (m *ArenaMetrics) RecordRadarScan() {
	if m == nil {
		return
	}
	m.RadarScans.Inc()
}

// RecordWallFallback 记录一次兜底障碍物
func (m *ArenaMetrics) RecordWallFallback() {
	if m == nil {
		return
	}
	m.WallFallback.Inc()
}

// RecordLaser 记录一次激光射击
func (m *ArenaMetrics) RecordLaser(outcome string) {
	if m == nil {
		return
	}
	m.LasersFired.WithLabelValues(outcome).Inc()
}

// RecordDependency 记录一次外部依赖调用
func (m *ArenaMetrics) RecordDependency(dependency, operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.DependencyOperations.WithLabelValues(dependency, operation, result).Inc()
}
