package nats

import (
	"context"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"robot-arena/internal/pkg/log"
)

// Status 最近一次检查得到的 NATS 连接状态
type Status struct {
	Healthy bool      `json:"healthy"`
	State   string    `json:"state"`
	Since   time.Time `json:"since"` // 进入当前健康状态的时间
}

// HealthChecker 周期性检查事件总线连接
// 状态变化时记日志；/health 只读取缓存结果，不在请求路径上探测
type HealthChecker struct {
	conn     *nats.Conn
	interval time.Duration
	logger   log.Logger
	now      func() time.Time

	mu     sync.RWMutex
	status Status
}

// NewHealthChecker 创建检查器并立即检查一次
func NewHealthChecker(conn *nats.Conn, interval time.Duration, logger log.Logger) *HealthChecker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	hc := &HealthChecker{
		conn:     conn,
		interval: interval,
		logger:   logger.With("component", "nats_health"),
		now:      time.Now,
	}
	hc.status = Status{Healthy: hc.probe(), State: hc.state(), Since: hc.now()}
	return hc
}

// Start 按间隔检查，ctx 取消后退出
func (hc *HealthChecker) Start(ctx context.Context) {
	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hc.check()
		}
	}
}

// IsHealthy 连接可用于发布战斗事件
func (hc *HealthChecker) IsHealthy() bool {
	return hc.Status().Healthy
}

// Status 返回最近一次检查结果
func (hc *HealthChecker) Status() Status {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.status
}

func (hc *HealthChecker) probe() bool {
	return hc.conn != nil && hc.conn.IsConnected() && !hc.conn.IsClosed()
}

func (hc *HealthChecker) state() string {
	if hc.conn == nil {
		return "NOT_CONFIGURED"
	}
	return hc.conn.Status().String()
}

func (hc *HealthChecker) check() {
	healthy, state := hc.probe(), hc.state()

	hc.mu.Lock()
	prev := hc.status
	next := Status{Healthy: healthy, State: state, Since: prev.Since}
	if healthy != prev.Healthy {
		next.Since = hc.now()
	}
	hc.status = next
	hc.mu.Unlock()

	switch {
	case prev.Healthy && !healthy:
		hc.logger.Warn("NATS 连接不可用，战斗事件暂停发布", "state", state)
	case !prev.Healthy && healthy:
		hc.logger.Info("NATS 连接已恢复", "state", state, "down_for", next.Since.Sub(prev.Since).String())
	}
}
