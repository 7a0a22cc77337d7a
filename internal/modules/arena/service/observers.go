package service

import (
	"context"
	"encoding/json"
	"time"

	"robot-arena/internal/pkg/log"
	"robot-arena/internal/pkg/notify"
)

// BattleEventType 推送事件类型
type BattleEventType string

const (
	EventBattleUpdated BattleEventType = "battle.updated"
	EventBattleDeleted BattleEventType = "battle.deleted"
)

// BattleEvent 状态变更后推送给观察者的事件
type BattleEvent struct {
	Type       BattleEventType `json:"type"`
	BattleID   string          `json:"battleId"`
	Battle     *BattleSnapshot `json:"battle,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// BattleObserver 在锁外被同步调用，实现方自行处理失败
type BattleObserver interface {
	OnBattleEvent(ctx context.Context, event BattleEvent)
}

// ObserverFunc 函数适配器
type ObserverFunc func(ctx context.Context, event BattleEvent)

// OnBattleEvent 实现 BattleObserver
func (f ObserverFunc) OnBattleEvent(ctx context.Context, event BattleEvent) {
	f(ctx, event)
}

// MultiObserver 依次分发给多个观察者
type MultiObserver []BattleObserver

// OnBattleEvent 实现 BattleObserver
func (m MultiObserver) OnBattleEvent(ctx context.Context, event BattleEvent) {
	for _, o := range m {
		if o != nil {
			o.OnBattleEvent(ctx, event)
		}
	}
}

// ==================== websocket 观战 ====================

// broadcaster 由 wshub.Hub 实现
type broadcaster interface {
	Broadcast(topic string, message []byte)
	CloseTopic(topic string, final []byte)
}

// HubObserver 把事件推送给观战连接，战斗删除后关闭连接
type HubObserver struct {
	hub    broadcaster
	logger log.Logger
}

// NewHubObserver 创建 websocket 推送观察者
func NewHubObserver(hub broadcaster, logger log.Logger) *HubObserver {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &HubObserver{hub: hub, logger: logger.With("component", "hub_observer")}
}

// OnBattleEvent 实现 BattleObserver
func (o *HubObserver) OnBattleEvent(ctx context.Context, event BattleEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		o.logger.ErrorContext(ctx, "序列化战斗事件失败", log.Any("error", err))
		return
	}
	if event.Type == EventBattleDeleted {
		o.hub.CloseTopic(event.BattleID, data)
		return
	}
	o.hub.Broadcast(event.BattleID, data)
}

// ==================== NATS 事件总线 ====================

// eventPublisher 由 notify.Publisher 实现
type eventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

// EventPublisherObserver 把事件发布到 arena.battle.<id>
type EventPublisherObserver struct {
	publisher eventPublisher
	logger    log.Logger
}

// NewEventPublisherObserver 创建 NATS 发布观察者
func NewEventPublisherObserver(publisher eventPublisher, logger log.Logger) *EventPublisherObserver {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &EventPublisherObserver{publisher: publisher, logger: logger.With("component", "event_publisher")}
}

// OnBattleEvent 实现 BattleObserver
func (o *EventPublisherObserver) OnBattleEvent(ctx context.Context, event BattleEvent) {
	subject := notify.BattleSubject(event.BattleID)
	if err := o.publisher.Publish(ctx, subject, event); err != nil {
		o.logger.WarnContext(ctx, "发布战斗事件失败",
			log.String("subject", subject),
			log.Any("error", err),
		)
	}
}

// ==================== Redis 快照缓存 ====================

// SnapshotKeyPrefix 快照缓存键前缀
const SnapshotKeyPrefix = "arena:battle:"

// SnapshotKey 返回某场战斗的快照缓存键
func SnapshotKey(battleID string) string {
	return SnapshotKeyPrefix + battleID
}

// snapshotStore 由 redis.Client 实现
type snapshotStore interface {
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteKey(ctx context.Context, keys ...string) error
}

// SnapshotCacheObserver 把最新战斗快照写入 Redis，供其他实例/外部工具读取
type SnapshotCacheObserver struct {
	store  snapshotStore
	ttl    time.Duration
	logger log.Logger
}

// NewSnapshotCacheObserver 创建快照缓存观察者
func NewSnapshotCacheObserver(store snapshotStore, ttl time.Duration, logger log.Logger) *SnapshotCacheObserver {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &SnapshotCacheObserver{store: store, ttl: ttl, logger: logger.With("component", "snapshot_cache")}
}

// OnBattleEvent 实现 BattleObserver
func (o *SnapshotCacheObserver) OnBattleEvent(ctx context.Context, event BattleEvent) {
	key := SnapshotKey(event.BattleID)

	if event.Type == EventBattleDeleted || event.Battle == nil {
		if err := o.store.DeleteKey(ctx, key); err != nil {
			o.logger.WarnContext(ctx, "删除战斗快照缓存失败", log.String("key", key), log.Any("error", err))
		}
		return
	}

	data, err := json.Marshal(event.Battle)
	if err != nil {
		o.logger.ErrorContext(ctx, "序列化战斗快照失败", log.Any("error", err))
		return
	}
	if err := o.store.SetWithTTL(ctx, key, data, o.ttl); err != nil {
		o.logger.WarnContext(ctx, "写入战斗快照缓存失败", log.String("key", key), log.Any("error", err))
	}
}
