package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix 战斗事件主题前缀，完整主题为 arena.battle.<battle_id>
const SubjectPrefix = "arena.battle"

// BattleSubject 返回某场战斗的事件主题
func BattleSubject(battleID string) string {
	return SubjectPrefix + "." + battleID
}

// AllBattlesSubject 订阅全部战斗事件的通配主题
const AllBattlesSubject = SubjectPrefix + ".>"

// operationRecorder 记录依赖调用结果
type operationRecorder interface {
	RecordDependency(dependency, operation string, err error)
}

// Publisher 把事件以 JSON 发布到 NATS
type Publisher struct {
	conn     *nats.Conn
	recorder operationRecorder
}

// NewPublisher conn 为 nil 时 Publish 静默降级
func NewPublisher(conn *nats.Conn, recorder operationRecorder) *Publisher {
	return &Publisher{conn: conn, recorder: recorder}
}

// Publish 发布事件
func (p *Publisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	if p == nil || p.conn == nil {
		return nil // 没有连接时静默降级
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}
	err = p.conn.Publish(subject, data)
	if p.recorder != nil {
		p.recorder.RecordDependency("nats", "PUBLISH", err)
	}
	return err
}
