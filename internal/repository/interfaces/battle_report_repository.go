package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aarondl/null/v8"
)

// BattleReport 一场已结束战斗的归档记录。
type BattleReport struct {
	BattleID     string          `json:"battleId"`
	Name         string          `json:"name"`
	ArenaWidth   int             `json:"arenaWidth"`
	ArenaHeight  int             `json:"arenaHeight"`
	ResultStatus string          `json:"resultStatus"` // winner / no_winner / declared
	WinnerID     null.String     `json:"winnerId"`
	WinnerName   null.String     `json:"winnerName"`
	RobotCount   int             `json:"robotCount"`
	Participants json.RawMessage `json:"participants,omitempty"` // 结束时各机器人的最终状态
	StartedAt    null.Time       `json:"startedAt"`
	CompletedAt  time.Time       `json:"completedAt"`
}

// BattleReportRepository 负责战斗归档的持久化。
type BattleReportRepository interface {
	Create(ctx context.Context, report *BattleReport) error
	ListRecent(ctx context.Context, limit int) ([]*BattleReport, error)
}
