package impl

import (
	"context"
	"database/sql"
	"fmt"

	"robot-arena/internal/repository/interfaces"
)

// BattleReportSchema 归档表结构，启动时执行（幂等）
const BattleReportSchema = `
	CREATE SCHEMA IF NOT EXISTS arena;
	CREATE TABLE IF NOT EXISTS arena.battle_reports (
		battle_id     UUID PRIMARY KEY,
		name          TEXT        NOT NULL,
		arena_width   INTEGER     NOT NULL,
		arena_height  INTEGER     NOT NULL,
		result_status TEXT        NOT NULL,
		winner_id     UUID,
		winner_name   TEXT,
		robot_count   INTEGER     NOT NULL,
		participants  JSONB,
		started_at    TIMESTAMPTZ,
		completed_at  TIMESTAMPTZ NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_battle_reports_completed_at
		ON arena.battle_reports (completed_at DESC);
`

type battleReportRepositoryImpl struct {
	db *sql.DB
}

// NewBattleReportRepository 创建 BattleReport 仓储实例。
func NewBattleReportRepository(db *sql.DB) interfaces.BattleReportRepository {
	return &battleReportRepositoryImpl{db: db}
}

// EnsureBattleReportSchema 创建归档表
func EnsureBattleReportSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, BattleReportSchema); err != nil {
		return fmt.Errorf("创建战斗归档表失败: %w", err)
	}
	return nil
}

func (r *battleReportRepositoryImpl) Create(ctx context.Context, report *interfaces.BattleReport) error {
	if report == nil {
		return fmt.Errorf("battle report is nil")
	}

	query := `
		INSERT INTO arena.battle_reports (
			battle_id, name, arena_width, arena_height, result_status,
			winner_id, winner_name, robot_count, participants, started_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (battle_id) DO UPDATE SET
			result_status = EXCLUDED.result_status,
			winner_id     = EXCLUDED.winner_id,
			winner_name   = EXCLUDED.winner_name,
			robot_count   = EXCLUDED.robot_count,
			participants  = EXCLUDED.participants,
			completed_at  = EXCLUDED.completed_at
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		report.BattleID,
		report.Name,
		report.ArenaWidth,
		report.ArenaHeight,
		report.ResultStatus,
		report.WinnerID,
		report.WinnerName,
		report.RobotCount,
		nullJSON(report.Participants),
		report.StartedAt,
		report.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("插入战斗归档记录失败: %w", err)
	}
	return nil
}

func (r *battleReportRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*interfaces.BattleReport, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT battle_id, name, arena_width, arena_height, result_status,
		       winner_id, winner_name, robot_count, participants, started_at, completed_at
		FROM arena.battle_reports
		ORDER BY completed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询战斗归档失败: %w", err)
	}
	defer rows.Close()

	reports := make([]*interfaces.BattleReport, 0, limit)
	for rows.Next() {
		var (
			report       interfaces.BattleReport
			participants []byte
		)
		if err := rows.Scan(
			&report.BattleID,
			&report.Name,
			&report.ArenaWidth,
			&report.ArenaHeight,
			&report.ResultStatus,
			&report.WinnerID,
			&report.WinnerName,
			&report.RobotCount,
			&participants,
			&report.StartedAt,
			&report.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("解析战斗归档失败: %w", err)
		}
		report.Participants = participants
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历战斗归档失败: %w", err)
	}
	return reports, nil
}

func nullJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
