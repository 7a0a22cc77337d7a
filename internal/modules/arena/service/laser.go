package service

// LaserEngine 沿直线结算激光命中
type LaserEngine struct {
	damage int
}

// NewLaserEngine 创建激光引擎
func NewLaserEngine(damage int) *LaserEngine {
	return &LaserEngine{damage: damage}
}

// Fire 从射手所在格出发逐格前进，遇到边界、障碍物、其他存活机器人或射程耗尽即停止
// 命中时直接扣减目标生命值，归零则标记为 DESTROYED
func (e *LaserEngine) Fire(b *Battle, shooter *Robot, dir Direction, laserRange int) LaserResult {
	result := LaserResult{
		Direction: dir,
		Range:     laserRange,
		LaserPath: []Cell{shooter.Position},
	}

	step := dir.Delta()
	cur := shooter.Position
	for range laserRange {
		next := cur.Add(step)
		if !b.InBounds(next) {
			result.BlockedBy = BlockedByBoundary
			return result
		}
		cur = next
		result.LaserPath = append(result.LaserPath, cur)

		if b.WallAt(cur) != nil {
			result.BlockedBy = BlockedByWall
			return result
		}
		if target := b.RobotAt(cur, shooter.ID, true); target != nil {
			hitAt := cur
			result.Hit = true
			result.BlockedBy = BlockedByRobot
			result.HitRobotID = target.ID
			result.HitRobotName = target.Name
			result.HitPosition = &hitAt
			result.DamageDealt = e.applyDamage(target)
			result.target = target
			return result
		}
	}
	return result
}

// applyDamage 返回实际扣减的生命值
func (e *LaserEngine) applyDamage(target *Robot) int {
	dealt := min(e.damage, target.HitPoints)
	target.HitPoints -= dealt
	if target.HitPoints == 0 {
		target.Status = RobotDestroyed
		target.BlocksRemaining = 0
	}
	return dealt
}
