package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaserEngine_Fire(t *testing.T) {
	engine := NewLaserEngine(20)

	t.Run("向北命中 3 格外的机器人", func(t *testing.T) {
		b := newBattle(20, 20)
		a := addRobot(b, "A", 10, 10)
		target := addRobot(b, "B", 10, 13)

		result := engine.Fire(b, a, North, 10)
		assert.True(t, result.Hit)
		assert.Equal(t, "B", result.HitRobotID)
		assert.Equal(t, 20, result.DamageDealt)
		assert.Equal(t, BlockedByRobot, result.BlockedBy)
		assert.Equal(t, []Cell{{10, 10}, {10, 11}, {10, 12}, {10, 13}}, result.LaserPath)
		require.NotNil(t, result.HitPosition)
		assert.Equal(t, Cell{X: 10, Y: 13}, *result.HitPosition)
		assert.Equal(t, 80, target.HitPoints)
		assert.Equal(t, RobotIdle, target.Status)
	})

	t.Run("贴边向东射击被边界挡住", func(t *testing.T) {
		b := newBattle(20, 20)
		a := addRobot(b, "A", 19, 10)

		result := engine.Fire(b, a, East, 5)
		assert.False(t, result.Hit)
		assert.Equal(t, BlockedByBoundary, result.BlockedBy)
		assert.Equal(t, []Cell{{19, 10}}, result.LaserPath)
	})

	t.Run("被障碍物挡住，后方机器人不受伤", func(t *testing.T) {
		b := newBattle(20, 20, wallOf(WallSquare, Cell{X: 12, Y: 10}))
		a := addRobot(b, "A", 10, 10)
		behind := addRobot(b, "B", 14, 10)

		result := engine.Fire(b, a, East, 10)
		assert.False(t, result.Hit)
		assert.Equal(t, BlockedByWall, result.BlockedBy)
		assert.Equal(t, Cell{X: 12, Y: 10}, result.LaserPath[len(result.LaserPath)-1])
		assert.Equal(t, 100, behind.HitPoints)
	})

	t.Run("射程耗尽", func(t *testing.T) {
		b := newBattle(20, 20)
		a := addRobot(b, "A", 5, 5)

		result := engine.Fire(b, a, East, 3)
		assert.False(t, result.Hit)
		assert.Empty(t, result.BlockedBy)
		assert.Len(t, result.LaserPath, 4)
		assert.Equal(t, Cell{X: 8, Y: 5}, result.LaserPath[3])
	})

	t.Run("斜向命中", func(t *testing.T) {
		b := newBattle(20, 20)
		a := addRobot(b, "A", 2, 2)
		addRobot(b, "B", 4, 4)

		result := engine.Fire(b, a, NorthEast, 5)
		assert.True(t, result.Hit)
		assert.Equal(t, []Cell{{2, 2}, {3, 3}, {4, 4}}, result.LaserPath)
	})

	t.Run("穿过残骸", func(t *testing.T) {
		b := newBattle(20, 20)
		a := addRobot(b, "A", 5, 5)
		wreck := addRobot(b, "W", 5, 6)
		wreck.HitPoints = 0
		wreck.Status = RobotCrashed
		addRobot(b, "B", 5, 8)

		result := engine.Fire(b, a, North, 10)
		assert.True(t, result.Hit)
		assert.Equal(t, "B", result.HitRobotID)
	})

	t.Run("伤害不超过剩余生命值，归零即摧毁", func(t *testing.T) {
		b := newBattle(20, 20)
		a := addRobot(b, "A", 5, 5)
		target := addRobot(b, "B", 5, 4)
		target.HitPoints = 15
		target.Status = RobotMoving
		target.BlocksRemaining = 3

		result := engine.Fire(b, a, South, 10)
		assert.Equal(t, 15, result.DamageDealt)
		assert.Equal(t, 0, target.HitPoints)
		assert.Equal(t, RobotDestroyed, target.Status)
		assert.Equal(t, 0, target.BlocksRemaining)
		assert.False(t, target.IsActive())
	})
}
