package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detectionAt(result RadarResult, x, y int) *Detection {
	for i := range result.Detections {
		if result.Detections[i].X == x && result.Detections[i].Y == y {
			return &result.Detections[i]
		}
	}
	return nil
}

func TestRadarEngine_Scan(t *testing.T) {
	engine := NewRadarEngine(20)

	t.Run("探测到其他机器人，坐标为相对值", func(t *testing.T) {
		b := newBattle(20, 20)
		self := addRobot(b, "A", 10, 10)
		addRobot(b, "B", 11, 12)

		result := engine.Scan(b, self, 3)
		require.Len(t, result.Detections, 1)
		assert.Equal(t, Detection{X: 1, Y: 2, Type: DetectRobot, Details: "Robot B"}, result.Detections[0])
	})

	t.Run("超出曼哈顿距离的不报告", func(t *testing.T) {
		b := newBattle(20, 20)
		self := addRobot(b, "A", 10, 10)
		addRobot(b, "B", 12, 12)

		assert.Empty(t, engine.Scan(b, self, 3).Detections)
	})

	t.Run("障碍物按形状命名", func(t *testing.T) {
		b := newBattle(20, 20, wallOf(WallLong, Cell{X: 12, Y: 10}))
		self := addRobot(b, "A", 10, 10)

		result := engine.Scan(b, self, 2)
		d := detectionAt(result, 2, 0)
		require.NotNil(t, d)
		assert.Equal(t, DetectWall, d.Type)
		assert.Equal(t, "LONG wall", d.Details)
	})

	t.Run("边界格只报告为边界墙", func(t *testing.T) {
		b := newBattle(20, 20, wallOf(WallSquare, Cell{X: 0, Y: 4}))
		self := addRobot(b, "A", 1, 5)
		addRobot(b, "B", 0, 5)

		result := engine.Scan(b, self, 2)
		boundary := 0
		for _, d := range result.Detections {
			assert.NotEqual(t, DetectRobot, d.Type)
			if d.Details == boundaryDetails {
				boundary++
			}
		}
		// (0,3) (0,4) (0,5) (0,6) (0,7) 中距离 ≤2 的是 (0,4) (0,5) (0,6)
		assert.Equal(t, 3, boundary)
		assert.Len(t, result.Detections, 3)
		assert.Equal(t, boundaryDetails, detectionAt(result, -1, 0).Details)
	})

	t.Run("不包含自身", func(t *testing.T) {
		b := newBattle(10, 10)
		self := addRobot(b, "A", 0, 0)

		result := engine.Scan(b, self, 5)
		assert.Nil(t, detectionAt(result, 0, 0))
		assert.NotEmpty(t, result.Detections)
		for _, d := range result.Detections {
			assert.LessOrEqual(t, abs(d.X)+abs(d.Y), 5)
			assert.GreaterOrEqual(t, d.X, 0)
			assert.GreaterOrEqual(t, d.Y, 0)
		}
	})

	t.Run("范围被限制在上限内", func(t *testing.T) {
		b := newBattle(100, 100)
		self := addRobot(b, "A", 50, 50)
		addRobot(b, "B", 50, 75)

		result := engine.Scan(b, self, 40)
		assert.Equal(t, 20, result.Range)
		assert.Empty(t, result.Detections)
	})

	t.Run("被摧毁的机器人标注状态", func(t *testing.T) {
		b := newBattle(20, 20)
		self := addRobot(b, "A", 10, 10)
		wreck := addRobot(b, "B", 10, 11)
		wreck.HitPoints = 0
		wreck.Status = RobotDestroyed

		d := detectionAt(engine.Scan(b, self, 1), 0, 1)
		require.NotNil(t, d)
		assert.Equal(t, "Robot B (DESTROYED)", d.Details)
	})
}
