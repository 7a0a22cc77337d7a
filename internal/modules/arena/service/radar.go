package service

import "fmt"

const boundaryDetails = "Arena boundary wall"

// RadarEngine 以曼哈顿距离扫描周围的障碍物与机器人
type RadarEngine struct {
	maxRange int
}

// NewRadarEngine 创建雷达引擎
func NewRadarEngine(maxRange int) *RadarEngine {
	return &RadarEngine{maxRange: maxRange}
}

// Scan 返回相对坐标的探测结果
// 每格只报告优先级最高的一项：边界 > 障碍物 > 机器人
func (e *RadarEngine) Scan(b *Battle, r *Robot, scanRange int) RadarResult {
	scanRange = min(scanRange, e.maxRange)
	origin := r.Position

	minX, maxX := max(0, origin.X-scanRange), min(b.Width-1, origin.X+scanRange)
	minY, maxY := max(0, origin.Y-scanRange), min(b.Height-1, origin.Y+scanRange)

	detections := make([]Detection, 0)
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			cell := Cell{X: x, Y: y}
			if cell == origin || cell.Manhattan(origin) > scanRange {
				continue
			}
			d, ok := classify(b, r, cell)
			if !ok {
				continue
			}
			d.X, d.Y = x-origin.X, y-origin.Y
			detections = append(detections, d)
		}
	}

	return RadarResult{Range: scanRange, Detections: detections}
}

func classify(b *Battle, self *Robot, cell Cell) (Detection, bool) {
	if b.IsBoundary(cell) {
		return Detection{Type: DetectWall, Details: boundaryDetails}, true
	}
	if w := b.WallAt(cell); w != nil {
		return Detection{Type: DetectWall, Details: fmt.Sprintf("%s wall", w.Type)}, true
	}
	if other := b.RobotAt(cell, self.ID, false); other != nil {
		details := "Robot " + other.Name
		if !other.IsActive() {
			details += fmt.Sprintf(" (%s)", other.Status)
		}
		return Detection{Type: DetectRobot, Details: details}, true
	}
	return Detection{}, false
}
