package service

import (
	"math/rand"
	"strings"

	"robot-arena/internal/pkg/log"
)

// shapeFunc 生成形状相对原点的格子（允许随机朝向）
type shapeFunc func(rng *rand.Rand) []Cell

// wallShapes 形状分派表
var wallShapes = map[WallType]shapeFunc{
	WallSquare: squareShape,
	WallLong:   longShape,
	WallU:      uShape,
}

// 分派表遍历顺序不稳定，随机选形状时按固定顺序取
var wallTypes = []WallType{WallSquare, WallLong, WallU}

// squareShape 4×4 实心方块
func squareShape(_ *rand.Rand) []Cell {
	return rect(4, 4)
}

// longShape 1×10 或 10×1 直线
func longShape(rng *rand.Rand) []Cell {
	if rng.Intn(2) == 0 {
		return rect(1, 10)
	}
	return rect(10, 1)
}

// uShape 4×10 的 U 形轮廓：两条 1×10 竖条，一端由 4 格横条连接
func uShape(rng *rand.Rand) []Cell {
	const width, height = 4, 10
	base := 0
	if rng.Intn(2) == 0 {
		base = height - 1 // 开口朝下
	}
	cells := make([]Cell, 0, 2*height+width-2)
	for y := range height {
		cells = append(cells, Cell{X: 0, Y: y}, Cell{X: width - 1, Y: y})
	}
	for x := 1; x < width-1; x++ {
		cells = append(cells, Cell{X: x, Y: base})
	}
	return cells
}

func rect(w, h int) []Cell {
	cells := make([]Cell, 0, w*h)
	for x := range w {
		for y := range h {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	return cells
}

// extent 形状包围盒尺寸
func extent(cells []Cell) (w, h int) {
	for _, c := range cells {
		w = max(w, c.X+1)
		h = max(h, c.Y+1)
	}
	return w, h
}

// WallGenerator 在覆盖预算内随机放置互不重叠的障碍物
type WallGenerator struct {
	settings   Settings
	logger     log.Logger
	onFallback func()
}

// NewWallGenerator onFallback 在启用兜底方块时回调（指标），可为 nil
func NewWallGenerator(settings Settings, logger log.Logger, onFallback func()) *WallGenerator {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &WallGenerator{
		settings:   settings,
		logger:     logger.With("component", "wall_generator"),
		onFallback: onFallback,
	}
}

// IsEmptyArena 名称包含空场标记（大小写不敏感）时不生成障碍物
func (g *WallGenerator) IsEmptyArena(name string) bool {
	marker := strings.ToLower(g.settings.EmptyArenaMarker)
	return marker != "" && strings.Contains(strings.ToLower(name), marker)
}

// Budget 障碍物最多可占用的格子数
func (g *WallGenerator) Budget(width, height int) int {
	budget := width * height * g.settings.WallCoveragePercent / 100
	if width >= 10 && height >= 10 {
		budget = max(budget, g.settings.WallMinBudget)
	}
	return budget
}

// Generate 为一个 width×height 的竞技场生成障碍物
// rng 由调用方持锁保护
func (g *WallGenerator) Generate(name string, width, height int, rng *rand.Rand) []*Wall {
	if g.IsEmptyArena(name) {
		return nil
	}

	budget := g.Budget(width, height)
	occupied := make(map[Cell]struct{})
	var walls []*Wall
	used := 0

	for range g.settings.WallMaxAttempts {
		wallType := wallTypes[rng.Intn(len(wallTypes))]
		shape := wallShapes[wallType](rng)
		if used+len(shape) > budget {
			continue
		}
		cells, ok := g.place(shape, width, height, occupied, rng)
		if !ok {
			continue
		}
		for _, c := range cells {
			occupied[c] = struct{}{}
		}
		walls = append(walls, &Wall{Type: wallType, Cells: cells})
		used += len(cells)
	}

	if len(walls) == 0 && width >= 10 && height >= 10 {
		if wall := g.fallback(width, height, budget); wall != nil {
			g.logger.Warn("随机放置障碍物失败，使用中心兜底方块",
				log.String("arena", name),
				log.Int("budget", budget),
				log.Int("cells", len(wall.Cells)),
			)
			if g.onFallback != nil {
				g.onFallback()
			}
			walls = append(walls, wall)
		}
	}

	return walls
}

// place 在 bounded retries 内为形状寻找不越界、不重叠的位置
func (g *WallGenerator) place(shape []Cell, width, height int, occupied map[Cell]struct{}, rng *rand.Rand) ([]Cell, bool) {
	w, h := extent(shape)
	if w > width || h > height {
		return nil, false
	}

	for range g.settings.WallPlacementRetries {
		origin := Cell{X: rng.Intn(width - w + 1), Y: rng.Intn(height - h + 1)}
		cells := make([]Cell, 0, len(shape))
		overlap := false
		for _, offset := range shape {
			c := origin.Add(offset)
			if _, taken := occupied[c]; taken {
				overlap = true
				break
			}
			cells = append(cells, c)
		}
		if !overlap {
			return cells, true
		}
	}
	return nil, false
}

// fallback 竞技场中心的小方块，边长不超过 4 且不超出预算
func (g *WallGenerator) fallback(width, height, budget int) *Wall {
	side := 4
	for side > 0 && side*side > budget {
		side--
	}
	if side == 0 {
		return nil
	}
	origin := Cell{X: (width - side) / 2, Y: (height - side) / 2}
	cells := make([]Cell, 0, side*side)
	for _, offset := range rect(side, side) {
		cells = append(cells, origin.Add(offset))
	}
	return &Wall{Type: WallSquare, Cells: cells}
}
