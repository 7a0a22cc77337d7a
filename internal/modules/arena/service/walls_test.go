package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robot-arena/internal/pkg/log"
)

func TestWallShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name      string
		wallType  WallType
		wantCells int
		check     func(t *testing.T, w, h int)
	}{
		{"方块 4x4", WallSquare, 16, func(t *testing.T, w, h int) {
			assert.Equal(t, 4, w)
			assert.Equal(t, 4, h)
		}},
		{"直线 1x10 或 10x1", WallLong, 10, func(t *testing.T, w, h int) {
			assert.ElementsMatch(t, []int{1, 10}, []int{w, h})
		}},
		{"U 形 4x10 轮廓", WallU, 22, func(t *testing.T, w, h int) {
			assert.Equal(t, 4, w)
			assert.Equal(t, 10, h)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 10 {
				cells := wallShapes[tt.wallType](rng)
				assert.Len(t, cells, tt.wantCells)
				seen := make(map[Cell]bool)
				for _, c := range cells {
					assert.False(t, seen[c], "重复格子 %v", c)
					seen[c] = true
				}
				w, h := extent(cells)
				tt.check(t, w, h)
			}
		})
	}
}

func TestWallGenerator_Budget(t *testing.T) {
	g := NewWallGenerator(DefaultSettings(), log.NewDiscardLogger(), nil)

	assert.Equal(t, 10, g.Budget(10, 10))
	assert.Equal(t, 40, g.Budget(20, 20))
	assert.Equal(t, 12, g.Budget(11, 11))
	assert.Equal(t, 100000, g.Budget(1000, 1000))

	settings := DefaultSettings()
	settings.WallCoveragePercent = 1
	low := NewWallGenerator(settings, log.NewDiscardLogger(), nil)
	assert.Equal(t, 10, low.Budget(20, 20), "保底预算")
}

func TestWallGenerator_Generate(t *testing.T) {
	g := NewWallGenerator(DefaultSettings(), log.NewDiscardLogger(), nil)
	sizes := [][2]int{{10, 10}, {20, 20}, {37, 23}, {10, 60}, {100, 100}}

	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		for _, size := range sizes {
			width, height := size[0], size[1]
			walls := g.Generate("arena", width, height, rng)
			require.NotEmpty(t, walls, "seed=%d size=%v", seed, size)

			occupied := make(map[Cell]bool)
			for _, w := range walls {
				for _, c := range w.Cells {
					assert.True(t, c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height, "越界 %v", c)
					assert.False(t, occupied[c], "重叠 %v", c)
					occupied[c] = true
				}
			}
			assert.LessOrEqual(t, len(occupied), g.Budget(width, height), "seed=%d size=%v", seed, size)
		}
	}
}

func TestWallGenerator_EmptyArena(t *testing.T) {
	g := NewWallGenerator(DefaultSettings(), log.NewDiscardLogger(), nil)
	rng := rand.New(rand.NewSource(1))

	assert.Empty(t, g.Generate("my EMPTY test arena", 50, 50, rng))
	assert.Empty(t, g.Generate("empty", 10, 10, rng))
	assert.NotEmpty(t, g.Generate("full arena", 50, 50, rng))
}

func TestWallGenerator_Fallback(t *testing.T) {
	settings := DefaultSettings()
	settings.WallMaxAttempts = 0

	fallbacks := 0
	g := NewWallGenerator(settings, log.NewDiscardLogger(), func() { fallbacks++ })
	rng := rand.New(rand.NewSource(1))

	t.Run("预算 10 时放置 3x3", func(t *testing.T) {
		walls := g.Generate("arena", 10, 10, rng)
		require.Len(t, walls, 1)
		assert.Equal(t, WallSquare, walls[0].Type)
		assert.Len(t, walls[0].Cells, 9)
		assert.Contains(t, walls[0].Cells, Cell{X: 3, Y: 3})
		assert.Contains(t, walls[0].Cells, Cell{X: 5, Y: 5})
	})

	t.Run("预算充足时放置 4x4 于中心", func(t *testing.T) {
		walls := g.Generate("arena", 20, 20, rng)
		require.Len(t, walls, 1)
		assert.Len(t, walls[0].Cells, 16)
		assert.Contains(t, walls[0].Cells, Cell{X: 8, Y: 8})
		assert.Contains(t, walls[0].Cells, Cell{X: 11, Y: 11})
	})

	assert.Equal(t, 2, fallbacks)
}

func TestWallGenerator_Deterministic(t *testing.T) {
	g := NewWallGenerator(DefaultSettings(), log.NewDiscardLogger(), nil)

	a := g.Generate("arena", 30, 30, rand.New(rand.NewSource(7)))
	b := g.Generate("arena", 30, 30, rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}
