package sim

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/freeeve/broadside/pkg/tactics"
)

// GridConfig controls obstacle generation.
type GridConfig struct {
	Size      float64 // side length of the square arena, centred on the origin
	CellSize  float64
	Threshold float64 // noise above this is blocked; >= 1 gives an open arena
	Octaves   int
	Frequency float64
}

// DefaultGridConfig is a 240x240 arena with scattered debris fields.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		Size:      240,
		CellSize:  2,
		Threshold: 0.68,
		Octaves:   3,
		Frequency: 0.035,
	}
}

// NavGrid is a walkable occupancy grid over the arena.
type NavGrid struct {
	cols, rows int
	cell       float64
	origin     tactics.Vec2
	blocked    []bool
}

// NewNavGrid generates an obstacle field from simplex noise.
func NewNavGrid(seed int64, cfg GridConfig) *NavGrid {
	g := newGrid(cfg)
	if cfg.Threshold >= 1 {
		return g
	}
	noise := opensimplex.NewNormalized(seed)
	octaves := max(cfg.Octaves, 1)
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			c := g.center(col, row)
			if octaveNoise(noise, c.X, c.Y, octaves, cfg.Frequency, 0.5) > cfg.Threshold {
				g.blocked[row*g.cols+col] = true
			}
		}
	}
	return g
}

// NewOpenGrid returns an arena with no obstacles.
func NewOpenGrid(size, cellSize float64) *NavGrid {
	return newGrid(GridConfig{Size: size, CellSize: cellSize})
}

func newGrid(cfg GridConfig) *NavGrid {
	cell := cfg.CellSize
	if cell <= 0 {
		cell = 1
	}
	n := max(int(math.Ceil(cfg.Size/cell)), 1)
	half := float64(n) * cell / 2
	return &NavGrid{
		cols:    n,
		rows:    n,
		cell:    cell,
		origin:  tactics.Vec2{X: -half, Y: -half},
		blocked: make([]bool, n*n),
	}
}

// octaveNoise layers several frequencies of simplex noise.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}

func (g *NavGrid) cellOf(p tactics.Vec2) (int, int, bool) {
	col := int(math.Floor((p.X - g.origin.X) / g.cell))
	row := int(math.Floor((p.Y - g.origin.Y) / g.cell))
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return col, row, false
	}
	return col, row, true
}

func (g *NavGrid) center(col, row int) tactics.Vec2 {
	return tactics.Vec2{
		X: g.origin.X + (float64(col)+0.5)*g.cell,
		Y: g.origin.Y + (float64(row)+0.5)*g.cell,
	}
}

// Walkable reports whether p is inside the arena and not blocked.
func (g *NavGrid) Walkable(p tactics.Vec2) bool {
	col, row, ok := g.cellOf(p)
	return ok && !g.blocked[row*g.cols+col]
}

// Block marks the cell containing p as an obstacle.
func (g *NavGrid) Block(p tactics.Vec2) {
	if col, row, ok := g.cellOf(p); ok {
		g.blocked[row*g.cols+col] = true
	}
}

// Clear removes obstacles from every cell whose centre lies within radius of c.
func (g *NavGrid) Clear(c tactics.Vec2, radius float64) {
	g.eachCellNear(c, radius, func(idx int, _ tactics.Vec2, _ float64) {
		g.blocked[idx] = false
	})
}

// BlockedFraction returns the share of blocked cells.
func (g *NavGrid) BlockedFraction() float64 {
	n := 0
	for _, b := range g.blocked {
		if b {
			n++
		}
	}
	return float64(n) / float64(len(g.blocked))
}

// SampleWalkable returns the walkable point nearest to p within radius: p
// itself when it is walkable, otherwise the closest free cell centre.
func (g *NavGrid) SampleWalkable(p tactics.Vec2, radius float64) (tactics.Vec2, bool) {
	if g.Walkable(p) {
		return p, true
	}
	var (
		best  tactics.Vec2
		bestD = math.Inf(1)
	)
	g.eachCellNear(p, radius, func(idx int, c tactics.Vec2, d float64) {
		if !g.blocked[idx] && d < bestD {
			best, bestD = c, d
		}
	})
	if math.IsInf(bestD, 1) {
		return tactics.Vec2{}, false
	}
	return best, true
}

// eachCellNear visits in-bounds cells whose centre is within radius of p.
func (g *NavGrid) eachCellNear(p tactics.Vec2, radius float64, fn func(idx int, c tactics.Vec2, d float64)) {
	if radius < 0 {
		return
	}
	minCol := max(int(math.Floor((p.X-radius-g.origin.X)/g.cell)), 0)
	maxCol := min(int(math.Floor((p.X+radius-g.origin.X)/g.cell)), g.cols-1)
	minRow := max(int(math.Floor((p.Y-radius-g.origin.Y)/g.cell)), 0)
	maxRow := min(int(math.Floor((p.Y+radius-g.origin.Y)/g.cell)), g.rows-1)
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			c := g.center(col, row)
			if d := c.Dist(p); d <= radius {
				fn(row*g.cols+col, c, d)
			}
		}
	}
}
