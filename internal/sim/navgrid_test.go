package sim

import (
	"testing"

	"github.com/freeeve/broadside/pkg/tactics"
)

func TestOpenGridWalkable(t *testing.T) {
	g := NewOpenGrid(100, 2)
	if !g.Walkable(tactics.Vec2{}) {
		t.Error("origin should be walkable")
	}
	if g.Walkable(tactics.Vec2{X: 60}) {
		t.Error("points outside the arena should not be walkable")
	}
	if g.BlockedFraction() != 0 {
		t.Errorf("open grid should have no obstacles, got %v", g.BlockedFraction())
	}
}

func TestNavGridDeterministic(t *testing.T) {
	cfg := DefaultGridConfig()
	a := NewNavGrid(7, cfg)
	b := NewNavGrid(7, cfg)
	for i := range a.blocked {
		if a.blocked[i] != b.blocked[i] {
			t.Fatalf("same seed produced different grids at cell %d", i)
		}
	}
	if f := a.BlockedFraction(); f >= 0.5 {
		t.Errorf("expected most cells open, got %v blocked", f)
	}
}

func TestNavGridThresholdOpen(t *testing.T) {
	cfg := DefaultGridConfig()
	cfg.Threshold = 1
	if f := NewNavGrid(3, cfg).BlockedFraction(); f != 0 {
		t.Errorf("threshold 1 should give an open arena, got %v", f)
	}
}

func TestNavGridClear(t *testing.T) {
	g := NewOpenGrid(40, 1)
	p := tactics.Vec2{X: 3.5, Y: 3.5}
	g.Block(p)
	if g.Walkable(p) {
		t.Fatal("blocked cell should not be walkable")
	}
	g.Clear(p, 2)
	if !g.Walkable(p) {
		t.Error("cleared cell should be walkable")
	}
}

func TestSampleWalkable(t *testing.T) {
	g := NewOpenGrid(40, 1)
	free := tactics.Vec2{X: 1.2, Y: 1.2}
	if got, ok := g.SampleWalkable(free, 3); !ok || got != free {
		t.Errorf("walkable point should come back unchanged, got %v %v", got, ok)
	}

	blocked := tactics.Vec2{X: 0.5, Y: 0.5}
	g.Block(blocked)
	got, ok := g.SampleWalkable(blocked, 3)
	if !ok {
		t.Fatal("expected a nearby free cell")
	}
	if got.Dist(blocked) > 1.01 {
		t.Errorf("expected an adjacent cell centre, got %v", got)
	}
	if !g.Walkable(got) {
		t.Errorf("sampled point %v is not walkable", got)
	}

	// Fully enclosed point with a radius too small to escape.
	for _, d := range []tactics.Vec2{{}, {X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {X: 1, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: -1}, {X: -1, Y: 1}} {
		g.Block(blocked.Add(d))
	}
	if _, ok := g.SampleWalkable(blocked, 1.2); ok {
		t.Error("expected no walkable point inside the enclosure")
	}
}
