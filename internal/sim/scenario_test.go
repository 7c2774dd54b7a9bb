package sim

import (
	"strings"
	"testing"

	"github.com/freeeve/broadside/pkg/tactics"
)

func TestParseScenarioBuiltins(t *testing.T) {
	for _, name := range BuiltinScenarios() {
		sc, err := ParseScenario(name)
		if err != nil {
			t.Fatalf("builtin %q: %v", name, err)
		}
		if sc.Name != name {
			t.Errorf("expected name %q, got %q", name, sc.Name)
		}
		if len(sc.Teams) != 2 {
			t.Errorf("%s: expected 2 teams, got %d", name, len(sc.Teams))
		}
	}
	if _, err := ParseScenario("  Duel "); err != nil {
		t.Errorf("builtin lookup should ignore case and spaces: %v", err)
	}
}

func TestParseScenarioFleetString(t *testing.T) {
	sc, err := ParseScenario("Red=flagship!, 2xCruiser ;blue=3xdestroyer;green=drone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sc.Teams) != 3 {
		t.Fatalf("expected 3 teams, got %d", len(sc.Teams))
	}
	red := sc.Teams[0]
	if red.Name != "red" || red.Size() != 3 {
		t.Errorf("expected red with 3 ships, got %q with %d", red.Name, red.Size())
	}
	if !red.Fleet[0].Player || red.Fleet[0].Class != tactics.ClassFlagship {
		t.Errorf("expected a player flagship, got %+v", red.Fleet[0])
	}
	if red.Fleet[1].Count != 2 || red.Fleet[1].Class != tactics.ClassCruiser {
		t.Errorf("expected 2 cruisers, got %+v", red.Fleet[1])
	}
	want := "red=flagship!,2xcruiser;blue=3xdestroyer;green=drone"
	if sc.String() != want || sc.Name != want {
		t.Errorf("expected canonical %q, got %q (name %q)", want, sc.String(), sc.Name)
	}
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "empty"},
		{"one team", "red=cruiser", "at least two"},
		{"missing equals", "red cruiser;blue=cruiser", "expected name=ships"},
		{"duplicate team", "red=cruiser;red=frigate", "twice"},
		{"no ships", "red=;blue=cruiser", "no ships"},
		{"unknown class", "red=dreadnought;blue=cruiser", "dreadnought"},
		{"zero count", "red=0xcruiser;blue=cruiser", "bad count"},
		{"dangling count", "red=2x;blue=cruiser", "red"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario(tt.in)
			if err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseScenarioTooManyTeams(t *testing.T) {
	parts := make([]string, maxTeams+1)
	for i := range parts {
		parts[i] = "t" + strings.Repeat("x", i+1) + "=drone"
	}
	if _, err := ParseScenario(strings.Join(parts, ";")); err == nil {
		t.Error("expected an error above the team limit")
	}
}

func TestScenarioUnits(t *testing.T) {
	sc, err := ParseScenario("red=flagship!,6xfighter;blue=cruiser")
	if err != nil {
		t.Fatal(err)
	}
	units := sc.Units(defaultLayout)
	if len(units) != 8 {
		t.Fatalf("expected 8 units, got %d", len(units))
	}

	var redCentre tactics.Vec2
	players := 0
	for _, u := range units[:7] {
		if u.TeamName != "red" || u.Team != TeamBit(0) || u.HitMask != TeamBit(1) {
			t.Errorf("bad red unit: %+v", u)
		}
		if u.IsPlayer {
			players++
		}
		redCentre = redCentre.Add(u.Position)
	}
	if players != 1 {
		t.Errorf("expected exactly one player ship, got %d", players)
	}
	// Light hulls first, so the flagship sits in the back row.
	if units[6].Class != tactics.ClassFlagship {
		t.Errorf("expected flagship last, got %s", units[6].Class)
	}

	blue := units[7]
	if blue.HitMask != TeamBit(0) || blue.HP != blue.MaxHP || blue.HP <= 0 {
		t.Errorf("bad blue unit: %+v", blue)
	}
	if d := redCentre.Scale(1.0 / 7).Dist(blue.Position); d < 60 {
		t.Errorf("teams should spawn well apart, got %.1f", d)
	}
	toCentre, _ := blue.Position.Scale(-1).Normalize()
	if blue.Forward.Dot(toCentre) < 0.99 {
		t.Errorf("units should face the arena centre, got %v", blue.Forward)
	}
}
