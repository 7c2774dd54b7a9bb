package sim

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/freeeve/broadside/pkg/tactics"
)

// maxTeams is bounded by the width of tactics.TeamMask.
const maxTeams = 32

// Hull is the stat block for a classification.
type Hull struct {
	MaxHP  float64 `json:"max_hp"`
	Speed  float64 `json:"speed"`
	Weapon Weapon  `json:"weapon"`
}

var hulls = map[tactics.Class]Hull{
	tactics.ClassDrone:      {MaxHP: 30, Speed: 14, Weapon: Weapon{Range: 18, Damage: 3, Cooldown: 0.5, Size: "Small"}},
	tactics.ClassFighter:    {MaxHP: 50, Speed: 12, Weapon: Weapon{Range: 22, Damage: 5, Cooldown: 0.6, Size: "Small"}},
	tactics.ClassCorvette:   {MaxHP: 90, Speed: 10, Weapon: Weapon{Range: 28, Damage: 8, Cooldown: 0.8, Size: "Medium"}},
	tactics.ClassFrigate:    {MaxHP: 140, Speed: 9, Weapon: Weapon{Range: 32, Damage: 14, Cooldown: 1.2, Size: "Large"}},
	tactics.ClassDestroyer:  {MaxHP: 220, Speed: 8, Weapon: Weapon{Range: 38, Damage: 20, Cooldown: 1.4, Size: "Large"}},
	tactics.ClassCruiser:    {MaxHP: 340, Speed: 7, Weapon: Weapon{Range: 42, Damage: 28, Cooldown: 1.6, Size: "Large"}},
	tactics.ClassBattleship: {MaxHP: 520, Speed: 5, Weapon: Weapon{Range: 55, Damage: 45, Cooldown: 2.2, Size: "Huge"}},
	tactics.ClassCarrier:    {MaxHP: 480, Speed: 4.5, Weapon: Weapon{Range: 40, Damage: 15, Cooldown: 1.0, Size: "Medium"}},
	tactics.ClassFlagship:   {MaxHP: 700, Speed: 4, Weapon: Weapon{Range: 60, Damage: 55, Cooldown: 2.5, Size: "Huge"}},
}

// HullFor returns the stat block of a classification.
func HullFor(c tactics.Class) (Hull, bool) {
	h, ok := hulls[c]
	return h, ok
}

// Squadron is a group of identical ships.
type Squadron struct {
	Class  tactics.Class
	Count  int
	Player bool
}

// Team is one side of a scenario.
type Team struct {
	Name  string
	Fleet []Squadron
}

// Size returns the number of ships on the team.
func (t Team) Size() int {
	n := 0
	for _, s := range t.Fleet {
		n += s.Count
	}
	return n
}

// Scenario is a fleet composition per team.
type Scenario struct {
	Name  string
	Teams []Team
}

var builtinScenarios = map[string]string{
	"duel":     "red=cruiser;blue=cruiser",
	"skirmish": "red=destroyer,2xfrigate,3xfighter;blue=destroyer,2xfrigate,3xfighter",
	"fleet":    "red=flagship!,battleship,2xcruiser,3xdestroyer,4xfrigate,6xfighter;blue=flagship,carrier,2xcruiser,3xdestroyer,4xcorvette,8xdrone",
}

// BuiltinScenarios lists the named scenarios in sorted order.
func BuiltinScenarios() []string {
	names := make([]string, 0, len(builtinScenarios))
	for n := range builtinScenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseScenario resolves a built-in scenario name or parses a fleet string
// such as "red=flagship!,cruiser,2xfrigate;blue=battleship,3xdestroyer".
// "NxClass" repeats a ship and a trailing "!" marks it as a player ship.
func ParseScenario(s string) (*Scenario, error) {
	s = strings.TrimSpace(s)
	if spec, ok := builtinScenarios[strings.ToLower(s)]; ok {
		sc, err := parseFleets(spec)
		if err != nil {
			return nil, err
		}
		sc.Name = strings.ToLower(s)
		return sc, nil
	}
	sc, err := parseFleets(s)
	if err != nil {
		return nil, err
	}
	sc.Name = sc.String()
	return sc, nil
}

func parseFleets(s string) (*Scenario, error) {
	if s == "" {
		return nil, fmt.Errorf("empty scenario")
	}
	sc := &Scenario{}
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, fleet, ok := strings.Cut(part, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if !ok || name == "" {
			return nil, fmt.Errorf("team %q: expected name=ships", part)
		}
		if seen[name] {
			return nil, fmt.Errorf("team %q listed twice", name)
		}
		seen[name] = true

		team := Team{Name: name}
		for _, tok := range strings.Split(fleet, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			sq, err := parseSquadron(tok)
			if err != nil {
				return nil, fmt.Errorf("team %q: %w", name, err)
			}
			team.Fleet = append(team.Fleet, sq)
		}
		if team.Size() == 0 {
			return nil, fmt.Errorf("team %q has no ships", name)
		}
		sc.Teams = append(sc.Teams, team)
	}
	if len(sc.Teams) < 2 {
		return nil, fmt.Errorf("scenario needs at least two teams, got %d", len(sc.Teams))
	}
	if len(sc.Teams) > maxTeams {
		return nil, fmt.Errorf("scenario has %d teams, max %d", len(sc.Teams), maxTeams)
	}
	return sc, nil
}

func parseSquadron(tok string) (Squadron, error) {
	sq := Squadron{Count: 1}
	if strings.HasSuffix(tok, "!") {
		sq.Player = true
		tok = strings.TrimSuffix(tok, "!")
	}
	if countStr, rest, ok := strings.Cut(tok, "x"); ok && countStr != "" && isDigits(countStr) {
		n, err := strconv.Atoi(countStr)
		if err != nil || n <= 0 {
			return Squadron{}, fmt.Errorf("bad count in %q", tok)
		}
		sq.Count = n
		tok = rest
	}
	class, err := tactics.ParseClass(tok)
	if err != nil {
		return Squadron{}, err
	}
	if _, ok := hulls[class]; !ok {
		return Squadron{}, fmt.Errorf("no hull for class %s", class)
	}
	sq.Class = class
	return sq, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the scenario in the fleet string format.
func (sc *Scenario) String() string {
	teams := make([]string, 0, len(sc.Teams))
	for _, t := range sc.Teams {
		ships := make([]string, 0, len(t.Fleet))
		for _, sq := range t.Fleet {
			tok := strings.ToLower(sq.Class.String())
			if sq.Count > 1 {
				tok = strconv.Itoa(sq.Count) + "x" + tok
			}
			if sq.Player {
				tok += "!"
			}
			ships = append(ships, tok)
		}
		teams = append(teams, t.Name+"="+strings.Join(ships, ","))
	}
	return strings.Join(teams, ";")
}

// TeamBit returns the team mask bit of the i-th team.
func TeamBit(i int) tactics.TeamMask { return tactics.TeamMask(1) << uint(i) }

// spawnLayout is the arena placement of the scenario's units.
type spawnLayout struct {
	teamRadius float64 // distance of each team's centre from the origin
	spacing    float64
}

var defaultLayout = spawnLayout{teamRadius: 40, spacing: 6}

// Units expands the scenario into spawnable units. Team i stands on a
// circle around the origin facing the centre, ships in rows of five, heavy
// hulls at the back.
func (sc *Scenario) Units(layout spawnLayout) []Unit {
	var all tactics.TeamMask
	for i := range sc.Teams {
		all |= TeamBit(i)
	}

	var out []Unit
	for i, t := range sc.Teams {
		angle := 2 * math.Pi * float64(i) / float64(len(sc.Teams))
		centre := tactics.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(layout.teamRadius)
		facing, _ := centre.Scale(-1).Normalize()
		side := facing.Rotate(90)

		ships := make([]Squadron, 0, t.Size())
		for _, sq := range t.Fleet {
			for range sq.Count {
				ships = append(ships, Squadron{Class: sq.Class, Count: 1, Player: sq.Player})
			}
		}
		sort.SliceStable(ships, func(a, b int) bool { return ships[a].Class < ships[b].Class })

		const perRow = 5
		for n, sq := range ships {
			row, col := n/perRow, n%perRow
			rowLen := min(perRow, len(ships)-row*perRow)
			offset := (float64(col) - float64(rowLen-1)/2) * layout.spacing
			pos := centre.Add(side.Scale(offset)).Sub(facing.Scale(float64(row) * layout.spacing))

			h := hulls[sq.Class]
			out = append(out, Unit{
				Entity: tactics.Entity{
					Team:       TeamBit(i),
					Class:      sq.Class,
					Position:   pos,
					Forward:    facing,
					HP:         h.MaxHP,
					MaxHP:      h.MaxHP,
					IsPlayer:   sq.Player,
					WeaponSize: h.Weapon.Size,
				},
				TeamName: t.Name,
				HitMask:  all &^ TeamBit(i),
				Speed:    h.Speed,
				Weapon:   h.Weapon,
			})
		}
	}
	return out
}
