package model

import "time"

// Match status values.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusStopped  = "stopped"
	StatusFailed   = "failed"
)

// Match is one skirmish between AI fleets.
type Match struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Scenario   string         `json:"scenario"`
	Seed       int64          `json:"seed"`
	Status     string         `json:"status"` // running, finished, stopped, failed
	Winner     string         `json:"winner,omitempty"`
	Seconds    float64        `json:"seconds"`
	Ticks      int            `json:"ticks"`
	Decisions  int            `json:"decisions"`
	Retargets  int            `json:"retargets"`
	Survivors  map[string]int `json:"survivors,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Units      []UnitResult   `json:"units,omitempty"`
}

// UnitResult is the end-of-match record of one unit.
type UnitResult struct {
	MatchID     string  `json:"match_id"`
	UnitID      uint64  `json:"unit_id"`
	Team        string  `json:"team"`
	Class       string  `json:"class"`
	Alive       bool    `json:"alive"`
	HP          float64 `json:"hp"`
	MaxHP       float64 `json:"max_hp"`
	Kills       int     `json:"kills"`
	DamageDealt float64 `json:"damage_dealt"`
	Decisions   int     `json:"decisions"`
	Retargets   int     `json:"retargets"`
}

// Snapshot is the live view of a running match pushed to spectators.
type Snapshot struct {
	MatchID string         `json:"match_id"`
	Tick    int            `json:"tick"`
	Time    float64        `json:"time"`
	Units   []UnitSnapshot `json:"units"`
	Focus   map[string]int `json:"focus,omitempty"` // target unit id -> attackers
}

// UnitSnapshot is one unit inside a Snapshot.
type UnitSnapshot struct {
	ID           uint64  `json:"id"`
	Team         string  `json:"team"`
	Class        string  `json:"class"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	HP           float64 `json:"hp"`
	MaxHP        float64 `json:"max_hp"`
	Alive        bool    `json:"alive"`
	State        string  `json:"state,omitempty"`
	Target       uint64  `json:"target,omitempty"`
	Escort       uint64  `json:"escort,omitempty"`
	DesiredRange float64 `json:"desired_range,omitempty"`
	Destination  *Point  `json:"destination,omitempty"`
}

// Point is a position on the combat plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Spectator is a holder of a spectator token.
type Spectator struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
