// Package sqlite stores match history in a single-file SQLite database for
// deployments without Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/freeeve/broadside/internal/model"
)

// MatchStore implements repository.MatchRepository on SQLite.
type MatchStore struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*MatchStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &MatchStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *MatchStore) Close() error {
	return s.conn.Close()
}

func (s *MatchStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		scenario TEXT NOT NULL,
		seed INTEGER NOT NULL,
		status TEXT NOT NULL,
		winner TEXT NOT NULL DEFAULT '',
		seconds REAL NOT NULL DEFAULT 0,
		ticks INTEGER NOT NULL DEFAULT 0,
		decisions INTEGER NOT NULL DEFAULT 0,
		retargets INTEGER NOT NULL DEFAULT 0,
		survivors_json TEXT NOT NULL DEFAULT '{}',
		created_at INTEGER NOT NULL,
		finished_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS match_units (
		match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		unit_id INTEGER NOT NULL,
		team TEXT NOT NULL,
		class TEXT NOT NULL,
		alive INTEGER NOT NULL,
		hp REAL NOT NULL,
		max_hp REAL NOT NULL,
		kills INTEGER NOT NULL,
		damage_dealt REAL NOT NULL,
		decisions INTEGER NOT NULL,
		retargets INTEGER NOT NULL,
		PRIMARY KEY (match_id, unit_id)
	);

	CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at);
	`
	_, err := s.conn.Exec(schema)
	return err
}

type matchRow struct {
	ID            string        `db:"id"`
	Name          string        `db:"name"`
	Scenario      string        `db:"scenario"`
	Seed          int64         `db:"seed"`
	Status        string        `db:"status"`
	Winner        string        `db:"winner"`
	Seconds       float64       `db:"seconds"`
	Ticks         int           `db:"ticks"`
	Decisions     int           `db:"decisions"`
	Retargets     int           `db:"retargets"`
	SurvivorsJSON string        `db:"survivors_json"`
	CreatedAt     int64         `db:"created_at"`
	FinishedAt    sql.NullInt64 `db:"finished_at"`
}

func (r matchRow) toModel() (model.Match, error) {
	m := model.Match{
		ID:        r.ID,
		Name:      r.Name,
		Scenario:  r.Scenario,
		Seed:      r.Seed,
		Status:    r.Status,
		Winner:    r.Winner,
		Seconds:   r.Seconds,
		Ticks:     r.Ticks,
		Decisions: r.Decisions,
		Retargets: r.Retargets,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
	}
	if r.FinishedAt.Valid {
		t := time.Unix(0, r.FinishedAt.Int64).UTC()
		m.FinishedAt = &t
	}
	if err := json.Unmarshal([]byte(r.SurvivorsJSON), &m.Survivors); err != nil {
		return m, fmt.Errorf("unmarshal survivors: %w", err)
	}
	if len(m.Survivors) == 0 {
		m.Survivors = nil
	}
	return m, nil
}

type unitRow struct {
	MatchID     string  `db:"match_id"`
	UnitID      int64   `db:"unit_id"`
	Team        string  `db:"team"`
	Class       string  `db:"class"`
	Alive       bool    `db:"alive"`
	HP          float64 `db:"hp"`
	MaxHP       float64 `db:"max_hp"`
	Kills       int     `db:"kills"`
	DamageDealt float64 `db:"damage_dealt"`
	Decisions   int     `db:"decisions"`
	Retargets   int     `db:"retargets"`
}

// Create inserts a new running match.
func (s *MatchStore) Create(ctx context.Context, m *model.Match) error {
	if m.Status == "" {
		m.Status = model.StatusRunning
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO matches (id, name, scenario, seed, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Scenario, m.Seed, m.Status, m.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// Finish stores the outcome of a match and replaces its unit results.
func (s *MatchStore) Finish(ctx context.Context, m *model.Match) error {
	survivors, err := json.Marshal(m.Survivors)
	if err != nil {
		return fmt.Errorf("marshal survivors: %w", err)
	}
	finished := time.Now()
	if m.FinishedAt != nil {
		finished = *m.FinishedAt
	}

	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE matches SET status = ?, winner = ?, seconds = ?, ticks = ?, decisions = ?, retargets = ?,
		 survivors_json = ?, finished_at = ? WHERE id = ?`,
		m.Status, m.Winner, m.Seconds, m.Ticks, m.Decisions, m.Retargets, string(survivors), finished.UnixNano(), m.ID)
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish match: %s not found", m.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM match_units WHERE match_id = ?", m.ID); err != nil {
		return err
	}
	stmt, err := tx.PreparexContext(ctx, `INSERT INTO match_units
		(match_id, unit_id, team, class, alive, hp, max_hp, kills, damage_dealt, decisions, retargets)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, u := range m.Units {
		alive := 0
		if u.Alive {
			alive = 1
		}
		if _, err := stmt.ExecContext(ctx, m.ID, int64(u.UnitID), u.Team, u.Class, alive, u.HP, u.MaxHP,
			u.Kills, u.DamageDealt, u.Decisions, u.Retargets); err != nil {
			return fmt.Errorf("insert unit %d: %w", u.UnitID, err)
		}
	}
	return tx.Commit()
}

// FindByID returns a match with its unit results, or nil if absent.
func (s *MatchStore) FindByID(ctx context.Context, id string) (*model.Match, error) {
	var row matchRow
	err := s.conn.GetContext(ctx, &row, "SELECT * FROM matches WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	m, err := row.toModel()
	if err != nil {
		return nil, err
	}

	var units []unitRow
	if err := s.conn.SelectContext(ctx, &units,
		"SELECT * FROM match_units WHERE match_id = ? ORDER BY unit_id", id); err != nil {
		return nil, fmt.Errorf("list match units: %w", err)
	}
	for _, u := range units {
		m.Units = append(m.Units, model.UnitResult{
			MatchID:     u.MatchID,
			UnitID:      uint64(u.UnitID),
			Team:        u.Team,
			Class:       u.Class,
			Alive:       u.Alive,
			HP:          u.HP,
			MaxHP:       u.MaxHP,
			Kills:       u.Kills,
			DamageDealt: u.DamageDealt,
			Decisions:   u.Decisions,
			Retargets:   u.Retargets,
		})
	}
	return &m, nil
}

// ListRecent returns the newest matches first, without unit results.
func (s *MatchStore) ListRecent(ctx context.Context, limit int) ([]model.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var rows []matchRow
	if err := s.conn.SelectContext(ctx, &rows,
		"SELECT * FROM matches ORDER BY created_at DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	out := make([]model.Match, 0, len(rows))
	for _, r := range rows {
		m, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
