package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/freeeve/broadside/internal/model"
)

// MatchRepo handles match and match_unit database operations.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// Create inserts a new running match.
func (r *MatchRepo) Create(ctx context.Context, m *model.Match) error {
	status := m.Status
	if status == "" {
		status = model.StatusRunning
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO matches (id, name, scenario, seed, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		m.ID, m.Name, m.Scenario, m.Seed, status, m.CreatedAt,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	m.Status = status
	return nil
}

// Finish stores the outcome of a match and its per-unit results.
func (r *MatchRepo) Finish(ctx context.Context, m *model.Match) error {
	survivors, err := json.Marshal(m.Survivors)
	if err != nil {
		return fmt.Errorf("marshal survivors: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE matches
		 SET status = $2, winner = NULLIF($3, ''), seconds = $4, ticks = $5, decisions = $6, retargets = $7,
		     survivors = $8::jsonb, finished_at = COALESCE($9, now())
		 WHERE id = $1`,
		m.ID, m.Status, m.Winner, m.Seconds, m.Ticks, m.Decisions, m.Retargets, string(survivors), m.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish match: %s not found", m.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM match_units WHERE match_id = $1`, m.ID); err != nil {
		return fmt.Errorf("clear match units: %w", err)
	}
	for _, u := range m.Units {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO match_units (match_id, unit_id, team, class, alive, hp, max_hp, kills, damage_dealt, decisions, retargets)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			m.ID, int64(u.UnitID), u.Team, u.Class, u.Alive, u.HP, u.MaxHP, u.Kills, u.DamageDealt, u.Decisions, u.Retargets,
		)
		if err != nil {
			return fmt.Errorf("insert match unit %d: %w", u.UnitID, err)
		}
	}
	return tx.Commit()
}

const matchColumns = `id, name, scenario, seed, status, winner, seconds, ticks, decisions, retargets, survivors, created_at, finished_at`

func scanMatch(row interface{ Scan(...any) error }) (*model.Match, error) {
	var (
		m         model.Match
		winner    sql.NullString
		survivors []byte
	)
	err := row.Scan(&m.ID, &m.Name, &m.Scenario, &m.Seed, &m.Status, &winner, &m.Seconds, &m.Ticks,
		&m.Decisions, &m.Retargets, &survivors, &m.CreatedAt, &m.FinishedAt)
	if err != nil {
		return nil, err
	}
	m.Winner = winner.String
	if len(survivors) > 0 {
		if err := json.Unmarshal(survivors, &m.Survivors); err != nil {
			return nil, fmt.Errorf("unmarshal survivors: %w", err)
		}
	}
	return &m, nil
}

// FindByID returns a match with its unit results, or nil if absent.
func (r *MatchRepo) FindByID(ctx context.Context, id string) (*model.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}

	units, err := r.listUnits(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Units = units
	return m, nil
}

// ListRecent returns the newest matches first, without unit results.
func (r *MatchRepo) ListRecent(ctx context.Context, limit int) ([]model.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *MatchRepo) listUnits(ctx context.Context, matchID string) ([]model.UnitResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT match_id, unit_id, team, class, alive, hp, max_hp, kills, damage_dealt, decisions, retargets
		 FROM match_units WHERE match_id = $1 ORDER BY unit_id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list match units: %w", err)
	}
	defer rows.Close()

	var units []model.UnitResult
	for rows.Next() {
		var (
			u  model.UnitResult
			id int64
		)
		if err := rows.Scan(&u.MatchID, &id, &u.Team, &u.Class, &u.Alive, &u.HP, &u.MaxHP, &u.Kills,
			&u.DamageDealt, &u.Decisions, &u.Retargets); err != nil {
			return nil, fmt.Errorf("scan match unit: %w", err)
		}
		u.UnitID = uint64(id)
		units = append(units, u)
	}
	return units, rows.Err()
}
