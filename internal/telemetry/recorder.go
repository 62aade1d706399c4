// Package telemetry records demo-run output to SQLite: per-tick
// population aggregates and the decision log. The behavior engine
// itself keeps no storage; this is host-side observation only.
package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/selwood/villagefolk/internal/sim"
)

// Recorder wraps a SQLite connection. A nil *Recorder is valid and
// ignores every call, so hosts can run without a database.
type Recorder struct {
	conn *sqlx.DB
}

// Open opens or creates a telemetry database at the given path.
func Open(path string) (*Recorder, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}
	r := &Recorder{conn: conn}
	if err := r.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate telemetry db: %w", err)
	}
	return r, nil
}

// Close closes the database connection.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return r.conn.Close()
}

func (r *Recorder) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tick_stats (
		tick INTEGER PRIMARY KEY,
		population INTEGER NOT NULL,
		working INTEGER NOT NULL,
		critical INTEGER NOT NULL,
		avg_food REAL NOT NULL,
		avg_rest REAL NOT NULL,
		avg_social REAL NOT NULL,
		avg_shelter REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		agent_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		action TEXT NOT NULL,
		priority INTEGER NOT NULL,
		reason TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_tick ON decisions(tick);
	CREATE INDEX IF NOT EXISTS idx_decisions_agent ON decisions(agent_id);
	`
	_, err := r.conn.Exec(schema)
	return err
}

// SaveTickStats upserts one tick's aggregates.
func (r *Recorder) SaveTickStats(stats sim.TickStats) error {
	if r == nil {
		return nil
	}
	_, err := r.conn.Exec(`INSERT OR REPLACE INTO tick_stats
		(tick, population, working, critical, avg_food, avg_rest, avg_social, avg_shelter)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.Tick, stats.Population, stats.Working, stats.Critical,
		stats.AvgFood, stats.AvgRest, stats.AvgSocial, stats.AvgShelter,
	)
	return err
}

// SaveDecisions appends a batch of decision records in one transaction.
func (r *Recorder) SaveDecisions(records []sim.DecisionRecord) error {
	if r == nil || len(records) == 0 {
		return nil
	}
	tx, err := r.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO decisions
		(tick, agent_id, kind, action, priority, reason)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.Tick, rec.AgentID, rec.Kind, rec.Action, rec.Priority, rec.Reason); err != nil {
			return fmt.Errorf("insert decision tick %d agent %s: %w", rec.Tick, rec.AgentID, err)
		}
	}
	return tx.Commit()
}

// RecentDecisions returns the most recent N decision records.
func (r *Recorder) RecentDecisions(limit int) ([]sim.DecisionRecord, error) {
	if r == nil {
		return nil, nil
	}
	var records []sim.DecisionRecord
	err := r.conn.Select(&records,
		`SELECT tick, agent_id, kind, action, priority, reason
		 FROM decisions ORDER BY id DESC LIMIT ?`, limit)
	return records, err
}

// DecisionCount returns the total number of recorded decisions.
func (r *Recorder) DecisionCount() (int64, error) {
	if r == nil {
		return 0, nil
	}
	var n int64
	err := r.conn.Get(&n, "SELECT COUNT(*) FROM decisions")
	return n, err
}

// Flush writes one tick's stats and drained decisions, logging rather
// than propagating failures — telemetry must never stall the loop.
func (r *Recorder) Flush(stats sim.TickStats, records []sim.DecisionRecord) {
	if r == nil {
		return
	}
	if err := r.SaveTickStats(stats); err != nil {
		slog.Error("telemetry tick save failed", "error", err)
	}
	if err := r.SaveDecisions(records); err != nil {
		slog.Error("telemetry decision save failed", "error", err)
	}
}
