// Package audit persists a queryable history of completed ACS invocations
// to a local SQLite database, independent of the bbolt-backed fallback
// store in pkg/fallback: this is a record for operators to query, not an
// input to any future decision.
package audit

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/open-acs/acsd/pkg/logx"
)

// DecisionRecord is a single completed ACS invocation.
type DecisionRecord struct {
	Timestamp     time.Time     `json:"timestamp"`
	Status        string        `json:"status"` // "valid" or "invalid"
	Channel       int           `json:"channel,omitempty"`
	LowestNF      int8          `json:"lowest_nf,omitempty"`
	ExecutionTime time.Duration `json:"execution_time"`
	Error         string        `json:"error,omitempty"`
}

// DecisionLogger persists DecisionRecords to SQLite and serves simple
// queries over the history.
type DecisionLogger struct {
	logger  *logx.Logger
	mu      sync.Mutex
	db      *sql.DB
	enabled bool
}

// NewDecisionLogger opens (creating if needed) the SQLite database at path
// and ensures the decisions table exists.
func NewDecisionLogger(logger *logx.Logger, path string) (*DecisionLogger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp       DATETIME NOT NULL,
	status          TEXT NOT NULL,
	channel         INTEGER,
	lowest_nf       INTEGER,
	execution_ms    INTEGER NOT NULL,
	error           TEXT
);
CREATE INDEX IF NOT EXISTS idx_decisions_timestamp ON decisions(timestamp);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	return &DecisionLogger{logger: logger, db: db, enabled: true}, nil
}

// Close releases the underlying database handle.
func (dl *DecisionLogger) Close() error {
	return dl.db.Close()
}

// LogDecision inserts one completed invocation's record.
func (dl *DecisionLogger) LogDecision(record DecisionRecord) error {
	dl.mu.Lock()
	enabled := dl.enabled
	dl.mu.Unlock()
	if !enabled {
		return nil
	}

	_, err := dl.db.Exec(
		`INSERT INTO decisions (timestamp, status, channel, lowest_nf, execution_ms, error) VALUES (?, ?, ?, ?, ?, ?)`,
		record.Timestamp, record.Status, record.Channel, record.LowestNF,
		record.ExecutionTime.Milliseconds(), record.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert decision record: %w", err)
	}

	dl.logger.Info("acs decision recorded",
		"status", record.Status, "channel", record.Channel, "execution_time", record.ExecutionTime)
	return nil
}

// RecentDecisions returns up to limit decisions at or after since, most
// recent first.
func (dl *DecisionLogger) RecentDecisions(since time.Time, limit int) ([]DecisionRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := dl.db.Query(
		`SELECT timestamp, status, channel, lowest_nf, execution_ms, error
		 FROM decisions WHERE timestamp >= ? ORDER BY timestamp DESC LIMIT ?`,
		since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var records []DecisionRecord
	for rows.Next() {
		var r DecisionRecord
		var execMS int64
		var channel, nf sql.NullInt64
		if err := rows.Scan(&r.Timestamp, &r.Status, &channel, &nf, &execMS, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan decision row: %w", err)
		}
		r.Channel = int(channel.Int64)
		r.LowestNF = int8(nf.Int64)
		r.ExecutionTime = time.Duration(execMS) * time.Millisecond
		records = append(records, r)
	}
	return records, rows.Err()
}

// Stats summarizes decisions recorded since a point in time.
type Stats struct {
	Total       int           `json:"total"`
	Valid       int           `json:"valid"`
	Invalid     int           `json:"invalid"`
	AverageTime time.Duration `json:"average_time"`
}

// StatsSince computes Stats over every decision recorded at or after since.
func (dl *DecisionLogger) StatsSince(since time.Time) (Stats, error) {
	row := dl.db.QueryRow(
		`SELECT
			COUNT(*),
			SUM(CASE WHEN status = 'valid' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'invalid' THEN 1 ELSE 0 END),
			AVG(execution_ms)
		 FROM decisions WHERE timestamp >= ?`,
		since,
	)

	var total, valid, invalid sql.NullInt64
	var avgMS sql.NullFloat64
	if err := row.Scan(&total, &valid, &invalid, &avgMS); err != nil {
		return Stats{}, fmt.Errorf("failed to compute decision stats: %w", err)
	}

	return Stats{
		Total:       int(total.Int64),
		Valid:       int(valid.Int64),
		Invalid:     int(invalid.Int64),
		AverageTime: time.Duration(avgMS.Float64) * time.Millisecond,
	}, nil
}

// Enable resumes logging after Disable.
func (dl *DecisionLogger) Enable() {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.enabled = true
	dl.logger.Info("decision audit logging enabled")
}

// Disable suppresses LogDecision without closing the database.
func (dl *DecisionLogger) Disable() {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.enabled = false
	dl.logger.Info("decision audit logging disabled")
}
