// Package poselog records dispatched commands to sqlite for after-the-fact
// review of a teleoperation session. The log is optional diagnostics; the
// bridge itself stays stateless across restarts.
package poselog

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// Log is an append-only dispatch journal.
type Log struct {
	db *sql.DB
}

// Open creates or opens the journal at path.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS dispatches (
			source TEXT,
			kind TEXT,
			servo_writes INTEGER,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Log{db: db}, nil
}

// Record journals one applied command: which transport it arrived on, its
// wire kind, and how many actuator writes it produced.
func (l *Log) Record(source, kind string, servoWrites int) error {
	_, err := l.db.Exec(
		"INSERT INTO dispatches (source, kind, servo_writes) VALUES (?, ?, ?)",
		source, kind, servoWrites,
	)
	return err
}

// Dispatch is one journaled command.
type Dispatch struct {
	Source      string
	Kind        string
	ServoWrites int
}

// Recent returns up to n journal entries, newest first.
func (l *Log) Recent(n int) ([]Dispatch, error) {
	rows, err := l.db.Query(
		"SELECT source, kind, servo_writes FROM dispatches ORDER BY rowid DESC LIMIT ?", n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dispatch
	for rows.Next() {
		var d Dispatch
		if err := rows.Scan(&d.Source, &d.Kind, &d.ServoWrites); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}
