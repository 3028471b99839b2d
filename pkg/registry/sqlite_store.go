// Copyright 2026 © The Chimera Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/routing"
	"github.com/Birkity/project-chimera-agentic-influencer-network/pkg/skill"
	skillerrors "github.com/Birkity/project-chimera-agentic-influencer-network/pkg/errors"
)

// SQLiteStore persists execution records in SQLite for durable audit.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed record store and ensures schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureRecordSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// OpenSQLiteStore opens (or creates) the audit database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(db)
}

// Append stores a single finalized record.
func (s *SQLiteStore) Append(ctx context.Context, record Record) error {
	input, err := json.Marshal(record.Input)
	if err != nil {
		return err
	}
	var output []byte
	if record.Output != nil {
		if output, err = json.Marshal(record.Output); err != nil {
			return err
		}
	}
	var errType, errMessage string
	var errRecoverable bool
	if record.Error != nil {
		errType = string(record.Error.Type)
		errMessage = record.Error.Message
		errRecoverable = record.Error.Recoverable
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO execution_records (
			invocation_id, skill_id, category, status, started_at, finished_at,
			input_json, output_json, error_type, error_message, error_recoverable,
			confidence_score, disposition, elapsed_ns, memory_mb, cost
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.InvocationID,
		record.SkillID,
		string(record.Category),
		string(record.Status),
		record.StartedAt.UTC(),
		record.FinishedAt.UTC(),
		string(input),
		string(output),
		errType,
		errMessage,
		errRecoverable,
		record.Confidence,
		string(record.Disposition),
		record.Usage.Elapsed.Nanoseconds(),
		record.Usage.MemoryMB,
		record.Usage.Cost,
	)
	return err
}

// List returns records matching the filter in append order.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := `
		SELECT invocation_id, skill_id, category, status, started_at, finished_at,
			input_json, output_json, error_type, error_message, error_recoverable,
			confidence_score, disposition, elapsed_ns, memory_mb, cost
		FROM execution_records
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.SkillID != "" {
		addFilter("skill_id = ?", filter.SkillID)
	}
	if filter.Status != "" {
		addFilter("status = ?", string(filter.Status))
	}
	if filter.Disposition != "" {
		addFilter("disposition = ?", string(filter.Disposition))
	}
	query += where + " ORDER BY started_at ASC, rowid ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r              Record
			category       string
			status         string
			disposition    string
			inputJSON      string
			outputJSON     sql.NullString
			errType        sql.NullString
			errMessage     sql.NullString
			errRecoverable sql.NullBool
			elapsedNS      int64
		)
		if err := rows.Scan(
			&r.InvocationID,
			&r.SkillID,
			&category,
			&status,
			&r.StartedAt,
			&r.FinishedAt,
			&inputJSON,
			&outputJSON,
			&errType,
			&errMessage,
			&errRecoverable,
			&r.Confidence,
			&disposition,
			&elapsedNS,
			&r.Usage.MemoryMB,
			&r.Usage.Cost,
		); err != nil {
			return nil, err
		}
		r.Category = skill.Category(category)
		r.Status = Status(status)
		r.Disposition = routing.Disposition(disposition)
		r.Usage.Elapsed = time.Duration(elapsedNS)
		if inputJSON != "" {
			_ = json.Unmarshal([]byte(inputJSON), &r.Input)
		}
		if outputJSON.Valid && outputJSON.String != "" {
			_ = json.Unmarshal([]byte(outputJSON.String), &r.Output)
		}
		if errType.Valid && errType.String != "" {
			r.Error = &ErrorRecord{
				Type:        skillerrors.ErrorType(errType.String),
				Message:     errMessage.String,
				Recoverable: errRecoverable.Bool,
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func ensureRecordSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS execution_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			invocation_id TEXT NOT NULL UNIQUE,
			skill_id TEXT NOT NULL,
			category TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at TIMESTAMP,
			finished_at TIMESTAMP,
			input_json TEXT,
			output_json TEXT,
			error_type TEXT,
			error_message TEXT,
			error_recoverable BOOLEAN,
			confidence_score REAL,
			disposition TEXT,
			elapsed_ns INTEGER,
			memory_mb REAL,
			cost REAL
		);
		CREATE INDEX IF NOT EXISTS idx_execution_records_skill ON execution_records(skill_id);
		CREATE INDEX IF NOT EXISTS idx_execution_records_status ON execution_records(status);
		CREATE INDEX IF NOT EXISTS idx_execution_records_disposition ON execution_records(disposition);
	`)
	return err
}
