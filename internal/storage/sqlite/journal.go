package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/ember/internal/core"
)

// ThoughtJournal is the append-only session log. Rows are only ever
// inserted; crash tolerance comes from the database's WAL journal.
type ThoughtJournal struct {
	db *sql.DB
}

func NewThoughtJournal(db *sql.DB) *ThoughtJournal {
	return &ThoughtJournal{db: db}
}

func (j *ThoughtJournal) Append(ctx context.Context, sessionID string, rec core.ThoughtRecord, contextSize int) error {
	invocationsJSON, err := json.Marshal(rec.Invocations)
	if err != nil {
		return fmt.Errorf("failed to marshal invocations: %w", err)
	}

	// Empty invocation lists marshal to "null"; store as empty string.
	invStr := string(invocationsJSON)
	if invStr == "null" {
		invStr = ""
	}

	query := `INSERT INTO thoughts (session_id, record_index, origin, content, invocations, context_size, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = j.db.ExecContext(ctx, query,
		sessionID, rec.Index, string(rec.Origin), rec.Text, invStr, contextSize, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert thought: %w", err)
	}
	return nil
}

// Recent returns the last limit records of a session in chronological
// order.
func (j *ThoughtJournal) Recent(ctx context.Context, sessionID string, limit int) ([]core.ThoughtRecord, error) {
	query := `SELECT record_index, origin, content, invocations, created_at
	          FROM thoughts WHERE session_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := j.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query thoughts: %w", err)
	}
	defer rows.Close()

	var records []core.ThoughtRecord
	for rows.Next() {
		var rec core.ThoughtRecord
		var origin string
		var invStr sql.NullString

		if err := rows.Scan(&rec.Index, &origin, &rec.Text, &invStr, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan thought: %w", err)
		}
		rec.Origin = core.Origin(origin)

		if invStr.Valid && invStr.String != "" {
			if err := json.Unmarshal([]byte(invStr.String), &rec.Invocations); err != nil {
				return nil, fmt.Errorf("failed to unmarshal invocations: %w", err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse back to chronological order.
	for a, b := 0, len(records)-1; a < b; a, b = a+1, b-1 {
		records[a], records[b] = records[b], records[a]
	}
	return records, nil
}

// Count returns how many entries a session has written.
func (j *ThoughtJournal) Count(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM thoughts WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count thoughts: %w", err)
	}
	return n, nil
}
