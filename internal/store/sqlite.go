package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/claim-router/internal/model"
)

// DefaultSQLiteDSN is a process-local in-memory database.
const DefaultSQLiteDSN = "file::memory:?cache=shared"

// SQLiteStore implements Store using modernc.org/sqlite. The whole
// decision is kept as a JSON document next to the indexed columns.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens a SQLite database. A single connection serializes writes
// and keeps an in-memory database alive for the life of the store.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS decisions (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	claim_id      TEXT NOT NULL,
	assigned_team TEXT NOT NULL,
	routed_by     TEXT NOT NULL DEFAULT '',
	is_fraud      INTEGER NOT NULL DEFAULT 0,
	decision      TEXT NOT NULL,
	decided_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_claim_id ON decisions(claim_id);
CREATE INDEX IF NOT EXISTS idx_decisions_team ON decisions(assigned_team);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDecision(ctx context.Context, dec *model.DecisionRecord) error {
	if dec == nil {
		return eris.New("sqlite: nil decision")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save decision")
	}
	defer tx.Rollback() //nolint:errcheck

	assignID(dec)
	decisionJSON, err := json.Marshal(dec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal decision")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO decisions (claim_id, assigned_team, routed_by, is_fraud, decision, decided_at) VALUES (?, ?, ?, ?, ?, ?)`,
		dec.ClaimID, dec.AssignedTeam, string(dec.RoutedBy), dec.IsPotentialFraud, string(decisionJSON), dec.DecidedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert decision %s", dec.ClaimID)
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit decision")
}

func (s *SQLiteStore) GetDecision(ctx context.Context, claimID string) (*model.DecisionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT decision FROM decisions WHERE claim_id = ? ORDER BY seq DESC LIMIT 1`,
		claimID,
	)
	dec, err := scanDecision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get decision %s", claimID)
	}
	return dec, err
}

func (s *SQLiteStore) ListDecisions(ctx context.Context, filter DecisionFilter) ([]model.DecisionRecord, error) {
	query := `SELECT decision FROM decisions WHERE 1=1`
	var args []any

	if filter.Team != "" {
		query += ` AND assigned_team = ?`
		args = append(args, filter.Team)
	}
	query += ` ORDER BY seq ASC`

	// SQLite needs a LIMIT before OFFSET; -1 means no limit.
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list decisions")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.DecisionRecord{}
	for rows.Next() {
		dec, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *dec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list decisions iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDecision(row scannable) (*model.DecisionRecord, error) {
	var decisionJSON string
	if err := row.Scan(&decisionJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "sqlite: scan decision")
	}
	var dec model.DecisionRecord
	if err := json.Unmarshal([]byte(decisionJSON), &dec); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal decision")
	}
	return &dec, nil
}
