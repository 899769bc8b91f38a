package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS leads (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	name        TEXT NOT NULL,
	phone       TEXT NOT NULL,
	email       TEXT NOT NULL DEFAULT '',
	truck_make  TEXT NOT NULL DEFAULT '',
	truck_model TEXT NOT NULL DEFAULT '',
	issue       TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	urgency     TEXT NOT NULL DEFAULT '',
	is_fleet    INTEGER NOT NULL DEFAULT 0,
	fleet_size  INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	source      TEXT NOT NULL,
	status      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS leads_created_at_idx ON leads (created_at DESC);
`

// SQLiteRepository is a file-backed ledger for single-node deployments.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the ledger file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("leads: open sqlite: %w", err)
	}
	// One connection: sqlite allows a single writer anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("leads: create sqlite schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Append(ctx context.Context, lead *Lead) error {
	query := `INSERT INTO leads (id, type, name, phone, email, truck_make, truck_model, issue, location,
		urgency, is_fleet, fleet_size, created_at, source, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		lead.ID, string(lead.Type), lead.Name, lead.Phone, lead.Email, lead.TruckMake, lead.TruckModel,
		lead.Issue, lead.Location, string(lead.Urgency), lead.IsFleet, lead.FleetSize,
		lead.Timestamp.UnixNano(), lead.Source, string(lead.Status),
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Lead, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	lead, err := scanSQLiteLead(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

func (r *SQLiteRepository) List(ctx context.Context, filter Filter) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	var args []any
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p := "%" + search + "%"
		query += " AND " + searchPredicate("LIKE", func() string {
			args = append(args, p)
			return "?"
		})
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		lead, err := scanSQLiteLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE leads SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return nil, fmt.Errorf("leads: update status failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrLeadNotFound
	}
	return r.Get(ctx, id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("leads: delete failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLeadNotFound
	}
	return nil
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLead(row sqlScanner) (*Lead, error) {
	var (
		lead      Lead
		typ       string
		urgency   string
		status    string
		isFleet   int64
		createdAt int64
	)
	if err := row.Scan(
		&lead.ID, &typ, &lead.Name, &lead.Phone, &lead.Email, &lead.TruckMake, &lead.TruckModel,
		&lead.Issue, &lead.Location, &urgency, &isFleet, &lead.FleetSize, &createdAt,
		&lead.Source, &status,
	); err != nil {
		return nil, err
	}
	lead.Type = Type(typ)
	lead.Urgency = Urgency(urgency)
	lead.Status = Status(status)
	lead.IsFleet = isFleet != 0
	lead.Timestamp = time.Unix(0, createdAt).UTC()
	return &lead, nil
}
