package leads

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const leadColumns = `id, type, name, phone, email, truck_make, truck_model, issue, location,
	urgency, is_fleet, fleet_size, created_at, source, status`

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db pgxQuerier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, lead *Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	if _, err := r.db.Exec(ctx, query,
		lead.ID,
		string(lead.Type),
		lead.Name,
		lead.Phone,
		lead.Email,
		lead.TruckMake,
		lead.TruckModel,
		lead.Issue,
		lead.Location,
		string(lead.Urgency),
		lead.IsFleet,
		lead.FleetSize,
		lead.Timestamp,
		lead.Source,
		string(lead.Status),
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Type != "" {
		query += " AND type = " + next(string(filter.Type))
	}
	if filter.Status != "" {
		query += " AND status = " + next(string(filter.Status))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p := next("%" + search + "%")
		query += " AND " + searchPredicate("ILIKE", func() string { return p })
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + next(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + next(filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
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

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Lead, error) {
	query := `UPDATE leads SET status = $2 WHERE id = $1 RETURNING ` + leadColumns
	lead, err := scanLead(r.db.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: update status failed: %w", err)
	}
	return lead, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("leads: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		lead    Lead
		typ     string
		urgency string
		status  string
	)
	if err := row.Scan(
		&lead.ID,
		&typ,
		&lead.Name,
		&lead.Phone,
		&lead.Email,
		&lead.TruckMake,
		&lead.TruckModel,
		&lead.Issue,
		&lead.Location,
		&urgency,
		&lead.IsFleet,
		&lead.FleetSize,
		&lead.Timestamp,
		&lead.Source,
		&status,
	); err != nil {
		return nil, err
	}
	lead.Type = Type(typ)
	lead.Urgency = Urgency(urgency)
	lead.Status = Status(status)
	return &lead, nil
}
