package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const teamColumns = `id, slug, name, logo_url, primary_color, email_from_name,
	manager_emails, form_config, dropdown_options, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new team record.
func (r *PostgresRepository) Create(ctx context.Context, t *Team) error {
	query := `
		INSERT INTO teams (slug, name, logo_url, primary_color, email_from_name,
		                   manager_emails, form_config, dropdown_options)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, insertArgs(t)...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("inserting team: %w", err)
	}

	return nil
}

// Upsert inserts the team or, when the slug already exists, overwrites its
// branding and configuration. The stored ID is written back into t.
func (r *PostgresRepository) Upsert(ctx context.Context, t *Team) error {
	query := `
		INSERT INTO teams (slug, name, logo_url, primary_color, email_from_name,
		                   manager_emails, form_config, dropdown_options)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			logo_url = EXCLUDED.logo_url,
			primary_color = EXCLUDED.primary_color,
			email_from_name = EXCLUDED.email_from_name,
			manager_emails = EXCLUDED.manager_emails,
			form_config = EXCLUDED.form_config,
			dropdown_options = EXCLUDED.dropdown_options,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, insertArgs(t)...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting team: %w", err)
	}
	return nil
}

// GetByID retrieves a single team by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	return r.scanOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
}

// GetBySlug retrieves a single team by its URL slug.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*Team, error) {
	return r.scanOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE slug = $1`, slug)
}

// List retrieves all teams ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]Team, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	teams := []Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team rows: %w", err)
	}

	return teams, nil
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Team, error) {
	t, err := scanTeam(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}
	return t, nil
}

func scanTeam(row pgx.Row) (*Team, error) {
	var t Team
	err := row.Scan(
		&t.ID, &t.Slug, &t.Name, &t.LogoURL, &t.PrimaryColor, &t.EmailFromName,
		&t.ManagerEmails, &t.FormConfig, &t.DropdownOptions, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if t.ManagerEmails == nil {
		t.ManagerEmails = []string{}
	}
	return &t, nil
}

func insertArgs(t *Team) []any {
	emails := t.ManagerEmails
	if emails == nil {
		emails = []string{}
	}
	var dropdowns any
	if len(t.DropdownOptions) > 0 {
		dropdowns = t.DropdownOptions
	}
	return []any{
		t.Slug, t.Name, t.LogoURL, t.PrimaryColor, t.EmailFromName,
		emails, t.FormConfig, dropdowns,
	}
}
