package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kartsetup/setupsheet/internal/auth"
)

var (
	setupColumns  = columnList("")
	selectColumns = `s.id, s.user_id, s.team_id, ` + columnList("s.") + `, s.is_favorite, s.created_at, s.updated_at,
		u.id, u.email, u.first_name, u.last_name, u.is_manager, u.is_super_admin, u.team_id, u.created_at, u.updated_at`
)

const selectFrom = ` FROM submissions s JOIN users u ON u.id = s.user_id`

func columnList(prefix string) string {
	cols := make([]string, len(Fields))
	for i, f := range Fields {
		cols[i] = prefix + f.Column
	}
	return strings.Join(cols, ", ")
}

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new submission. ID and timestamps are written back into s.
func (r *PostgresRepository) Create(ctx context.Context, s *Submission) error {
	args := make([]any, 0, len(Fields)+3)
	args = append(args, s.UserID, s.TeamID, s.IsFavorite)
	for _, f := range Fields {
		args = append(args, f.Value(&s.Setup))
	}
	placeholders := make([]string, len(args))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`
		INSERT INTO submissions (user_id, team_id, is_favorite, %s)
		VALUES (%s)
		RETURNING id, created_at, updated_at`,
		setupColumns, strings.Join(placeholders, ", "))

	err := r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	return nil
}

// GetByID retrieves a submission of the given team together with its owner.
func (r *PostgresRepository) GetByID(ctx context.Context, teamID, id uuid.UUID) (*Submission, error) {
	query := `SELECT ` + selectColumns + selectFrom + ` WHERE s.id = $1 AND s.team_id = $2`

	s, err := scanSubmission(r.pool.QueryRow(ctx, query, id, teamID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying submission: %w", err)
	}
	return s, nil
}

// List returns the team's submissions matching filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, teamID uuid.UUID, filter ListFilter) ([]Submission, error) {
	conditions := []string{"s.team_id = $1"}
	args := []any{teamID}
	argIdx := 2

	add := func(cond string, val any) {
		conditions = append(conditions, fmt.Sprintf(cond, argIdx))
		args = append(args, val)
		argIdx++
	}

	if filter.SessionType != "" {
		add("s.session_type = $%d", Normalize("sessionType", filter.SessionType))
	}
	if filter.Track != "" {
		add("s.track = $%d", filter.Track)
	}
	if filter.Championship != "" {
		add("s.championship = $%d", filter.Championship)
	}
	if filter.Division != "" {
		add("s.division = $%d", filter.Division)
	}
	if filter.Email != "" {
		add("strpos(u.email, $%d) > 0", strings.ToLower(strings.TrimSpace(filter.Email)))
	}
	if filter.FavoritesOnly {
		conditions = append(conditions, "s.is_favorite")
	}

	query := `SELECT ` + selectColumns + selectFrom +
		` WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY s.created_at DESC, s.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	defer rows.Close()

	subs := []Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning submission row: %w", err)
		}
		subs = append(subs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating submission rows: %w", err)
	}

	return subs, nil
}

// LastByUser returns the most recent submission of userID within teamID.
func (r *PostgresRepository) LastByUser(ctx context.Context, teamID, userID uuid.UUID) (*Submission, error) {
	query := `SELECT ` + selectColumns + selectFrom +
		` WHERE s.user_id = $1 AND s.team_id = $2 ORDER BY s.created_at DESC, s.id DESC LIMIT 1`

	s, err := scanSubmission(r.pool.QueryRow(ctx, query, userID, teamID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying last submission: %w", err)
	}
	return s, nil
}

// Update writes the non-nil fields of patch and returns the refreshed row.
func (r *PostgresRepository) Update(ctx context.Context, teamID, id uuid.UUID, patch Patch) (*Submission, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	for _, f := range Fields {
		if v := *f.patch(&patch); v != nil {
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", f.Column, argIdx))
			args = append(args, *v)
			argIdx++
		}
	}
	if patch.IsFavorite != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_favorite = $%d", argIdx))
		args = append(args, *patch.IsFavorite)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, teamID, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id, teamID)

	query := fmt.Sprintf(`UPDATE submissions SET %s WHERE id = $%d AND team_id = $%d`,
		strings.Join(setClauses, ", "), argIdx, argIdx+1)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, teamID, id)
}

// Delete removes one submission of the team.
func (r *PostgresRepository) Delete(ctx context.Context, teamID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE id = $1 AND team_id = $2`, id, teamID)
	if err != nil {
		return fmt.Errorf("deleting submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes the listed submissions that belong to the team and
// returns how many rows went away. Ids of other teams are ignored.
func (r *PostgresRepository) DeleteMany(ctx context.Context, teamID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE team_id = $1 AND id = ANY($2)`, teamID, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk deleting submissions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSubmission(row pgx.Row) (*Submission, error) {
	var s Submission
	var u auth.User

	dest := make([]any, 0, len(Fields)+13)
	dest = append(dest, &s.ID, &s.UserID, &s.TeamID)
	for _, f := range Fields {
		dest = append(dest, f.value(&s.Setup))
	}
	dest = append(dest, &s.IsFavorite, &s.CreatedAt, &s.UpdatedAt,
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsManager, &u.IsSuperAdmin, &u.TeamID, &u.CreatedAt, &u.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	s.User = &u
	return &s, nil
}
