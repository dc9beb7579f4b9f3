package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, first_name, last_name, is_manager, is_super_admin,
	password_hash, team_id, created_at, updated_at`

// PostgresRepository implements UserRepository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new UserRepository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) UserRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user record.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (email, first_name, last_name, is_manager, is_super_admin, password_hash, team_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	u.Email = NormalizeEmail(u.Email)
	err := r.pool.QueryRow(ctx, query,
		u.Email,
		u.FirstName,
		u.LastName,
		u.IsManager,
		u.IsSuperAdmin,
		u.PasswordHash,
		u.TeamID,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a single user by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a single user by email (case-insensitive).
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email))
}

// Update modifies the non-nil fields of a user and returns the new row.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*User, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if fields.FirstName != nil {
		setClauses = append(setClauses, fmt.Sprintf("first_name = $%d", argIdx))
		args = append(args, *fields.FirstName)
		argIdx++
	}
	if fields.LastName != nil {
		setClauses = append(setClauses, fmt.Sprintf("last_name = $%d", argIdx))
		args = append(args, *fields.LastName)
		argIdx++
	}
	if fields.TeamID != nil {
		setClauses = append(setClauses, fmt.Sprintf("team_id = $%d", argIdx))
		args = append(args, *fields.TeamID)
		argIdx++
	}
	if fields.PasswordHash != nil {
		setClauses = append(setClauses, fmt.Sprintf("password_hash = $%d", argIdx))
		args = append(args, *fields.PasswordHash)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d
		RETURNING `+userColumns,
		strings.Join(setClauses, ", "), argIdx)

	return r.scanOne(ctx, query, args...)
}

// UpsertManager creates or refreshes a manager account keyed by email.
func (r *PostgresRepository) UpsertManager(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (email, first_name, last_name, is_manager, is_super_admin, password_hash, team_id)
		VALUES ($1, $2, $3, TRUE, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			is_manager = TRUE,
			is_super_admin = EXCLUDED.is_super_admin,
			password_hash = COALESCE(EXCLUDED.password_hash, users.password_hash),
			team_id = EXCLUDED.team_id,
			updated_at = NOW()
		RETURNING ` + userColumns

	u.Email = NormalizeEmail(u.Email)
	got, err := scanUser(r.pool.QueryRow(ctx, query,
		u.Email, u.FirstName, u.LastName, u.IsSuperAdmin, u.PasswordHash, u.TeamID,
	))
	if err != nil {
		return fmt.Errorf("upserting manager: %w", err)
	}
	*u = *got
	return nil
}

// ListManagers returns every manager whose home team is teamID.
func (r *PostgresRepository) ListManagers(ctx context.Context, teamID uuid.UUID) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE team_id = $1 AND is_manager ORDER BY email ASC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing managers: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsManager, &u.IsSuperAdmin,
		&u.PasswordHash, &u.TeamID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// NormalizeEmail trims and lower-cases an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
