package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ead/authuser/internal/database"
	"github.com/ead/authuser/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// PgxQuerier is the subset of *pgxpool.Pool used by PostgresUserRepository
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

const userSelectColumns = `user_id, user_name, email, password, full_name, user_status, user_type,
	phone_number, cpf, image_url, creation_date, last_update_date`

// PostgresUserRepository handles user data access on PostgreSQL
type PostgresUserRepository struct {
	db PgxQuerier
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db PgxQuerier) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// FindAllPageable returns one page of users matching the request filters
func (r *PostgresUserRepository) FindAllPageable(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error) {
	req = req.Normalize()
	where, args := newUserFilter(req).postgresWhere(nil)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM tb_users`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if total == 0 {
		return model.NewPage([]model.User{}, req, 0), nil
	}

	args = append(args, req.Size, req.Offset())
	query := fmt.Sprintf(`SELECT %s FROM tb_users%s ORDER BY %s %s, user_id ASC LIMIT $%d OFFSET $%d`,
		userSelectColumns, where, sortColumn(req.Sort), sortDirection(req.Direction), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, req.Size)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return model.NewPage(users, req, total), nil
}

// FindByID retrieves a user by ID
func (r *PostgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userSelectColumns+` FROM tb_users WHERE user_id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", database.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Save inserts or replaces the user keyed by its UserID
func (r *PostgresUserRepository) Save(ctx context.Context, user *model.User) (*model.User, error) {
	saved := *user
	if saved.UserID == uuid.Nil {
		saved.UserID = uuid.New()
	}
	saved.CreationDate = storageTime(saved.CreationDate)
	saved.LastUpdateDate = storageTime(saved.LastUpdateDate)

	query := `
		INSERT INTO tb_users (` + userSelectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO UPDATE SET
			user_name = EXCLUDED.user_name,
			email = EXCLUDED.email,
			password = EXCLUDED.password,
			full_name = EXCLUDED.full_name,
			user_status = EXCLUDED.user_status,
			user_type = EXCLUDED.user_type,
			phone_number = EXCLUDED.phone_number,
			cpf = EXCLUDED.cpf,
			image_url = EXCLUDED.image_url,
			last_update_date = EXCLUDED.last_update_date
	`

	_, err := r.db.Exec(ctx, query,
		saved.UserID, saved.UserName, saved.Email, saved.Password, saved.FullName,
		string(saved.UserStatus), string(saved.UserType), saved.PhoneNumber, saved.CPF,
		saved.ImageURL, saved.CreationDate, saved.LastUpdateDate,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%w: user name or email already exists", database.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return &saved, nil
}

// Delete deletes a user
func (r *PostgresUserRepository) Delete(ctx context.Context, user *model.User) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM tb_users WHERE user_id = $1`, user.UserID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Ping checks the underlying pool
func (r *PostgresUserRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", database.ErrConnection, err)
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u             model.User
		status, uType string
	)
	err := row.Scan(
		&u.UserID, &u.UserName, &u.Email, &u.Password, &u.FullName, &status, &uType,
		&u.PhoneNumber, &u.CPF, &u.ImageURL, &u.CreationDate, &u.LastUpdateDate,
	)
	if err != nil {
		return nil, err
	}
	u.UserStatus = model.UserStatus(status)
	u.UserType = model.UserType(uType)
	u.CreationDate = u.CreationDate.UTC()
	u.LastUpdateDate = u.LastUpdateDate.UTC()
	return &u, nil
}
