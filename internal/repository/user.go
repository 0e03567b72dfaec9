package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ead/authuser/internal/database"
	"github.com/ead/authuser/internal/model"
	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// SurrealUserRepository handles user data access on SurrealDB
type SurrealUserRepository struct {
	db database.Database
}

// NewSurrealUserRepository creates a new user repository
func NewSurrealUserRepository(db database.Database) *SurrealUserRepository {
	return &SurrealUserRepository{db: db}
}

// FindAllPageable returns one page of users matching the request filters
func (r *SurrealUserRepository) FindAllPageable(ctx context.Context, req model.PageRequest) (*model.Page[model.User], error) {
	req = req.Normalize()
	filter := newUserFilter(req)

	countVars := map[string]interface{}{}
	where := filter.surrealWhere(countVars)

	countResult, err := r.db.QueryOne(ctx, `SELECT count() AS count FROM user`+where+` GROUP ALL`, countVars)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	total := extractCount(countResult)
	if total == 0 {
		return model.NewPage([]model.User{}, req, 0), nil
	}

	vars := map[string]interface{}{
		"limit":  req.Size,
		"offset": req.Offset(),
	}
	where = filter.surrealWhere(vars)
	query := fmt.Sprintf(`SELECT * FROM user%s ORDER BY %s %s, user_id ASC LIMIT $limit START $offset`,
		where, sortColumn(req.Sort), sortDirection(req.Direction))

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users, err := parseUserResults(result)
	if err != nil {
		return nil, err
	}
	return model.NewPage(users, req, total), nil
}

// FindByID retrieves a user by ID
func (r *SurrealUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT * FROM type::thing('user', $id)`
	vars := map[string]interface{}{"id": id.String()}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", database.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: user %s", database.ErrNotFound, id)
	}
	return parseUserRecord(data)
}

// Save inserts or replaces the user keyed by its UserID
func (r *SurrealUserRepository) Save(ctx context.Context, user *model.User) (*model.User, error) {
	saved := *user
	if saved.UserID == uuid.Nil {
		saved.UserID = uuid.New()
	}
	saved.CreationDate = storageTime(saved.CreationDate)
	saved.LastUpdateDate = storageTime(saved.LastUpdateDate)

	query := `
		UPSERT type::thing('user', $id) CONTENT {
			user_id: $id,
			user_name: $user_name,
			email: $email,
			password: $password,
			full_name: $full_name,
			user_status: $user_status,
			user_type: $user_type,
			phone_number: $phone_number,
			cpf: $cpf,
			image_url: IF $image_url IS NOT NULL THEN $image_url ELSE NONE END,
			creation_date: $creation_date,
			last_update_date: $last_update_date
		}
	`

	vars := map[string]interface{}{
		"id":               saved.UserID.String(),
		"user_name":        saved.UserName,
		"email":            saved.Email,
		"password":         saved.Password,
		"full_name":        saved.FullName,
		"user_status":      string(saved.UserStatus),
		"user_type":        string(saved.UserType),
		"phone_number":     saved.PhoneNumber,
		"cpf":              saved.CPF,
		"image_url":        ptrToNone(saved.ImageURL),
		"creation_date":    models.CustomDateTime{Time: saved.CreationDate},
		"last_update_date": models.CustomDateTime{Time: saved.LastUpdateDate},
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: user name or email already exists", database.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return &saved, nil
}

// Delete deletes a user
func (r *SurrealUserRepository) Delete(ctx context.Context, user *model.User) error {
	query := `DELETE type::thing('user', $id)`
	vars := map[string]interface{}{"id": user.UserID.String()}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Ping checks the underlying connection
func (r *SurrealUserRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func parseUserResults(result []interface{}) ([]model.User, error) {
	rows := extractQueryResults(result)
	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		data, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		user, err := parseUserRecord(data)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

func parseUserRecord(data map[string]interface{}) (*model.User, error) {
	rawID := getString(data, "user_id")
	if rawID == "" {
		if id, ok := data["id"]; ok {
			rawID = recordKey(convertSurrealID(id))
		}
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("unexpected user id %q: %w", rawID, err)
	}

	return &model.User{
		UserID:         id,
		UserName:       getString(data, "user_name"),
		Email:          getString(data, "email"),
		Password:       getString(data, "password"),
		FullName:       getString(data, "full_name"),
		UserStatus:     model.UserStatus(getString(data, "user_status")),
		UserType:       model.UserType(getString(data, "user_type")),
		PhoneNumber:    getString(data, "phone_number"),
		CPF:            getString(data, "cpf"),
		ImageURL:       getStringPtr(data, "image_url"),
		CreationDate:   parseTime(data["creation_date"]),
		LastUpdateDate: parseTime(data["last_update_date"]),
	}, nil
}

// storageTime truncates to the precision every backend stores
func storageTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// ptrToNone converts a string pointer to its value, or nil for the NONE branch of the query
func ptrToNone(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
