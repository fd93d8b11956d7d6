package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the local user view.
type Repository interface {
	Create(ctx context.Context, u User) error
	FindByID(ctx context.Context, id string) (User, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user view row.
func (r *PostgresRepository) Create(ctx context.Context, u User) error {
	userID, err := uuid.Parse(u.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, fid, username, display_name, avatar_url)
        VALUES ($1, $2, $3, $4, $5)`, userID, u.FID, u.Username, u.DisplayName, u.AvatarURL)
	return err
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, fid, username, display_name, avatar_url FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// UpdateProfile applies the patch in a single statement and returns the
// post-mutation view. Unset fields are left untouched.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	if patch.Empty() {
		return r.FindByID(ctx, id)
	}

	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if patch.DisplayName.Set {
		args = append(args, patch.DisplayName.Value)
		sets = append(sets, fmt.Sprintf("display_name = $%d", len(args)))
	}
	if patch.AvatarURL.Set {
		args = append(args, patch.AvatarURL.Value)
		sets = append(sets, fmt.Sprintf("avatar_url = $%d", len(args)))
	}
	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d
        RETURNING id, fid, username, display_name, avatar_url`, strings.Join(sets, ", "), len(args))
	row := r.db.QueryRow(ctx, query, args...)
	return scanUser(row)
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id uuid.UUID
		u  User
	)
	if err := row.Scan(&id, &u.FID, &u.Username, &u.DisplayName, &u.AvatarURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.ID = id.String()
	return u, nil
}
