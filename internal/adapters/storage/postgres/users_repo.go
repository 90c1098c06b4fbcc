package postgres

import (
	"context"
	"database/sql"
	"strings"

	"med-adherence/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			user_id, first_name, last_name, created_at
		) VALUES ($1,$2,$3,$4)
	`,
		u.ID,
		u.FirstName,
		u.LastName,
		u.CreatedAt,
	)
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, first_name, last_name, created_at
		FROM users
		WHERE user_id = $1
	`, id)

	var u users.User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}
	return u, nil
}
