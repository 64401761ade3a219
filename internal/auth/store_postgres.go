package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"medregistry/pkg/platform/sentinel"
)

// PostgresUserStore persists accounts in PostgreSQL. Challenges never touch
// the database; they live in redis or memory via OTPStore.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func translateUserPQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return sentinel.ErrConflict
	}
	return err
}

func (s *PostgresUserStore) CreateUser(ctx context.Context, user User) error {
	query := `
		INSERT INTO users (id, username, email, phone, user_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.Phone, user.UserType, user.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert user: %w", translateUserPQ(err))
	}
	return nil
}

func (s *PostgresUserStore) GetUserByPhone(ctx context.Context, phone string) (User, error) {
	query := `
		SELECT id, username, email, phone, user_type, created_at
		FROM users WHERE phone = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, phone))
}

func (s *PostgresUserStore) GetUserByID(ctx context.Context, id string) (User, error) {
	query := `
		SELECT id, username, email, phone, user_type, created_at
		FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresUserStore) scanUser(row *sql.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &user.UserType, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, sentinel.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}
