package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"medregistry/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func translatePQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return sentinel.ErrConflict
	}
	return err
}

func (s *PostgresStore) Create(ctx context.Context, c Contact) error {
	query := `INSERT INTO contacts (phone, name, email, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := s.db.ExecContext(ctx, query, c.Phone, c.Name, c.Email, c.CreatedAt); err != nil {
		return fmt.Errorf("insert contact: %w", translatePQ(err))
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, phone string) (Contact, error) {
	query := `SELECT phone, name, email, created_at FROM contacts WHERE phone = $1`
	var c Contact
	err := s.db.QueryRowContext(ctx, query, phone).Scan(&c.Phone, &c.Name, &c.Email, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Contact{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Contact{}, fmt.Errorf("select contact: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Contact, error) {
	query := `SELECT phone, name, email, created_at FROM contacts ORDER BY phone`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var list []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.Phone, &c.Name, &c.Email, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, c Contact) error {
	query := `UPDATE contacts SET name = $2, email = $3 WHERE phone = $1`
	res, err := s.db.ExecContext(ctx, query, c.Phone, c.Name, c.Email)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return requireRowAffected(res)
}

func (s *PostgresStore) Delete(ctx context.Context, phone string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE phone = $1`, phone)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
