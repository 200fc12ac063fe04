// Package store reads users, properties and photos from PostgreSQL.
// It has no write path: the tables belong to the listing system.
package store

import (
	"context"
	"errors"
	"fmt"

	"imovel-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, senha FROM usuarios WHERE username = $1`
	err := s.pool.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// GetPropertyByCode returns the first view_imoveis row with the given code.
// Every column of the view is carried over so the client sees the same
// fields the listing system exposes.
func (s *PostgresStore) GetPropertyByCode(ctx context.Context, code string) (*models.Property, error) {
	rows, err := s.pool.Query(ctx, `SELECT * FROM view_imoveis WHERE codigo = $1`, code)
	if err != nil {
		return nil, fmt.Errorf("query property: %w", err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan property: %w", err)
	}
	return PropertyFromRow(row)
}

func (s *PostgresStore) ListPhotosByProperty(ctx context.Context, propertyID int64) ([]models.Photo, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, imovel, foto FROM tb_imoveis_fotos WHERE imovel = $1 ORDER BY id`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	photos, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Photo])
	if err != nil {
		return nil, fmt.Errorf("scan photos: %w", err)
	}
	return photos, nil
}
