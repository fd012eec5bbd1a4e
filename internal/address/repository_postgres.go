package address

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wichananm65/bookstore-backend/internal/infrastructure/database/postgres"
)

type PostgresRepository struct {
	db postgres.DBTX
}

const (
	addressColumns     = `id, user_id, address_desc, phone, address_name, created_at, updated_at`
	listAddressesQuery = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY id`
	getAddressQuery    = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND id = $2`
	insertAddressQuery = `
		INSERT INTO addresses (user_id, address_desc, phone, address_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + addressColumns
	updateAddressQuery = `
		UPDATE addresses
		SET address_desc = $3, phone = $4, address_name = $5, updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING ` + addressColumns
	deleteAddressQuery = `DELETE FROM addresses WHERE user_id = $1 AND id = $2`
)

func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (Address, error) {
	var a Address
	err := row.Scan(&a.AddressID, &a.UserID, &a.AddressDesc, &a.Phone, &a.AddressName, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *PostgresRepository) GetAddresses(ctx context.Context, userID string) ([]Address, error) {
	rows, err := r.db.QueryContext(ctx, listAddressesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetAddress(ctx context.Context, userID string, addressID int64) (Address, error) {
	return r.one(ctx, "query address", getAddressQuery, userID, addressID)
}

func (r *PostgresRepository) AddAddress(ctx context.Context, a Address) (Address, error) {
	return r.one(ctx, "insert address", insertAddressQuery, a.UserID, a.AddressDesc, a.Phone, a.AddressName)
}

func (r *PostgresRepository) UpdateAddress(ctx context.Context, a Address) (Address, error) {
	return r.one(ctx, "update address", updateAddressQuery, a.UserID, a.AddressID, a.AddressDesc, a.Phone, a.AddressName)
}

func (r *PostgresRepository) DeleteAddress(ctx context.Context, userID string, addressID int64) error {
	res, err := r.db.ExecContext(ctx, deleteAddressQuery, userID, addressID)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) one(ctx context.Context, op, query string, args ...any) (Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}
