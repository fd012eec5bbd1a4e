package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/bookstore-backend/internal/infrastructure/database/postgres"
)

type PostgresRepository struct {
	db postgres.DBTX
}

const (
	listBooksQuery = `
		SELECT id, title, author, price, stock, created_at, updated_at
		FROM books
		ORDER BY id
	`
	getBookByIDQuery = `
		SELECT id, title, author, price, stock, created_at, updated_at
		FROM books
		WHERE id = $1
	`
	// rows are locked in id order so concurrent checkouts cannot deadlock
	lockBooksQuery = `
		SELECT id, title, author, price, stock, created_at, updated_at
		FROM books
		WHERE id = ANY($1::bigint[])
		ORDER BY id
		FOR UPDATE
	`
	insertBookQuery = `
		INSERT INTO books (title, author, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	decrementStockQuery = `
		UPDATE books
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
		RETURNING stock
	`
	restockQuery = `
		UPDATE books
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING stock
	`
	repriceQuery = `
		UPDATE books
		SET price = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, title, author, price, stock, created_at, updated_at
	`
	stockQuery = `SELECT stock FROM books WHERE id = $1`
)

// NewPostgresRepository accepts a *sql.DB or a *sql.Tx.
func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Stock, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *PostgresRepository) List(ctx context.Context) ([]Book, error) {
	rows, err := r.db.QueryContext(ctx, listBooksQuery)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	out := make([]Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Book, error) {
	b, err := scanBook(r.db.QueryRowContext(ctx, getBookByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, ErrNotFound
	}
	if err != nil {
		return Book{}, fmt.Errorf("query book %d: %w", id, err)
	}
	return b, nil
}

// LockByIDs reads the given books with row locks held until the surrounding
// transaction ends. Missing ids are simply absent from the result.
func (r *PostgresRepository) LockByIDs(ctx context.Context, ids []int64) (map[int64]Book, error) {
	out := make(map[int64]Book, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, lockBooksQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("lock books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan locked book: %w", err)
		}
		out[b.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locked books: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, b Book) (Book, error) {
	err := r.db.QueryRowContext(ctx, insertBookQuery, b.Title, b.Author, b.Price, b.Stock).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if postgres.Code(err) == postgres.CheckViolation {
			return Book{}, ErrInvalidBook
		}
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) DecrementStock(ctx context.Context, id int64, qty int) (int, error) {
	var stock int
	err := r.db.QueryRowContext(ctx, decrementStockQuery, qty, id).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("decrement stock for book %d: %w", id, err)
	}

	// nothing updated: either the book is gone or the guard rejected qty
	if err := r.db.QueryRowContext(ctx, stockQuery, id).Scan(&stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("read stock for book %d: %w", id, err)
	}
	return 0, &InsufficientStockError{BookID: id, Requested: qty, Available: stock}
}

func (r *PostgresRepository) Restock(ctx context.Context, id int64, qty int) (int, error) {
	var stock int
	err := r.db.QueryRowContext(ctx, restockQuery, qty, id).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("restock book %d: %w", id, err)
	}
	return stock, nil
}

func (r *PostgresRepository) Reprice(ctx context.Context, id int64, price decimal.Decimal) (Book, error) {
	b, err := scanBook(r.db.QueryRowContext(ctx, repriceQuery, price, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, ErrNotFound
	}
	if err != nil {
		if postgres.Code(err) == postgres.CheckViolation {
			return Book{}, ErrInvalidPrice
		}
		return Book{}, fmt.Errorf("reprice book %d: %w", id, err)
	}
	return b, nil
}
