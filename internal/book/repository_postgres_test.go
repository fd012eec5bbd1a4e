package book

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/bookstore-backend/internal/infrastructure/database/postgres"
)

var (
	bookColumns = []string{"id", "title", "author", "price", "stock", "created_at", "updated_at"}
	now         = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgresRepository_List(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(bookColumns).
		AddRow(1, "Dune", "Frank Herbert", "12.50", 3, now, now).
		AddRow(2, "Emma", "Jane Austen", "8.00", 0, now, now)
	mock.ExpectQuery("FROM books").WillReturnRows(rows)

	books, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if !books[0].Price.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("unexpected price %s", books[0].Price)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM books").WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows(bookColumns))

	_, err := repo.GetByID(context.Background(), 9)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_DecrementStock(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE books").WithArgs(2, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(1))

	stock, err := repo.DecrementStock(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if stock != 1 {
		t.Fatalf("expected stock 1, got %d", stock)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_DecrementStock_Insufficient(t *testing.T) {
	repo, mock := newMockRepo(t)

	// guard rejects the update, follow-up read reports what is left
	mock.ExpectQuery("UPDATE books").WithArgs(5, int64(1)).WillReturnRows(sqlmock.NewRows([]string{"stock"}))
	mock.ExpectQuery("SELECT stock FROM books").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(3))

	_, err := repo.DecrementStock(context.Background(), 1, 5)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected *InsufficientStockError, got %T", err)
	}
	if stockErr.BookID != 1 || stockErr.Requested != 5 || stockErr.Available != 3 {
		t.Fatalf("unexpected error detail %+v", stockErr)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_DecrementStock_Missing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE books").WithArgs(1, int64(42)).WillReturnRows(sqlmock.NewRows([]string{"stock"}))
	mock.ExpectQuery("SELECT stock FROM books").WithArgs(int64(42)).WillReturnRows(sqlmock.NewRows([]string{"stock"}))

	_, err := repo.DecrementStock(context.Background(), 42, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresRepository_LockByIDs(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(bookColumns).
		AddRow(1, "Dune", "Frank Herbert", "12.50", 3, now, now)
	mock.ExpectQuery("FOR UPDATE").WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)

	locked, err := repo.LockByIDs(context.Background(), []int64{1, 7})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if _, ok := locked[1]; !ok {
		t.Fatalf("expected book 1 to be locked, got %+v", locked)
	}
	if _, ok := locked[7]; ok {
		t.Fatalf("book 7 does not exist and must be absent")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_Create_CheckViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO books").
		WithArgs("Bad", "", sqlmock.AnyArg(), -1).
		WillReturnError(&pgconn.PgError{Code: postgres.CheckViolation})

	_, err := repo.Create(context.Background(), Book{Title: "Bad", Price: decimal.NewFromInt(1), Stock: -1})
	if !errors.Is(err, ErrInvalidBook) {
		t.Fatalf("expected ErrInvalidBook, got %v", err)
	}
}

func TestPostgresRepository_Restock_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE books").WithArgs(4, int64(3)).WillReturnRows(sqlmock.NewRows([]string{"stock"}))

	_, err := repo.Restock(context.Background(), 3, 4)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresRepository_Reprice(t *testing.T) {
	repo, mock := newMockRepo(t)

	price := decimal.RequireFromString("15.00")
	mock.ExpectQuery("SET price = \\$1").WithArgs(price, int64(1)).
		WillReturnRows(sqlmock.NewRows(bookColumns).AddRow(1, "Dune", "Frank Herbert", "15.00", 3, now, now))

	b, err := repo.Reprice(context.Background(), 1, price)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if !b.Price.Equal(price) {
		t.Fatalf("unexpected price %s", b.Price)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_Reprice_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SET price").WillReturnRows(sqlmock.NewRows(bookColumns))

	if _, err := repo.Reprice(context.Background(), 9, decimal.NewFromInt(1)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
