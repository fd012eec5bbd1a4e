package book_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/bookstore-backend/internal/book"
	"github.com/wichananm65/bookstore-backend/internal/infrastructure/database/inmemory"
	"github.com/wichananm65/bookstore-backend/internal/user"
)

func newCatalog(t *testing.T) (*book.Service, book.Book) {
	t.Helper()
	svc := book.NewService(inmemory.New().Books())
	b, err := svc.Create(context.Background(), book.Book{
		Title:  "Dune",
		Author: "Frank Herbert",
		Price:  decimal.RequireFromString("12.50"),
		Stock:  3,
	})
	if err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return svc, b
}

func newCatalogApp(t *testing.T) *fiber.App {
	t.Helper()
	svc, _ := newCatalog(t)
	h := book.NewHandler(svc)
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	app.Use(user.HeaderIdentity)
	h.RegisterProtectedRoutes(app)
	return app
}

func collaboratorRequest(method, target, body, scope string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "ops")
	if scope != "" {
		req.Header.Set("X-Scope", scope)
	}
	return req
}

func TestBookRoutes(t *testing.T) {
	app := newCatalogApp(t)

	req := httptest.NewRequest("GET", "/api/v1/books", nil)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), `"title":"Dune"`) {
		t.Fatalf("unexpected body: %s", string(body))
	}

	req2 := httptest.NewRequest("GET", "/api/v1/books/1", nil)
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", res2.StatusCode)
	}

	req3 := httptest.NewRequest("GET", "/api/v1/books/42", nil)
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 got %d", res3.StatusCode)
	}
}

func TestCatalogWriteRoutes(t *testing.T) {
	app := newCatalogApp(t)

	res, _ := app.Test(collaboratorRequest("POST", "/api/v1/books/1/restock", `{"quantity":4}`, user.ScopeCatalog))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), `"stock":7`) {
		t.Fatalf("unexpected restock body: %s", string(body))
	}

	res, _ = app.Test(collaboratorRequest("POST", "/api/v1/books/1/restock", `{"quantity":0}`, user.ScopeCatalog))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.StatusCode)
	}

	res, _ = app.Test(collaboratorRequest("PUT", "/api/v1/books/1/price", `{"price":"15.00"}`, user.ScopeCatalog))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}
	body, _ = io.ReadAll(res.Body)
	if !strings.Contains(string(body), `"price":"15"`) {
		t.Fatalf("unexpected reprice body: %s", string(body))
	}

	res, _ = app.Test(collaboratorRequest("PUT", "/api/v1/books/1/price", `{"price":"-1"}`, user.ScopeCatalog))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.StatusCode)
	}
	res, _ = app.Test(collaboratorRequest("PUT", "/api/v1/books/1/price", `{}`, user.ScopeCatalog))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.StatusCode)
	}
}

func TestCatalogWriteRoutes_ShopperIsForbidden(t *testing.T) {
	app := newCatalogApp(t)

	res, _ := app.Test(collaboratorRequest("POST", "/api/v1/books/1/restock", `{"quantity":4}`, ""))
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 got %d", res.StatusCode)
	}
	res, _ = app.Test(collaboratorRequest("PUT", "/api/v1/books/1/price", `{"price":"0.01"}`, "orders:read"))
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 got %d", res.StatusCode)
	}

	// neither request changed the book
	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/books/1", nil))
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), `"stock":3`) || !strings.Contains(string(body), `"price":"12.5"`) {
		t.Fatalf("book changed: %s", string(body))
	}
}

func TestService_DecrementStock(t *testing.T) {
	svc, b := newCatalog(t)
	ctx := context.Background()

	stock, err := svc.DecrementStock(ctx, b.ID, 2)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if stock != 1 {
		t.Fatalf("expected stock 1, got %d", stock)
	}

	_, err = svc.DecrementStock(ctx, b.ID, 2)
	var stockErr *book.InsufficientStockError
	if !errors.As(err, &stockErr) || stockErr.BookID != b.ID || stockErr.Available != 1 {
		t.Fatalf("expected InsufficientStockError for book %d, got %v", b.ID, err)
	}
	if !errors.Is(err, book.ErrInsufficientStock) {
		t.Fatalf("expected errors.Is ErrInsufficientStock")
	}

	got, err := svc.GetByID(ctx, b.ID)
	if err != nil || got.Stock != 1 {
		t.Fatalf("failed decrement must not change stock, got %d (%v)", got.Stock, err)
	}

	if _, err := svc.DecrementStock(ctx, 999, 1); !errors.Is(err, book.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.DecrementStock(ctx, b.ID, 0); !errors.Is(err, book.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestService_DecrementStock_ConcurrentNeverOversells(t *testing.T) {
	svc, b := newCatalog(t)
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sold int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.DecrementStock(ctx, b.ID, 1); err == nil {
				mu.Lock()
				sold++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if sold != 3 {
		t.Fatalf("expected exactly 3 units sold, got %d", sold)
	}
	got, _ := svc.GetByID(ctx, b.ID)
	if got.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", got.Stock)
	}
}

func TestService_Create_Validates(t *testing.T) {
	svc := book.NewService(inmemory.New().Books())
	ctx := context.Background()

	bad := []book.Book{
		{Title: "", Price: decimal.NewFromInt(1)},
		{Title: "x", Price: decimal.NewFromInt(-1)},
		{Title: "x", Price: decimal.NewFromInt(1), Stock: -1},
	}
	for _, b := range bad {
		if _, err := svc.Create(ctx, b); !errors.Is(err, book.ErrInvalidBook) {
			t.Fatalf("expected ErrInvalidBook for %+v, got %v", b, err)
		}
	}
}
