package books

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"library-backend/internal/platform/db"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	conn, err := db.Connect(db.DatabaseConfig{Path: filepath.Join(t.TempDir(), "library.db")})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.EnsureSchema(context.Background(), conn); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return NewService(conn)
}

func assertCode(t *testing.T, err error, want Code) {
	t.Helper()
	var api *APIError
	if !errors.As(err, &api) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if api.Code != want {
		t.Fatalf("expected code %s, got %s", want, api.Code)
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestAddBook_AndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	in := CreateBookRequest{
		BookID: "B1", Title: "Dune", Author: "Frank Herbert",
		Genre: strPtr("SF"), Year: intPtr(1965), Quantity: 3,
	}
	res, err := svc.AddBook(ctx, in)
	if err != nil {
		t.Fatalf("AddBook: %v", err)
	}
	if res.BookID != "B1" || res.Quantity != 3 {
		t.Errorf("unexpected response: %+v", res)
	}

	got, err := svc.GetBook(ctx, "B1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Dune" || got.Author != "Frank Herbert" {
		t.Errorf("unexpected book: %+v", got)
	}
	if got.Year == nil || *got.Year != 1965 {
		t.Errorf("expected year 1965, got %v", got.Year)
	}
}

func TestAddBook_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateBookRequest
	}{
		{"empty book_id", CreateBookRequest{Title: "T", Author: "A", Quantity: 1}},
		{"blank title", CreateBookRequest{BookID: "B1", Title: "   ", Author: "A", Quantity: 1}},
		{"empty author", CreateBookRequest{BookID: "B1", Title: "T", Quantity: 1}},
		{"negative quantity", CreateBookRequest{BookID: "B1", Title: "T", Author: "A", Quantity: -1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddBook(ctx, tc.in)
			assertCode(t, err, CodeValidation)
		})
	}
}

func TestAddBook_DuplicateLeavesRowUnmodified(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddBook(ctx, CreateBookRequest{BookID: "B1", Title: "Dune", Author: "Herbert", Quantity: 3}); err != nil {
		t.Fatalf("AddBook: %v", err)
	}

	_, err := svc.AddBook(ctx, CreateBookRequest{BookID: "B1", Title: "Other", Author: "Someone", Quantity: 9})
	assertCode(t, err, CodeDuplicateKey)

	got, err := svc.GetBook(ctx, "B1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Dune" || got.Author != "Herbert" || got.Quantity != 3 {
		t.Errorf("existing row was modified: %+v", got)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.GetBook(context.Background(), "nope")
	assertCode(t, err, CodeNotFound)
}

func TestUpdateBook_PartialFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddBook(ctx, CreateBookRequest{
		BookID: "B1", Title: "Dune", Author: "Herbert", Genre: strPtr("SF"), Year: intPtr(1965), Quantity: 3,
	}); err != nil {
		t.Fatalf("AddBook: %v", err)
	}

	// quantityだけ更新。他フィールドは触らないこと
	got, err := svc.UpdateBook(ctx, "B1", UpdateBookRequest{Quantity: intPtr(5)})
	if err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	if got.Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", got.Quantity)
	}
	if got.Title != "Dune" || got.Author != "Herbert" {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if got.Genre == nil || *got.Genre != "SF" || got.Year == nil || *got.Year != 1965 {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestUpdateBook_NoFieldsIsNoop(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddBook(ctx, CreateBookRequest{BookID: "B1", Title: "Dune", Author: "Herbert", Quantity: 3}); err != nil {
		t.Fatalf("AddBook: %v", err)
	}

	got, err := svc.UpdateBook(ctx, "B1", UpdateBookRequest{})
	if err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	if got.Title != "Dune" || got.Quantity != 3 {
		t.Errorf("no-op update changed the row: %+v", got)
	}
}

func TestUpdateBook_NotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.UpdateBook(context.Background(), "nope", UpdateBookRequest{Quantity: intPtr(1)})
	assertCode(t, err, CodeNotFound)
}

func TestUpdateBook_NegativeQuantityRejectedBeforeWrite(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddBook(ctx, CreateBookRequest{BookID: "B1", Title: "Dune", Author: "Herbert", Quantity: 3}); err != nil {
		t.Fatalf("AddBook: %v", err)
	}

	_, err := svc.UpdateBook(ctx, "B1", UpdateBookRequest{Title: strPtr("Changed"), Quantity: intPtr(-1)})
	assertCode(t, err, CodeValidation)

	// どのカラムも書かれていないこと（all-or-nothing）
	got, err := svc.GetBook(ctx, "B1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Dune" || got.Quantity != 3 {
		t.Errorf("row partially written: %+v", got)
	}
}

func TestDeleteBook_Idempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddBook(ctx, CreateBookRequest{BookID: "B1", Title: "Dune", Author: "Herbert", Quantity: 3}); err != nil {
		t.Fatalf("AddBook: %v", err)
	}
	if err := svc.DeleteBook(ctx, "B1"); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	// 存在しないIDでも成功する
	if err := svc.DeleteBook(ctx, "B1"); err != nil {
		t.Fatalf("DeleteBook (missing id): %v", err)
	}
	if err := svc.DeleteBook(ctx, "never-existed"); err != nil {
		t.Fatalf("DeleteBook (never existed): %v", err)
	}

	_, err := svc.GetBook(ctx, "B1")
	assertCode(t, err, CodeNotFound)
}

func TestGetAllBooks(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, id := range []string{"B1", "B2", "B3"} {
		if _, err := svc.AddBook(ctx, CreateBookRequest{BookID: id, Title: "T " + id, Author: "A", Quantity: 1}); err != nil {
			t.Fatalf("AddBook %s: %v", id, err)
		}
	}
	got, err := svc.GetAllBooks(ctx)
	if err != nil {
		t.Fatalf("GetAllBooks: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 books, got %d", len(got))
	}
}
