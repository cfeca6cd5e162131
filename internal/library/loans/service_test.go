package loans

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"library-backend/internal/platform/db"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	conn, err := db.Connect(db.DatabaseConfig{Path: filepath.Join(t.TempDir(), "library.db")})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.EnsureSchema(context.Background(), conn); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	svc := NewService(conn)
	svc.clock = fixedClock{t: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)}
	return svc, conn
}

func addBook(t *testing.T, conn *sql.DB, bookID string, quantity int) {
	t.Helper()
	_, err := conn.ExecContext(context.Background(),
		`INSERT INTO Books (book_id, title, author, quantity) VALUES (?, 'T', 'A', ?)`,
		bookID, quantity)
	if err != nil {
		t.Fatalf("addBook: %v", err)
	}
}

func bookQuantity(t *testing.T, conn *sql.DB, bookID string) int {
	t.Helper()
	var q int
	if err := conn.QueryRowContext(context.Background(),
		`SELECT quantity FROM Books WHERE book_id = ?`, bookID).Scan(&q); err != nil {
		t.Fatalf("bookQuantity: %v", err)
	}
	return q
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

func TestIssueBook_DecrementsStock(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	addBook(t, conn, "B1", 2)

	res, err := svc.IssueBook(ctx, IssueBookRequest{BookID: "B1"})
	if err != nil {
		t.Fatalf("IssueBook: %v", err)
	}
	if res.IssueID == "" {
		t.Errorf("expected generated issue_id")
	}
	if res.Returned || res.ReturnDate != nil {
		t.Errorf("new loan must be open: %+v", res)
	}
	if q := bookQuantity(t, conn, "B1"); q != 1 {
		t.Errorf("expected quantity 1 after issue, got %d", q)
	}
}

func TestIssueBook_InsufficientStock(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	addBook(t, conn, "B1", 0)

	_, err := svc.IssueBook(ctx, IssueBookRequest{BookID: "B1"})
	assertCode(t, err, CodeInsufficientStock)

	// 台帳に行が増えていないこと
	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM IssuedBooks`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no ledger row, got %d", n)
	}
	if q := bookQuantity(t, conn, "B1"); q != 0 {
		t.Errorf("quantity changed on failed issue: %d", q)
	}
}

func TestIssueBook_UnknownBook(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.IssueBook(context.Background(), IssueBookRequest{BookID: "nope"})
	assertCode(t, err, CodeNotFound)
}

func TestIssueBook_ExplicitDuplicateIssueID(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	addBook(t, conn, "B1", 5)

	if _, err := svc.IssueBook(ctx, IssueBookRequest{IssueID: strPtr("L1"), BookID: "B1"}); err != nil {
		t.Fatalf("IssueBook: %v", err)
	}
	_, err := svc.IssueBook(ctx, IssueBookRequest{IssueID: strPtr("L1"), BookID: "B1"})
	assertCode(t, err, CodeDuplicateKey)

	// 重複で失敗したら在庫は減らない（最初の1冊分のみ）
	if q := bookQuantity(t, conn, "B1"); q != 4 {
		t.Errorf("expected quantity 4, got %d", q)
	}
}

func TestReturnBook_StampsDateAndIncrements(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	addBook(t, conn, "B1", 1)

	if _, err := svc.IssueBook(ctx, IssueBookRequest{IssueID: strPtr("L1"), BookID: "B1"}); err != nil {
		t.Fatalf("IssueBook: %v", err)
	}
	if q := bookQuantity(t, conn, "B1"); q != 0 {
		t.Fatalf("expected quantity 0 after issue, got %d", q)
	}

	res, err := svc.ReturnBook(ctx, "L1", ReturnBookRequest{})
	if err != nil {
		t.Fatalf("ReturnBook: %v", err)
	}
	if !res.Returned || res.ReturnDate == nil {
		t.Errorf("expected returned loan: %+v", res)
	}
	if *res.ReturnDate != "2025-04-01" {
		t.Errorf("expected clock date as default return_date, got %s", *res.ReturnDate)
	}
	if q := bookQuantity(t, conn, "B1"); q != 1 {
		t.Errorf("expected quantity 1 after return, got %d", q)
	}
}

func TestReturnBook_ExplicitDate(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	addBook(t, conn, "B1", 1)

	if _, err := svc.IssueBook(ctx, IssueBookRequest{IssueID: strPtr("L1"), BookID: "B1"}); err != nil {
		t.Fatalf("IssueBook: %v", err)
	}
	res, err := svc.ReturnBook(ctx, "L1", ReturnBookRequest{ReturnDate: strPtr("2025-03-31")})
	if err != nil {
		t.Fatalf("ReturnBook: %v", err)
	}
	if res.ReturnDate == nil || *res.ReturnDate != "2025-03-31" {
		t.Errorf("expected explicit return_date, got %+v", res.ReturnDate)
	}
}

func TestReturnBook_InvalidDateFormat(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	addBook(t, conn, "B1", 1)

	if _, err := svc.IssueBook(ctx, IssueBookRequest{IssueID: strPtr("L1"), BookID: "B1"}); err != nil {
		t.Fatalf("IssueBook: %v", err)
	}
	_, err := svc.ReturnBook(ctx, "L1", ReturnBookRequest{ReturnDate: strPtr("31/03/2025")})
	assertCode(t, err, CodeValidation)
}

func TestReturnBook_DoubleReturn(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	addBook(t, conn, "B1", 1)

	if _, err := svc.IssueBook(ctx, IssueBookRequest{IssueID: strPtr("L1"), BookID: "B1"}); err != nil {
		t.Fatalf("IssueBook: %v", err)
	}
	if _, err := svc.ReturnBook(ctx, "L1", ReturnBookRequest{}); err != nil {
		t.Fatalf("first ReturnBook: %v", err)
	}

	// 返却済みのissue_idはopenな行として解決できない
	_, err := svc.ReturnBook(ctx, "L1", ReturnBookRequest{})
	assertCode(t, err, CodeNotFound)

	// 在庫が二重に増えていないこと
	if q := bookQuantity(t, conn, "B1"); q != 1 {
		t.Errorf("double return incremented quantity twice: %d", q)
	}
}

func TestReturnBook_UnknownIssueID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ReturnBook(context.Background(), "nope", ReturnBookRequest{})
	assertCode(t, err, CodeNotFound)
}

func TestListLoans_OpenFilter(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	addBook(t, conn, "B1", 5)

	for _, id := range []string{"L1", "L2", "L3"} {
		if _, err := svc.IssueBook(ctx, IssueBookRequest{IssueID: strPtr(id), BookID: "B1"}); err != nil {
			t.Fatalf("IssueBook %s: %v", id, err)
		}
	}
	if _, err := svc.ReturnBook(ctx, "L2", ReturnBookRequest{}); err != nil {
		t.Fatalf("ReturnBook: %v", err)
	}

	all, err := svc.ListLoans(ctx, false)
	if err != nil {
		t.Fatalf("ListLoans: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 loans, got %d", len(all))
	}

	open, err := svc.ListLoans(ctx, true)
	if err != nil {
		t.Fatalf("ListLoans(open): %v", err)
	}
	if len(open) != 2 {
		t.Errorf("expected 2 open loans, got %d", len(open))
	}
	for _, l := range open {
		if l.Returned {
			t.Errorf("open filter returned a closed loan: %+v", l)
		}
	}
}
