package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite "modernc.org/sqlite"
)

// ===== Error model (students/loans と同型) =====
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeDuplicateKey Code = "DUPLICATE_KEY"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInternal     Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string       { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrValidation(msg string) *APIError { return &APIError{Code: CodeValidation, Message: msg} }
func ErrDuplicate(msg string) *APIError  { return &APIError{Code: CodeDuplicateKey, Message: msg} }
func ErrNotFound(msg string) *APIError   { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrInternal(msg string) *APIError   { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeValidation:
			return 400
		case CodeNotFound:
			return 404
		case CodeDuplicateKey:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// SQLiteの一意制約違反（PRIMARY KEY / UNIQUE）
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

func isConstraintErr(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqliteConstraintPrimaryKey, sqliteConstraintUnique:
			return true
		}
	}
	return false
}

// ===== Service =====

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(db *sql.DB) *Service { return &Service{db: db, store: NewStore(db)} }

func (s *Service) AddBook(ctx context.Context, in CreateBookRequest) (BookResponse, error) {
	in.BookID = strings.TrimSpace(in.BookID)
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	if in.BookID == "" || in.Title == "" || in.Author == "" {
		return BookResponse{}, ErrValidation("book_id, title, author are required")
	}
	if in.Quantity < 0 {
		return BookResponse{}, ErrValidation("quantity must be >= 0")
	}

	// 事前チェックで重複を弾く（INSERT時の制約違反は保険として同じ扱いにする）
	exists, err := s.store.Exists(ctx, in.BookID)
	if err != nil {
		return BookResponse{}, err
	}
	if exists {
		return BookResponse{}, ErrDuplicate("book_id already exists")
	}

	if err := s.store.Insert(ctx, in); err != nil {
		if isConstraintErr(err) {
			return BookResponse{}, ErrDuplicate("book_id already exists")
		}
		return BookResponse{}, err
	}

	out, err := s.store.GetByID(ctx, in.BookID)
	if err != nil {
		return BookResponse{}, err
	}
	return *out, nil
}

func (s *Service) GetAllBooks(ctx context.Context) ([]BookResponse, error) {
	return s.store.List(ctx)
}

func (s *Service) GetBook(ctx context.Context, bookID string) (BookResponse, error) {
	out, err := s.store.GetByID(ctx, bookID)
	if err != nil {
		if err == sql.ErrNoRows {
			return BookResponse{}, ErrNotFound("book not found")
		}
		return BookResponse{}, err
	}
	return *out, nil
}

func (s *Service) UpdateBook(ctx context.Context, bookID string, in UpdateBookRequest) (BookResponse, error) {
	// 数値系はカラムを書く前に全件検証する（1カラムだけ書けた、を作らない）
	if in.Quantity != nil && *in.Quantity < 0 {
		return BookResponse{}, ErrValidation("quantity must be >= 0")
	}
	out, err := s.store.Update(ctx, bookID, in)
	if err != nil {
		if err == sql.ErrNoRows {
			return BookResponse{}, ErrNotFound("book not found")
		}
		return BookResponse{}, err
	}
	return *out, nil
}

func (s *Service) DeleteBook(ctx context.Context, bookID string) error {
	return s.store.Delete(ctx, bookID)
}
