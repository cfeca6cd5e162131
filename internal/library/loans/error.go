package loans

import (
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
)

// ===== Error model (books/students と同型。在庫切れコードのみ追加) =====
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeDuplicateKey      Code = "DUPLICATE_KEY"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeInternal          Code = "INTERNAL"
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

func ErrInsufficientStock() *APIError {
	return &APIError{Code: CodeInsufficientStock, Message: "no copies available"}
}

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeValidation:
			return 400
		case CodeNotFound:
			return 404
		case CodeDuplicateKey, CodeInsufficientStock:
			return 409
		default:
			return 500
		}
	}
	return 500
}

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
