package seed

import (
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
)

// ===== Error model (books/students/loans と同型。取込元エラーのみ追加) =====
type Code string

const (
	CodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"
	CodeInternal          Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrSourceUnavailable(msg string) *APIError {
	return &APIError{Code: CodeSourceUnavailable, Message: msg}
}
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

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
