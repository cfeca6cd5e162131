package seed

import (
	"context"
	"database/sql"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) BookExists(ctx context.Context, bookID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM Books WHERE book_id = ?`
	var n int
	if err := s.db.QueryRowContext(ctx, q, bookID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) InsertBook(ctx context.Context, bookID, title, author string, genre any, year any, quantity int) error {
	const q = `
	INSERT INTO Books (book_id, title, author, genre, year, quantity)
	VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, bookID, title, author, genre, year, quantity)
	return err
}

func (s *Store) StudentEmailExists(ctx context.Context, email string) (bool, error) {
	const q = `SELECT COUNT(*) FROM Students WHERE email = ?`
	var n int
	if err := s.db.QueryRowContext(ctx, q, email).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) StudentIDExists(ctx context.Context, studentID int64) (bool, error) {
	const q = `SELECT COUNT(*) FROM Students WHERE student_id = ?`
	var n int
	if err := s.db.QueryRowContext(ctx, q, studentID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertStudent: CSVに有効な student_id があれば明示INSERT、なければ採番に任せる
func (s *Store) InsertStudent(ctx context.Context, studentID *int64, name, email string, dateOfBirth any) error {
	if studentID != nil {
		const q = `
		INSERT INTO Students (student_id, name, email, date_of_birth)
		VALUES (?, ?, ?, ?)`
		_, err := s.db.ExecContext(ctx, q, *studentID, name, email, dateOfBirth)
		return err
	}
	const q = `
	INSERT INTO Students (name, email, date_of_birth)
	VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, name, email, dateOfBirth)
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
