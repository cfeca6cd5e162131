package books

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Exists(ctx context.Context, bookID string) (bool, error) {
	const q = `SELECT 1 FROM Books WHERE book_id = ? LIMIT 1`
	var one int
	err := s.db.QueryRowContext(ctx, q, bookID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Insert(ctx context.Context, in CreateBookRequest) error {
	const q = `
	INSERT INTO Books (book_id, title, author, genre, year, quantity)
	VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		in.BookID, in.Title, in.Author,
		strOrNil(in.Genre), intOrNil(in.Year), in.Quantity,
	)
	return err
}

func (s *Store) GetByID(ctx context.Context, bookID string) (*BookResponse, error) {
	const q = `
	SELECT book_id, title, author, genre, year, quantity
	FROM Books WHERE book_id = ?`
	var r BookResponse
	var genre sql.NullString
	var year sql.NullInt64
	if err := s.db.QueryRowContext(ctx, q, bookID).Scan(
		&r.BookID, &r.Title, &r.Author, &genre, &year, &r.Quantity,
	); err != nil {
		return nil, err
	}
	if genre.Valid {
		v := genre.String
		r.Genre = &v
	}
	if year.Valid {
		v := int(year.Int64)
		r.Year = &v
	}
	return &r, nil
}

func (s *Store) List(ctx context.Context) ([]BookResponse, error) {
	const q = `
	SELECT book_id, title, author, genre, year, quantity
	FROM Books ORDER BY book_id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BookResponse{}
	for rows.Next() {
		var r BookResponse
		var genre sql.NullString
		var year sql.NullInt64
		if err := rows.Scan(&r.BookID, &r.Title, &r.Author, &genre, &year, &r.Quantity); err != nil {
			return nil, err
		}
		if genre.Valid {
			v := genre.String
			r.Genre = &v
		}
		if year.Valid {
			v := int(year.Int64)
			r.Year = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, bookID string, in UpdateBookRequest) (*BookResponse, error) {
	// 動的アップデート（nil・空文字は対象外）
	sets := []string{}
	args := []any{}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*in.Title))
	}
	if in.Author != nil && strings.TrimSpace(*in.Author) != "" {
		sets = append(sets, "author = ?")
		args = append(args, strings.TrimSpace(*in.Author))
	}
	if in.Genre != nil && strings.TrimSpace(*in.Genre) != "" {
		sets = append(sets, "genre = ?")
		args = append(args, strings.TrimSpace(*in.Genre))
	}
	if in.Year != nil {
		sets = append(sets, "year = ?")
		args = append(args, *in.Year)
	}
	if in.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *in.Quantity)
	}
	if len(sets) == 0 {
		// 変更なしでも現行値を返す
		return s.GetByID(ctx, bookID)
	}
	args = append(args, bookID)
	q := fmt.Sprintf(`UPDATE Books SET %s WHERE book_id = ?`, strings.Join(sets, ", "))

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return nil, sql.ErrNoRows
	}
	return s.GetByID(ctx, bookID)
}

// Delete: 冪等。対象が存在しなくてもエラーにしない。
func (s *Store) Delete(ctx context.Context, bookID string) error {
	const q = `DELETE FROM Books WHERE book_id = ?`
	_, err := s.db.ExecContext(ctx, q, bookID)
	return err
}

func strOrNil(p *string) any {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}

func intOrNil(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
