package loans

import (
	"context"
	"database/sql"

	"library-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(sqldb *sql.DB) *Store { return &Store{db: sqldb} }

// ---- Transactional Methods ----

// ExecIssue handles the full transaction flow for issuing a book:
// 在庫確認 → 台帳INSERT → 在庫デクリメント。途中で失敗したら全部ROLLBACK。
func (s *Store) ExecIssue(ctx context.Context, issueID, bookID string) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		// 1. Stock check
		var qty int
		const qSel = `SELECT quantity FROM Books WHERE book_id = ?`
		if err := tx.QueryRowContext(ctx, qSel, bookID).Scan(&qty); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("book not found")
			}
			return err
		}
		if qty <= 0 {
			return ErrInsufficientStock()
		}

		// 2. Insert open loan（issue_id 重複はPK制約で検出）
		const qIns = `INSERT INTO IssuedBooks (issue_id, book_id, return_date) VALUES (?, ?, NULL)`
		if _, err := tx.ExecContext(ctx, qIns, issueID, bookID); err != nil {
			if isConstraintErr(err) {
				return ErrDuplicate("issue_id already exists")
			}
			return err
		}

		// 3. Decrement stock
		const qDec = `UPDATE Books SET quantity = quantity - 1 WHERE book_id = ?`
		res, err := tx.ExecContext(ctx, qDec, bookID)
		if err != nil {
			return err
		}
		if aff, _ := res.RowsAffected(); aff != 1 {
			return ErrInternal("failed to update Books.quantity")
		}
		return nil
	})
}

// ExecReturn handles the full transaction flow for returning a book.
// 返却日記録と在庫インクリメントは必ず同一Txで行う。
// 返却済みの issue_id は open な行として解決できないので NOT_FOUND になる
// （二重返却で在庫が2回増えることはない）。
func (s *Store) ExecReturn(ctx context.Context, issueID, returnDate string) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		// 1. Resolve open loan
		var bookID string
		const qSel = `SELECT book_id FROM IssuedBooks WHERE issue_id = ? AND return_date IS NULL`
		if err := tx.QueryRowContext(ctx, qSel, issueID).Scan(&bookID); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("open loan not found")
			}
			return err
		}

		// 2. Stamp return date
		const qUpd = `UPDATE IssuedBooks SET return_date = ? WHERE issue_id = ? AND return_date IS NULL`
		res, err := tx.ExecContext(ctx, qUpd, returnDate, issueID)
		if err != nil {
			return err
		}
		if aff, _ := res.RowsAffected(); aff != 1 {
			return ErrInternal("failed to update IssuedBooks.return_date")
		}

		// 3. Increment stock（book_id は弱参照。対象の本が消えていたら返却ごと失敗させる）
		const qInc = `UPDATE Books SET quantity = quantity + 1 WHERE book_id = ?`
		res, err = tx.ExecContext(ctx, qInc, bookID)
		if err != nil {
			return err
		}
		if aff, _ := res.RowsAffected(); aff != 1 {
			return ErrNotFound("book not found")
		}
		return nil
	})
}

// ---- Queries ----

func (s *Store) GetByID(ctx context.Context, issueID string) (*Loan, error) {
	const q = `SELECT issue_id, book_id, return_date FROM IssuedBooks WHERE issue_id = ?`
	var m Loan
	if err := s.db.QueryRowContext(ctx, q, issueID).Scan(&m.IssueID, &m.BookID, &m.ReturnDate); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("loan not found")
		}
		return nil, err
	}
	return &m, nil
}

func (s *Store) List(ctx context.Context, openOnly bool) ([]Loan, error) {
	q := `SELECT issue_id, book_id, return_date FROM IssuedBooks`
	if openOnly {
		q += ` WHERE return_date IS NULL`
	}
	q += ` ORDER BY issue_id`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Loan{}
	for rows.Next() {
		var m Loan
		if err := rows.Scan(&m.IssueID, &m.BookID, &m.ReturnDate); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
