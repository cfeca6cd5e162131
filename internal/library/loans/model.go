package loans

import "database/sql"

// Loan は IssuedBooks テーブルの1行を表す。
// return_date が NULL の行が貸出中（open）。
type Loan struct {
	IssueID    string
	BookID     string
	ReturnDate sql.NullString
}

func (l *Loan) toResponse() LoanResponse {
	r := LoanResponse{
		IssueID:  l.IssueID,
		BookID:   l.BookID,
		Returned: l.ReturnDate.Valid,
	}
	if l.ReturnDate.Valid {
		v := l.ReturnDate.String
		r.ReturnDate = &v
	}
	return r
}
