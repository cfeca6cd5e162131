package loans

// ===== Requests =====

type IssueBookRequest struct {
	// 省略時はULIDで採番する
	IssueID *string `json:"issue_id,omitempty"`
	BookID  string  `json:"book_id" binding:"required"`
}

type ReturnBookRequest struct {
	// "2006-01-02" 形式。省略時は当日
	ReturnDate *string `json:"return_date,omitempty"`
}

// ===== Responses =====

type LoanResponse struct {
	IssueID    string  `json:"issue_id"`
	BookID     string  `json:"book_id"`
	ReturnDate *string `json:"return_date,omitempty"`
	Returned   bool    `json:"returned"`
}
