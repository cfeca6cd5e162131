package books

// ===== Requests =====

type CreateBookRequest struct {
	BookID   string  `json:"book_id" binding:"required"`
	Title    string  `json:"title" binding:"required"`
	Author   string  `json:"author" binding:"required"`
	Genre    *string `json:"genre,omitempty"`
	Year     *int    `json:"year,omitempty"`
	Quantity int     `json:"quantity"` // >=0
}

// 部分更新。nil のフィールドは書き換えない（book_id は変更不可）。
type UpdateBookRequest struct {
	Title    *string `json:"title,omitempty"`
	Author   *string `json:"author,omitempty"`
	Genre    *string `json:"genre,omitempty"`
	Year     *int    `json:"year,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
}

// ===== Responses =====

type BookResponse struct {
	BookID   string  `json:"book_id"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Genre    *string `json:"genre,omitempty"`
	Year     *int    `json:"year,omitempty"`
	Quantity int     `json:"quantity"`
}
