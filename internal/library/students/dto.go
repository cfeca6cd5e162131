package students

// ===== Requests =====

type CreateStudentRequest struct {
	// 省略時はAUTOINCREMENTで採番する。CSV由来の明示IDと同じID空間を共有する。
	StudentID   *int64  `json:"student_id,omitempty"`
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required"`
	DateOfBirth *string `json:"date_of_birth,omitempty"` // "2006-01-02" 形式の文字列を想定
}

// ===== Responses =====

type StudentResponse struct {
	StudentID   int64   `json:"student_id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
}
