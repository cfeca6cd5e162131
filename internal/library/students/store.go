package students

import (
	"context"
	"database/sql"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// EmailExists: 大文字小文字を区別した完全一致で見る（UNIQUE制約と同じ基準）
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	const q = `SELECT 1 FROM Students WHERE email = ? LIMIT 1`
	var one int
	err := s.db.QueryRowContext(ctx, q, email).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) IDExists(ctx context.Context, studentID int64) (bool, error) {
	const q = `SELECT 1 FROM Students WHERE student_id = ? LIMIT 1`
	var one int
	err := s.db.QueryRowContext(ctx, q, studentID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert: IDを明示するかAUTOINCREMENTに任せるかで分岐。確定した student_id を返す。
func (s *Store) Insert(ctx context.Context, studentID *int64, name, email string, dateOfBirth *string) (int64, error) {
	if studentID != nil {
		const q = `
		INSERT INTO Students (student_id, name, email, date_of_birth)
		VALUES (?, ?, ?, ?)`
		if _, err := s.db.ExecContext(ctx, q, *studentID, name, email, dobOrNil(dateOfBirth)); err != nil {
			return 0, err
		}
		return *studentID, nil
	}

	const q = `
	INSERT INTO Students (name, email, date_of_birth)
	VALUES (?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, name, email, dobOrNil(dateOfBirth))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Search: 空クエリなら全件。それ以外は student_id（文字列扱い）か name の
// 部分一致（大文字小文字無視）。ORDER BY で結果順を固定する。
func (s *Store) Search(ctx context.Context, query string) ([]StudentResponse, error) {
	const q = `
	SELECT student_id, name, email, date_of_birth
	FROM Students
	WHERE ?1 = ''
	   OR instr(lower(name), lower(?1)) > 0
	   OR instr(CAST(student_id AS TEXT), ?1) > 0
	ORDER BY student_id`

	rows, err := s.db.QueryContext(ctx, q, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []StudentResponse{}
	for rows.Next() {
		var r StudentResponse
		var dob sql.NullString
		if err := rows.Scan(&r.StudentID, &r.Name, &r.Email, &dob); err != nil {
			return nil, err
		}
		if dob.Valid {
			v := dob.String
			r.DateOfBirth = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, studentID int64) (*StudentResponse, error) {
	const q = `
	SELECT student_id, name, email, date_of_birth
	FROM Students WHERE student_id = ?`
	var r StudentResponse
	var dob sql.NullString
	if err := s.db.QueryRowContext(ctx, q, studentID).Scan(&r.StudentID, &r.Name, &r.Email, &dob); err != nil {
		return nil, err
	}
	if dob.Valid {
		v := dob.String
		r.DateOfBirth = &v
	}
	return &r, nil
}

func dobOrNil(p *string) any {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}
