package students

import (
	"context"
	"database/sql"
	"strings"
)

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(db *sql.DB) *Service { return &Service{db: db, store: NewStore(db)} }

func (s *Service) AddStudent(ctx context.Context, in CreateStudentRequest) (StudentResponse, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" {
		return StudentResponse{}, ErrValidation("name and email are required")
	}
	if in.StudentID != nil && *in.StudentID <= 0 {
		return StudentResponse{}, ErrValidation("student_id must be > 0")
	}

	var dob *string
	if in.DateOfBirth != nil {
		v := strings.TrimSpace(*in.DateOfBirth)
		if v != "" {
			dob = &v
		}
	}

	// 重複は事前チェックで弾く（メールはUNIQUE制約と同じく完全一致で比較）
	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return StudentResponse{}, err
	}
	if exists {
		return StudentResponse{}, ErrDuplicate("email already exists")
	}
	if in.StudentID != nil {
		exists, err := s.store.IDExists(ctx, *in.StudentID)
		if err != nil {
			return StudentResponse{}, err
		}
		if exists {
			return StudentResponse{}, ErrDuplicate("student_id already exists")
		}
	}

	id, err := s.store.Insert(ctx, in.StudentID, name, email, dob)
	if err != nil {
		if isConstraintErr(err) {
			return StudentResponse{}, ErrDuplicate("student_id or email already exists")
		}
		return StudentResponse{}, err
	}

	out, err := s.store.GetByID(ctx, id)
	if err != nil {
		return StudentResponse{}, err
	}
	return *out, nil
}

// SearchStudents: query が空なら全件
func (s *Service) SearchStudents(ctx context.Context, query string) ([]StudentResponse, error) {
	return s.store.Search(ctx, strings.TrimSpace(query))
}

func (s *Service) GetStudent(ctx context.Context, studentID int64) (StudentResponse, error) {
	out, err := s.store.GetByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return StudentResponse{}, ErrNotFound("student not found")
		}
		return StudentResponse{}, err
	}
	return *out, nil
}
