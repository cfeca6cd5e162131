package loans

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ===== Service本体 =====

const dateLayout = "2006-01-02"

type Service struct {
	db    *sql.DB
	store *Store
	clock Clock
	id    IDGen
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db:    db,
		store: NewStore(db),
		clock: realClock{},
		id:    ulidGen{},
	}
}

// 貸出登録
func (s *Service) IssueBook(ctx context.Context, req IssueBookRequest) (*LoanResponse, error) {
	bookID := strings.TrimSpace(req.BookID)
	if bookID == "" {
		return nil, ErrValidation("book_id is required")
	}

	var issueID string
	if req.IssueID != nil && strings.TrimSpace(*req.IssueID) != "" {
		issueID = strings.TrimSpace(*req.IssueID)
	} else {
		id, err := s.id.New()
		if err != nil {
			return nil, err
		}
		issueID = id
	}

	if err := s.store.ExecIssue(ctx, issueID, bookID); err != nil {
		return nil, err
	}

	loan, err := s.store.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	resp := loan.toResponse()
	return &resp, nil
}

// 返却登録
func (s *Service) ReturnBook(ctx context.Context, issueID string, req ReturnBookRequest) (*LoanResponse, error) {
	issueID = strings.TrimSpace(issueID)
	if issueID == "" {
		return nil, ErrValidation("issue_id is required")
	}

	returnDate := s.clock.Now().Format(dateLayout)
	if req.ReturnDate != nil && strings.TrimSpace(*req.ReturnDate) != "" {
		v := strings.TrimSpace(*req.ReturnDate)
		if _, err := time.Parse(dateLayout, v); err != nil {
			return nil, ErrValidation("invalid return_date format, expected YYYY-MM-DD")
		}
		returnDate = v
	}

	if err := s.store.ExecReturn(ctx, issueID, returnDate); err != nil {
		return nil, err
	}

	loan, err := s.store.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	resp := loan.toResponse()
	return &resp, nil
}

// 貸出単一取得
func (s *Service) GetLoan(ctx context.Context, issueID string) (*LoanResponse, error) {
	if strings.TrimSpace(issueID) == "" {
		return nil, ErrValidation("issue_id is required")
	}
	loan, err := s.store.GetByID(ctx, strings.TrimSpace(issueID))
	if err != nil {
		return nil, err
	}
	resp := loan.toResponse()
	return &resp, nil
}

// 貸出一覧（open=true で貸出中のみ）
func (s *Service) ListLoans(ctx context.Context, openOnly bool) ([]LoanResponse, error) {
	loans, err := s.store.List(ctx, openOnly)
	if err != nil {
		return nil, err
	}
	result := []LoanResponse{}
	for i := range loans {
		result = append(result, loans[i].toResponse())
	}
	return result, nil
}
