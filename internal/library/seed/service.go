package seed

import (
	"context"
	"database/sql"
	"os"
	"strconv"
)

// 取込結果のサマリ（起動ログ用）
type ImportSummary struct {
	Total    int `json:"total"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(db *sql.DB) *Service { return &Service{db: db, store: NewStore(db)} }

// ImportBooks: CSVから書籍を取り込む。毎起動時に再実行しても重複しない
// （収束型の冪等シード処理。全件ロールバックのロードではない）。
//
// 行単位の不正（必須項目欠け・数値でないyear/quantity・キー重複）はスキップして
// バッチを続行する。ファイルが無い/読めない場合のみ SOURCE_UNAVAILABLE を返す。
func (s *Service) ImportBooks(ctx context.Context, path string) (ImportSummary, error) {
	rows, err := readRecords(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ImportSummary{}, ErrSourceUnavailable("books source not found: " + path)
		}
		return ImportSummary{}, ErrSourceUnavailable("books source unreadable: " + err.Error())
	}

	sum := ImportSummary{Total: len(rows)}
	for _, row := range rows {
		bookID := row["book_id"]
		title := row["title"]
		author := row["author"]
		genre := row["genre"]

		// year: 空ならNULL、数値でなければ行ごとスキップ
		var year any
		if v := row["year"]; v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				sum.Skipped++
				continue
			}
			year = n
		}

		// quantity: 空なら0、数値でなければ行ごとスキップ
		quantity := 0
		if v := row["quantity"]; v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				sum.Skipped++
				continue
			}
			quantity = n
		}

		if bookID == "" || title == "" || author == "" {
			sum.Skipped++
			continue
		}

		exists, err := s.store.BookExists(ctx, bookID)
		if err != nil {
			return sum, err
		}
		if exists {
			sum.Skipped++
			continue
		}

		if err := s.store.InsertBook(ctx, bookID, title, author, nullIfEmpty(genre), year, quantity); err != nil {
			// 事前チェックをすり抜けた一意制約違反は黙って飲む（冪等性の保険）
			if isConstraintErr(err) {
				sum.Skipped++
				continue
			}
			return sum, err
		}
		sum.Inserted++
	}
	return sum, nil
}

// ImportStudents: CSVから学生を取り込む。email重複は事前チェックでスキップ。
// student_id カラムは任意（無ければAUTOINCREMENTで採番）。
func (s *Service) ImportStudents(ctx context.Context, path string) (ImportSummary, error) {
	rows, err := readRecords(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ImportSummary{}, ErrSourceUnavailable("students source not found: " + path)
		}
		return ImportSummary{}, ErrSourceUnavailable("students source unreadable: " + err.Error())
	}

	sum := ImportSummary{Total: len(rows)}
	for _, row := range rows {
		name := row["name"]
		email := row["email"]
		dob := row["date_of_birth"]

		if name == "" || email == "" {
			sum.Skipped++
			continue
		}

		// dedup書き戻し後のCSVはIDカラムを持つ。有効値ならID空間を共有して明示INSERT
		var studentID *int64
		if v := row["student_id"]; v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n <= 0 {
				sum.Skipped++
				continue
			}
			taken, err := s.store.StudentIDExists(ctx, n)
			if err != nil {
				return sum, err
			}
			if taken {
				sum.Skipped++
				continue
			}
			studentID = &n
		}

		exists, err := s.store.StudentEmailExists(ctx, email)
		if err != nil {
			return sum, err
		}
		if exists {
			sum.Skipped++
			continue
		}

		if err := s.store.InsertStudent(ctx, studentID, name, email, nullIfEmpty(dob)); err != nil {
			if isConstraintErr(err) {
				sum.Skipped++
				continue
			}
			return sum, err
		}
		sum.Inserted++
	}
	return sum, nil
}

// DeduplicateStudents: 学生CSVを読み、email（トリム済み）ごとに最初の行だけを
// 元の順序のまま残して書き戻す。DBには一切触れない。2回適用しても結果は同じ。
// ImportStudents の後に実行する（次回起動時の取込は重複除去済みのCSVを読む）。
func (s *Service) DeduplicateStudents(path string) (int, error) {
	rows, err := readRecords(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrSourceUnavailable("students source not found: " + path)
		}
		return 0, ErrSourceUnavailable("students source unreadable: " + err.Error())
	}

	seen := map[string]struct{}{}
	unique := []map[string]string{}
	for _, row := range rows {
		email := row["email"]
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		unique = append(unique, row)
	}

	fieldnames := []string{"student_id", "name", "email", "date_of_birth"}
	if err := writeRecords(path, fieldnames, unique); err != nil {
		return 0, ErrInternal("failed to rewrite students source: " + err.Error())
	}
	return len(unique), nil
}
