package db

import (
	"context"
	"database/sql"
)

// プロセス起動時に一度だけ呼ぶ。既存テーブルには一切触れない（DROP禁止）。
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS Books (
		book_id  TEXT PRIMARY KEY,
		title    TEXT NOT NULL,
		author   TEXT NOT NULL,
		genre    TEXT,
		year     INTEGER,
		quantity INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Students (
		student_id    INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL,
		email         TEXT UNIQUE NOT NULL,
		date_of_birth TEXT
	)`,
	// 旧実装はこのテーブルを作成しないまま参照していた。ここで必ず作る。
	`CREATE TABLE IF NOT EXISTS IssuedBooks (
		issue_id    TEXT PRIMARY KEY,
		book_id     TEXT NOT NULL,
		return_date TEXT
	)`,
}

// EnsureSchema creates the three tables if absent. Idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, q := range schemaStatements {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
