package seed

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readRecords: ヘッダ行付きCSVを行ごとのmapとして読む。
// Excel等が付けるUTF-8 BOMは剥がして解釈する。
// 欠けているカラムは空文字として扱い、値はすべてトリム済みで返す。
func readRecords(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := unicode.UTF8BOM.NewDecoder()
	r := csv.NewReader(transform.NewReader(f, dec))
	r.FieldsPerRecord = -1 // 列数のズレは行単位で許容

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return []map[string]string{}, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := []map[string]string{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 壊れた行は読み飛ばす（バッチは止めない）
			if _, ok := err.(*csv.ParseError); ok {
				continue
			}
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = strings.TrimSpace(rec[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeRecords: 指定のカラム順でCSVを上書きする（重複除去の書き戻し用）
func writeRecords(path string, fieldnames []string, rows []map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(fieldnames); err != nil {
		return err
	}
	for _, row := range rows {
		rec := make([]string, len(fieldnames))
		for i, name := range fieldnames {
			rec[i] = row[name]
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
