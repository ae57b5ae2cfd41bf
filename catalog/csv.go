package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rushteam/catalogkit/core"
)

// csvHeaders 是目录 CSV 的列顺序。
func csvHeaders() []string {
	return []string{"name", "category", "price", "rating"}
}

// CSVLoader 从 CSV 读取目录。第一行是表头，会被跳过；
// 表头包含全部四个列名时按列名取值，否则按 name,category,price,rating 的位置取值。
//
// Strict 为 true 时遇到坏行立即失败；否则跳过坏行并记录 warn 日志。
type CSVLoader struct {
	Path   string
	Reader io.Reader
	Strict bool
	Logger *zap.Logger
}

func (l *CSVLoader) Load(ctx context.Context) (core.Collection, error) {
	r := l.Reader
	if r == nil {
		f, err := os.Open(l.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", l.Path, err)
		}
		defer f.Close()
		r = f
	}

	records, rowErrs, err := ReadCSV(ctx, r, l.Strict)
	if err != nil {
		return nil, err
	}
	if len(rowErrs) > 0 && l.Logger != nil {
		for _, re := range rowErrs {
			l.Logger.Warn("skipped catalog row", zap.Error(re))
		}
		l.Logger.Info("catalog csv loaded with skipped rows",
			zap.Int("count", len(records)),
			zap.Int("skipped", len(rowErrs)),
		)
	}
	return records, nil
}

// ReadCSV 解析 CSV 目录。非 strict 模式下，坏行以 *RowError 形式收集并跳过。
func ReadCSV(ctx context.Context, r io.Reader, strict bool) (core.Collection, []error, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return core.Collection{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	columns := columnIndexes(header)

	var (
		records core.Collection
		rowErrs []error
		line    = 1
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, &RowError{Line: line, Err: err}
		}
		if isBlank(row) {
			continue
		}

		rec, err := csvRowToRecord(row, columns)
		if err != nil {
			rowErr := &RowError{Line: line, Err: err}
			if strict {
				return nil, nil, rowErr
			}
			rowErrs = append(rowErrs, rowErr)
			continue
		}
		records = append(records, rec)
	}
	if records == nil {
		records = core.Collection{}
	}
	return records, rowErrs, nil
}

// columnIndexes 返回 name/category/price/rating 的列下标。
func columnIndexes(header []string) [4]int {
	positional := [4]int{0, 1, 2, 3}

	found := make(map[string]int, len(header))
	for i, h := range header {
		found[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var idx [4]int
	for i, name := range csvHeaders() {
		pos, ok := found[name]
		if !ok {
			return positional
		}
		idx[i] = pos
	}
	return idx
}

// csvRowToRecord 把一行转换为 Record，价格与评分必须是数值。
func csvRowToRecord(row []string, columns [4]int) (*core.Record, error) {
	for _, c := range columns {
		if c >= len(row) {
			return nil, fmt.Errorf("expected %d columns, got %d", len(csvHeaders()), len(row))
		}
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(row[columns[2]]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", row[columns[2]], err)
	}
	rating, err := strconv.ParseFloat(strings.TrimSpace(row[columns[3]]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid rating %q: %w", row[columns[3]], err)
	}
	return core.NewRecord(row[columns[0]], row[columns[1]], price, rating)
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// WriteCSV 以 name,category,price,rating 格式写出记录（带表头）。
func WriteCSV(w io.Writer, records core.Collection) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeaders()); err != nil {
		return err
	}
	for _, r := range records {
		if r == nil {
			continue
		}
		row := []string{
			r.Name,
			r.Category,
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			strconv.FormatFloat(r.Rating, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
