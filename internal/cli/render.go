package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/natefinch/atomic"

	"github.com/calvinalkan/bear-query/pkg/bearquery"
)

const timeDisplayLayout = "2006-01-02 15:04"

// renderTable formats a tabular result with runewidth-aligned columns, so
// titles with CJK or emoji characters keep the grid intact.
func renderTable(table *bearquery.Table) string {
	names := table.Columns()
	widths := make([]int, len(names))

	grid := make([][]string, table.Height())

	for i := range names {
		widths[i] = runewidth.StringWidth(names[i])
	}

	for row := 0; row < table.Height(); row++ {
		grid[row] = make([]string, len(names))

		for col := 0; col < len(names); col++ {
			text := formatCell(table.ColumnAt(col), row)
			grid[row][col] = text

			if w := runewidth.StringWidth(text); w > widths[col] {
				widths[col] = w
			}
		}
	}

	var b strings.Builder

	writeRow := func(cells []string) {
		for i, text := range cells {
			if i > 0 {
				b.WriteString("  ")
			}

			b.WriteString(runewidth.FillRight(text, widths[i]))
		}

		b.WriteString("\n")
	}

	writeRow(names)

	separators := make([]string, len(names))
	for i := range names {
		separators[i] = strings.Repeat("-", widths[i])
	}

	writeRow(separators)

	for _, row := range grid {
		writeRow(row)
	}

	b.WriteString(fmt.Sprintf("(%d rows)\n", table.Height()))

	return b.String()
}

// formatCell renders one table cell for display.
func formatCell(col *bearquery.Column, row int) string {
	if col.IsNull(row) {
		return "NULL"
	}

	switch col.Kind() {
	case bearquery.KindInt:
		v, _ := col.Int64(row)

		return strconv.FormatInt(v, 10)
	case bearquery.KindReal:
		v, _ := col.Float64(row)

		return strconv.FormatFloat(v, 'g', -1, 64)
	case bearquery.KindBlob:
		v, _ := col.Blob(row)

		return "x'" + hex.EncodeToString(v) + "'"
	default:
		v, _ := col.Text(row)

		return v
	}
}

// renderCSV encodes a tabular result as RFC 4180 CSV with a header row.
// NULL cells become empty fields.
func renderCSV(table *bearquery.Table) (string, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	err := w.Write(table.Columns())
	if err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, table.Width())

	for row := 0; row < table.Height(); row++ {
		for col := 0; col < table.Width(); col++ {
			if table.ColumnAt(col).IsNull(row) {
				record[col] = ""

				continue
			}

			record[col] = formatCell(table.ColumnAt(col), row)
		}

		err = w.Write(record)
		if err != nil {
			return "", fmt.Errorf("write csv row %d: %w", row, err)
		}
	}

	w.Flush()

	err = w.Error()
	if err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	return buf.String(), nil
}

// writeOutputFile writes rendered output to a file atomically, so a crash
// mid-write never leaves a half-written result behind.
func writeOutputFile(path, content string) error {
	err := atomic.WriteFile(path, strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// formatNoteLine renders one note as a single listing line.
func formatNoteLine(note bearquery.Note) string {
	var b strings.Builder

	b.WriteString(note.ID.String())
	b.WriteString("  ")
	b.WriteString(note.Modified.Format(timeDisplayLayout))
	b.WriteString("  ")

	title := note.Title
	if title == "" {
		title = "(untitled)"
	}

	b.WriteString(title)

	var marks []string

	if note.Pinned {
		marks = append(marks, "pinned")
	}

	if note.Trashed {
		marks = append(marks, "trashed")
	}

	if note.Archived {
		marks = append(marks, "archived")
	}

	if len(marks) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(marks, ", "))
		b.WriteString("]")
	}

	return b.String()
}

// formatTime renders an optional timestamp, "-" when absent.
func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.Format(timeDisplayLayout)
}
