package bearquery

import (
	"database/sql"
	"fmt"
	"time"
)

// Kind is the inferred storage class of a [Column].
type Kind int

const (
	// KindText holds TEXT values (also the kind of an all-NULL column).
	KindText Kind = iota

	// KindInt holds INTEGER values.
	KindInt

	// KindReal holds REAL values. Integers in a mixed column are promoted.
	KindReal

	// KindBlob holds BLOB values.
	KindBlob
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindReal:
		return "real"
	case KindBlob:
		return "blob"
	default:
		return "text"
	}
}

// Table is the fully materialized result of [DB.Query]: column-typed,
// connection-independent, built column-wise with SQLite's storage classes
// preserved. A column's kind is inferred from its values with the promotion
// order real > integer > text > blob; NULLs carry through as per-cell
// validity.
type Table struct {
	columns []Column
	height  int
}

// Height returns the number of rows.
func (t *Table) Height() int {
	return t.height
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.columns)
}

// Columns returns the column names in result order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i := range t.columns {
		names[i] = t.columns[i].name
	}

	return names
}

// Column returns the named column, or [ErrNoColumn].
func (t *Table) Column(name string) (*Column, error) {
	for i := range t.columns {
		if t.columns[i].name == name {
			return &t.columns[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoColumn, name)
}

// ColumnAt returns the column at index i.
func (t *Table) ColumnAt(i int) *Column {
	return &t.columns[i]
}

// Column is one typed column of a [Table].
type Column struct {
	name  string
	kind  Kind
	valid []bool
	ints  []int64
	reals []float64
	texts []string
	blobs [][]byte
}

// Name returns the column name.
func (c *Column) Name() string {
	return c.name
}

// Kind returns the inferred storage class.
func (c *Column) Kind() Kind {
	return c.kind
}

// Len returns the number of cells.
func (c *Column) Len() int {
	return len(c.valid)
}

// IsNull reports whether cell i is NULL.
func (c *Column) IsNull(i int) bool {
	return !c.valid[i]
}

// Int64 returns cell i as an integer. ok is false for NULL cells and
// non-integer columns.
func (c *Column) Int64(i int) (int64, bool) {
	if c.kind != KindInt || !c.valid[i] {
		return 0, false
	}

	return c.ints[i], true
}

// Float64 returns cell i as a float. ok is false for NULL cells and
// non-real columns.
func (c *Column) Float64(i int) (float64, bool) {
	if c.kind != KindReal || !c.valid[i] {
		return 0, false
	}

	return c.reals[i], true
}

// Text returns cell i as text. ok is false for NULL cells and non-text
// columns.
func (c *Column) Text(i int) (string, bool) {
	if c.kind != KindText || !c.valid[i] {
		return "", false
	}

	return c.texts[i], true
}

// Blob returns cell i as raw bytes. ok is false for NULL cells and non-blob
// columns.
func (c *Column) Blob(i int) ([]byte, bool) {
	if c.kind != KindBlob || !c.valid[i] {
		return nil, false
	}

	return c.blobs[i], true
}

// Value returns cell i in its natural Go type (int64, float64, string,
// []byte) or nil for NULL.
func (c *Column) Value(i int) any {
	if !c.valid[i] {
		return nil
	}

	switch c.kind {
	case KindInt:
		return c.ints[i]
	case KindReal:
		return c.reals[i]
	case KindBlob:
		return c.blobs[i]
	default:
		return c.texts[i]
	}
}

// cell is one raw value captured during the row scan.
type cell struct {
	value any
	null  bool
}

// buildTable materializes rows column-wise and infers per-column kinds,
// preserving the engine's storage classes.
func buildTable(rows *sql.Rows) (*Table, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	cells := make([][]cell, len(names))
	height := 0

	dest := make([]any, len(names))
	for i := range dest {
		dest[i] = new(any)
	}

	for rows.Next() {
		err = rows.Scan(dest...)
		if err != nil {
			return nil, fmt.Errorf("scan row %d: %w", height, err)
		}

		for i := range dest {
			cells[i] = append(cells[i], normalizeCell(*dest[i].(*any)))
		}

		height++
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	table := &Table{
		columns: make([]Column, len(names)),
		height:  height,
	}

	for i, name := range names {
		table.columns[i] = buildColumn(name, cells[i])
	}

	return table, nil
}

// normalizeCell reduces a driver value to the four storage classes.
func normalizeCell(value any) cell {
	switch v := value.(type) {
	case nil:
		return cell{null: true}
	case int64:
		return cell{value: v}
	case float64:
		return cell{value: v}
	case bool:
		if v {
			return cell{value: int64(1)}
		}

		return cell{value: int64(0)}
	case string:
		return cell{value: v}
	case []byte:
		// Copy: the driver may reuse the buffer on the next scan.
		return cell{value: append([]byte(nil), v...)}
	case time.Time:
		return cell{value: v.UTC().Format(viewTimeLayout)}
	default:
		return cell{value: fmt.Sprint(v)}
	}
}

// buildColumn infers the column kind from its cells and packs them into a
// typed slice. Mixed-type cells that do not fit the inferred kind become
// NULL, matching the promotion rules of the tabular result contract.
func buildColumn(name string, cells []cell) Column {
	var hasInt, hasReal, hasText, hasBlob bool

	for _, c := range cells {
		switch c.value.(type) {
		case int64:
			hasInt = true
		case float64:
			hasReal = true
		case string:
			hasText = true
		case []byte:
			hasBlob = true
		}
	}

	col := Column{
		name:  name,
		valid: make([]bool, len(cells)),
	}

	switch {
	case hasReal:
		col.kind = KindReal
		col.reals = make([]float64, len(cells))

		for i, c := range cells {
			switch v := c.value.(type) {
			case float64:
				col.reals[i] = v
				col.valid[i] = true
			case int64:
				// Promote integers in a mixed numeric column.
				col.reals[i] = float64(v)
				col.valid[i] = true
			}
		}
	case hasInt:
		col.kind = KindInt
		col.ints = make([]int64, len(cells))

		for i, c := range cells {
			if v, ok := c.value.(int64); ok {
				col.ints[i] = v
				col.valid[i] = true
			}
		}
	case hasBlob && !hasText:
		col.kind = KindBlob
		col.blobs = make([][]byte, len(cells))

		for i, c := range cells {
			if v, ok := c.value.([]byte); ok {
				col.blobs[i] = v
				col.valid[i] = true
			}
		}
	default:
		// Text, including the all-NULL column.
		col.kind = KindText
		col.texts = make([]string, len(cells))

		for i, c := range cells {
			if v, ok := c.value.(string); ok {
				col.texts[i] = v
				col.valid[i] = true
			}
		}
	}

	return col
}
