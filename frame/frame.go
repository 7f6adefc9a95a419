// Package frame is a small in-memory table of typed, named columns.
//
// It implements steplog.Tabular and carries just enough operations (filter,
// drop, head, float access) to build example pipelines and tests. It is not a
// dataframe library.
package frame

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyColumnName = errors.New("empty column name")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrLengthMismatch  = errors.New("column length mismatch")
	ErrTypeMismatch    = errors.New("value does not match column type")
	ErrColumnNotFound  = errors.New("column not found")
)

// DType is the declared type of a column.
type DType string

const (
	Float64 DType = "float64"
	Int64   DType = "int64"
	String  DType = "string"
	Bool    DType = "bool"
)

// Series is one named, typed column. Nil values are missing values.
type Series struct {
	Name   string
	DType  DType
	Values []any
}

// Frame is an immutable table. Operations return new frames sharing no row storage
// with the receiver.
type Frame struct {
	columns []Series
	rows    int
}

// New builds a frame from columns. All columns must have the same length, unique
// non-empty names, and values matching their DType.
func New(columns ...Series) (*Frame, error) {
	f := &Frame{columns: make([]Series, 0, len(columns))}
	seen := make(map[string]bool, len(columns))

	for i, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d: %w", i, ErrEmptyColumnName)
		}

		if seen[c.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, c.Name)
		}
		seen[c.Name] = true

		if i == 0 {
			f.rows = len(c.Values)
		} else if len(c.Values) != f.rows {
			return nil, fmt.Errorf("%w: %s has %d values, want %d", ErrLengthMismatch, c.Name, len(c.Values), f.rows)
		}

		for row, v := range c.Values {
			if err := validateType(c, row, v); err != nil {
				return nil, err
			}
		}

		f.columns = append(f.columns, Series{
			Name:   c.Name,
			DType:  c.DType,
			Values: append([]any(nil), c.Values...),
		})
	}

	return f, nil
}

// MustNew is like New but panics on invalid columns.
func MustNew(columns ...Series) *Frame {
	f, err := New(columns...)
	if err != nil {
		panic(err)
	}

	return f
}

func (f *Frame) NumRows() int { return f.rows }
func (f *Frame) NumCols() int { return len(f.columns) }

// ColumnNames returns the column names in order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}

	return names
}

// DTypes maps column names to their type names.
func (f *Frame) DTypes() map[string]string {
	dtypes := make(map[string]string, len(f.columns))
	for _, c := range f.columns {
		dtypes[c.Name] = string(c.DType)
	}

	return dtypes
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) (Series, bool) {
	for _, c := range f.columns {
		if c.Name == name {
			return Series{Name: c.Name, DType: c.DType, Values: append([]any(nil), c.Values...)}, true
		}
	}

	return Series{}, false
}

// Floats returns the named column as float64 values. Int64 values are converted;
// a missing value is an error.
func (f *Frame) Floats(name string) ([]float64, error) {
	c, ok := f.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}

	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		switch x := v.(type) {
		case float64:
			out[i] = x
		case int64:
			out[i] = float64(x)
		default:
			return nil, fmt.Errorf("%w: %s row %d is %T, want number", ErrTypeMismatch, name, i, v)
		}
	}

	return out, nil
}

// Filter keeps the rows for which keep returns true.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	var rows []int
	for i := 0; i < f.rows; i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}

	out := &Frame{columns: make([]Series, len(f.columns)), rows: len(rows)}
	for ci, c := range f.columns {
		values := make([]any, len(rows))
		for i, row := range rows {
			values[i] = c.Values[row]
		}
		out.columns[ci] = Series{Name: c.Name, DType: c.DType, Values: values}
	}

	return out
}

// Head keeps the first n rows.
func (f *Frame) Head(n int) *Frame {
	return f.Filter(func(row int) bool { return row < n })
}

// Drop removes the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	out := &Frame{rows: f.rows}
	for _, c := range f.columns {
		if drop[c.Name] {
			continue
		}
		out.columns = append(out.columns, Series{Name: c.Name, DType: c.DType, Values: append([]any(nil), c.Values...)})
	}

	return out
}

// WithColumn returns a frame with c appended, or replacing the column of the same name.
func (f *Frame) WithColumn(c Series) (*Frame, error) {
	columns := make([]Series, 0, len(f.columns)+1)
	replaced := false
	for _, existing := range f.columns {
		if existing.Name == c.Name {
			columns = append(columns, c)
			replaced = true
			continue
		}
		columns = append(columns, existing)
	}

	if !replaced {
		columns = append(columns, c)
	}

	return New(columns...)
}

func validateType(c Series, row int, v any) error {
	if v == nil {
		return nil
	}

	ok := false
	switch c.DType {
	case Float64:
		_, ok = v.(float64)
	case Int64:
		_, ok = v.(int64)
	case String:
		_, ok = v.(string)
	case Bool:
		_, ok = v.(bool)
	default:
		ok = true
	}

	if !ok {
		return fmt.Errorf("%w: %s row %d: expected %s, got %T", ErrTypeMismatch, c.Name, row, c.DType, v)
	}

	return nil
}
