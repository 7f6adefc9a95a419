package steplog

import (
	"fmt"
	"reflect"
)

// Tabular is the read-only view of a table that the step wrappers inspect.
//
// Implementations are provided by the caller's dataframe type; steplog never
// constructs or mutates one.
type Tabular interface {
	NumRows() int
	NumCols() int

	// ColumnNames returns the column names in table order.
	ColumnNames() []string

	// DTypes maps each column name to the name of its declared type.
	DTypes() map[string]string
}

// Shape is the (rows, cols) extent of a Tabular.
type Shape struct {
	Rows int
	Cols int
}

// ShapeOf returns the shape of t. A nil t has the zero shape.
func ShapeOf(t Tabular) Shape {
	if isNil(t) {
		return Shape{}
	}

	return Shape{Rows: t.NumRows(), Cols: t.NumCols()}
}

func isNil(t Tabular) bool {
	if t == nil {
		return true
	}

	switch v := reflect.ValueOf(t); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// Sub returns s minus other on each axis. Negative values are kept.
func (s Shape) Sub(other Shape) Shape {
	return Shape{Rows: s.Rows - other.Rows, Cols: s.Cols - other.Cols}
}

// String renders the shape as "(rows, cols)".
func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols)
}
