package frame_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/steplog-go/frame"
	"github.com/AntonStoeckl/steplog-go/steplog"
)

var _ steplog.Tabular = (*frame.Frame)(nil)

func givenFrame(t testing.TB) *frame.Frame {
	t.Helper()

	f, err := frame.New(
		frame.Series{Name: "id", DType: frame.Int64, Values: []any{int64(1), int64(2), int64(3)}},
		frame.Series{Name: "length", DType: frame.Float64, Values: []any{1.5, 2.5, 9.0}},
		frame.Series{Name: "species", DType: frame.String, Values: []any{"a", "b", nil}},
	)
	require.NoError(t, err)

	return f
}

func Test_Frame_New_Metadata(t *testing.T) {
	f := givenFrame(t)

	assert.Equal(t, 3, f.NumRows())
	assert.Equal(t, 3, f.NumCols())
	assert.Equal(t, []string{"id", "length", "species"}, f.ColumnNames())
	assert.Equal(t, map[string]string{"id": "int64", "length": "float64", "species": "string"}, f.DTypes())
}

func Test_Frame_New_Errors(t *testing.T) {
	testCases := []struct {
		description string
		columns     []frame.Series
		expectedErr error
	}{
		{
			description: "empty name",
			columns:     []frame.Series{{Name: "", DType: frame.Int64}},
			expectedErr: frame.ErrEmptyColumnName,
		},
		{
			description: "duplicate",
			columns:     []frame.Series{{Name: "a", DType: frame.Int64}, {Name: "a", DType: frame.Int64}},
			expectedErr: frame.ErrDuplicateColumn,
		},
		{
			description: "length mismatch",
			columns: []frame.Series{
				{Name: "a", DType: frame.Int64, Values: []any{int64(1)}},
				{Name: "b", DType: frame.Int64},
			},
			expectedErr: frame.ErrLengthMismatch,
		},
		{
			description: "type mismatch",
			columns:     []frame.Series{{Name: "a", DType: frame.Float64, Values: []any{"x"}}},
			expectedErr: frame.ErrTypeMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			_, err := frame.New(tc.columns...)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_Frame_Filter_KeepsColumnsAndMatchingRows(t *testing.T) {
	f := givenFrame(t)

	lengths, err := f.Floats("length")
	require.NoError(t, err)

	out := f.Filter(func(row int) bool { return lengths[row] < 5 })

	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, f.ColumnNames(), out.ColumnNames())
	assert.Equal(t, 3, f.NumRows(), "receiver must be unchanged")
}

func Test_Frame_Drop_And_WithColumn(t *testing.T) {
	f := givenFrame(t)

	dropped := f.Drop("species", "unknown")
	assert.Equal(t, []string{"id", "length"}, dropped.ColumnNames())

	added, err := dropped.WithColumn(frame.Series{Name: "flag", DType: frame.Bool, Values: []any{true, false, true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "length", "flag"}, added.ColumnNames())

	_, err = dropped.WithColumn(frame.Series{Name: "flag", DType: frame.Bool, Values: []any{true}})
	assert.ErrorIs(t, err, frame.ErrLengthMismatch)
}

func Test_Frame_Floats_Errors(t *testing.T) {
	f := givenFrame(t)

	_, err := f.Floats("missing")
	assert.ErrorIs(t, err, frame.ErrColumnNotFound)

	_, err = f.Floats("species")
	assert.ErrorIs(t, err, frame.ErrTypeMismatch)

	ids, err := f.Floats("id")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, ids)
}

func Test_Frame_Head(t *testing.T) {
	f := givenFrame(t)

	assert.Equal(t, 2, f.Head(2).NumRows())
	assert.Equal(t, 3, f.Head(10).NumRows())
}
