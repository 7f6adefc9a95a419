package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/AntonStoeckl/steplog-go/frame"
	"github.com/AntonStoeckl/steplog-go/steplog"
)

var measurements = []string{"sepal_length", "sepal_width", "petal_length", "petal_width"}

// generateFlowers returns n rows of iris-like measurements plus a species column.
// About one row in ten gets a measurement far outside the normal range.
func generateFlowers(n int, seed uint64) *frame.Frame {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	means := []float64{5.8, 3.0, 3.8, 1.2}
	stddevs := []float64{0.8, 0.4, 1.7, 0.7}
	species := []string{"setosa", "versicolor", "virginica"}

	columns := make([]frame.Series, 0, len(measurements)+1)
	for ci, name := range measurements {
		values := make([]any, n)
		for row := range values {
			v := means[ci] + rng.NormFloat64()*stddevs[ci]
			if rng.IntN(40) == 0 {
				v += 10 * stddevs[ci]
			}
			values[row] = math.Max(0.1, math.Round(math.Abs(v)*10)/10)
		}
		columns = append(columns, frame.Series{Name: name, DType: frame.Float64, Values: values})
	}

	labels := make([]any, n)
	for row := range labels {
		labels[row] = species[row%len(species)]
	}
	columns = append(columns, frame.Series{Name: "species", DType: frame.String, Values: labels})

	return frame.MustNew(columns...)
}

// quantile uses linear interpolation between the closest ranks. sorted must be sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))

	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// iqrBounds returns the Tukey fences of values.
func iqrBounds(values []float64) (lower, upper float64) {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1

	return q1 - 1.5*iqr, q3 + 1.5*iqr
}

// removeOutliers drops every row with a measurement outside the Tukey fences of its column.
func removeOutliers(in *frame.Frame) *frame.Frame {
	keep := make([]bool, in.NumRows())
	for i := range keep {
		keep[i] = true
	}

	for _, name := range measurements {
		values, err := in.Floats(name)
		if err != nil {
			continue
		}

		lower, upper := iqrBounds(values)
		for row, v := range values {
			if v < lower || v > upper {
				keep[row] = false
			}
		}
	}

	return in.Filter(func(row int) bool { return keep[row] })
}

// dropSpecies removes the label column.
func dropSpecies(in *frame.Frame) *frame.Frame {
	return in.Drop("species")
}

// addPetalRatio appends petal_length / petal_width.
func addPetalRatio(in *frame.Frame) *frame.Frame {
	lengths, errL := in.Floats("petal_length")
	widths, errW := in.Floats("petal_width")
	if errL != nil || errW != nil {
		return in
	}

	ratios := make([]any, len(lengths))
	for i := range lengths {
		if widths[i] != 0 {
			ratios[i] = math.Round(lengths[i]/widths[i]*100) / 100
		}
	}

	out, err := in.WithColumn(frame.Series{Name: "petal_ratio", DType: frame.Float64, Values: ratios})
	if err != nil {
		return in
	}

	return out
}

// columnMean reports the mean of the column given as "column" kwarg.
var columnMean = steplog.NewExtractor("mean",
	func(out *frame.Frame, kwargs steplog.Kwargs) (any, error) {
		name, _ := kwargs["column"].(string)

		values, err := out.Floats(name)
		if err != nil {
			return nil, err
		}

		sum := 0.0
		for _, v := range values {
			sum += v
		}

		return fmt.Sprintf("mean(%s)=%.3f", name, sum/float64(max(len(values), 1))), nil
	},
	"column",
)

var rowCount = steplog.Extract("rows", func(out *frame.Frame) any {
	return fmt.Sprintf("rows=%d", out.NumRows())
})
