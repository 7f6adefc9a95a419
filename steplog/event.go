package steplog

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// LogEvent is the record produced by one successful step call.
// It is built, rendered and emitted before the wrapper returns, and never stored.
type LogEvent struct {
	CallID  uuid.UUID
	Step    string
	Logger  string
	ArgRepr string
	Elapsed time.Duration
	Input   Shape
	Output  Shape

	// Names holds the output column names in table order. It is filled when
	// names or dtypes are rendered.
	Names  []string
	DTypes map[string]string

	// Extras holds the rendered extractor results of a LogStepExtra call.
	// When Extra is set only the tag and the extras are rendered.
	Extras []string
	Extra  bool

	Config Config
}

// Delta is the output shape minus the input shape.
func (e LogEvent) Delta() Shape {
	return e.Output.Sub(e.Input)
}

// Tag renders "[<step>(<arg>)]".
func (e LogEvent) Tag() string {
	return "[" + e.Step + "(" + e.ArgRepr + ")]"
}

// Message renders the text line of the record.
func (e LogEvent) Message() string {
	var b strings.Builder
	b.WriteString(e.Tag())

	if e.Extra {
		for _, x := range e.Extras {
			b.WriteByte(' ')
			b.WriteString(x)
		}

		return b.String()
	}

	if e.Config.TimeTaken {
		b.WriteString(" time=")
		b.WriteString(e.Elapsed.String())
	}

	if e.Config.Shape {
		fmt.Fprintf(&b, " n_obs=%d, n_col=%d", e.Output.Rows, e.Output.Cols)
	}

	if e.Config.ShapeDelta {
		d := e.Delta()
		fmt.Fprintf(&b, " delta=(%d, %d)", d.Rows, d.Cols)
	}

	if e.Config.Names {
		b.WriteString(" names=")
		b.WriteString(renderNames(e.Names))
	}

	if e.Config.DTypes {
		b.WriteString(" dtypes=")
		b.WriteString(renderDTypes(e.Names, e.DTypes))
	}

	return b.String()
}

// Attrs renders the structured key/value arguments that accompany the message.
func (e LogEvent) Attrs() []any {
	args := []any{
		LogAttrStep, e.Step,
		LogAttrCallID, e.CallID.String(),
	}

	if e.Extra {
		return append(args, LogAttrExtras, e.Extras)
	}

	if e.Config.TimeTaken {
		args = append(args, LogAttrDurationMS, ToMilliseconds(e.Elapsed))
	}

	if e.Config.Shape {
		args = append(args, LogAttrRows, e.Output.Rows, LogAttrCols, e.Output.Cols)
	}

	if e.Config.ShapeDelta {
		d := e.Delta()
		args = append(args, LogAttrDeltaRows, d.Rows, LogAttrDeltaCols, d.Cols)
	}

	if e.Config.Names {
		args = append(args, LogAttrNames, e.Names)
	}

	if e.Config.DTypes {
		args = append(args, LogAttrDTypes, e.DTypes)
	}

	return args
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func ToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func renderNames(names []string) string {
	stream := jsoniter.ConfigFastest.BorrowStream(nil)
	defer jsoniter.ConfigFastest.ReturnStream(stream)

	stream.WriteArrayStart()
	for i, name := range names {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteString(name)
	}
	stream.WriteArrayEnd()

	return string(stream.Buffer())
}

// renderDTypes writes the type mapping as a JSON object in column order.
// Columns missing from dtypes are rendered with an empty type.
func renderDTypes(names []string, dtypes map[string]string) string {
	stream := jsoniter.ConfigFastest.BorrowStream(nil)
	defer jsoniter.ConfigFastest.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, name := range names {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(name)
		stream.WriteString(dtypes[name])
	}
	stream.WriteObjectEnd()

	return string(stream.Buffer())
}
