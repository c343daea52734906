// Package chart turns sample measurements into the two-column tables drawn
// by the dashboard, and keeps the range selections of the impedance and
// pressure charts in step.
package chart

import "github.com/bpmonitor/capstone/internal/models"

// Field selects which measurement value is plotted.
type Field int

const (
	ImpedanceMagnitude Field = iota
	ImpedancePhase
	Pressure
)

// IndexLabel heads the first column of every table.
const IndexLabel = "Sample"

// Label is the column header for f.
func (f Field) Label() string {
	switch f {
	case ImpedanceMagnitude:
		return "Impedance Magnitude"
	case ImpedancePhase:
		return "Impedance Phase"
	case Pressure:
		return "Pressure"
	default:
		return "Value"
	}
}

// Value extracts f from m.
func (f Field) Value(m models.Measurement) float64 {
	switch f {
	case ImpedancePhase:
		return m.ImpedancePhase
	case Pressure:
		return m.Pressure
	default:
		return m.ImpedanceMagnitude
	}
}

// Row is one plotted point. Index is 1-based.
type Row struct {
	Index int
	Value float64
}

// Table is a header pair followed by data rows in measurement order.
type Table struct {
	Header [2]string
	Data   []Row
}

// Assemble builds the table for field over ms. Values pass through
// unchanged and rows are numbered by enumeration starting at 1.
func Assemble(ms []models.Measurement, field Field) Table {
	t := Table{
		Header: [2]string{IndexLabel, field.Label()},
		Data:   make([]Row, len(ms)),
	}
	for i, m := range ms {
		t.Data[i] = Row{Index: i + 1, Value: field.Value(m)}
	}
	return t
}

// Rows renders the table as the array-of-arrays a chart widget consumes:
// the header pair first, then one [index, value] pair per measurement.
func (t Table) Rows() [][]any {
	rows := make([][]any, 0, len(t.Data)+1)
	rows = append(rows, []any{t.Header[0], t.Header[1]})
	for _, r := range t.Data {
		rows = append(rows, []any{r.Index, r.Value})
	}
	return rows
}
