package chart

import "github.com/bpmonitor/capstone/internal/models"

// Range is an inclusive selection of sample indexes.
type Range struct {
	Start int
	End   int
}

// RangeFilter is one chart with its range slider.
type RangeFilter struct {
	table Table
	state Range
}

// NewRangeFilter selects the whole of t.
func NewRangeFilter(t Table) *RangeFilter {
	return &RangeFilter{table: t, state: Range{Start: 1, End: len(t.Data)}}
}

// State returns the current selection.
func (f *RangeFilter) State() Range {
	return f.state
}

// SetState moves the slider, clamping r to the table bounds.
func (f *RangeFilter) SetState(r Range) {
	if r.Start > r.End {
		r.Start, r.End = r.End, r.Start
	}
	r.Start = max(r.Start, 1)
	r.End = min(r.End, len(f.table.Data))
	f.state = r
}

// Draw returns the rows inside the current selection, header included.
func (f *RangeFilter) Draw() Table {
	out := Table{Header: f.table.Header, Data: []Row{}}
	for _, r := range f.table.Data {
		if r.Index >= f.state.Start && r.Index <= f.state.End {
			out.Data = append(out.Data, r)
		}
	}
	return out
}

// LinkedRanges keeps the impedance and pressure sliders of one sample on
// the same selection.
type LinkedRanges struct {
	Impedance *RangeFilter
	Pressure  *RangeFilter
}

// NewLinkedRanges builds the impedance-magnitude and pressure charts for ms.
func NewLinkedRanges(ms []models.Measurement) *LinkedRanges {
	return &LinkedRanges{
		Impedance: NewRangeFilter(Assemble(ms, ImpedanceMagnitude)),
		Pressure:  NewRangeFilter(Assemble(ms, Pressure)),
	}
}

// SelectImpedance moves the impedance slider, copies its state onto the
// pressure slider and returns both redrawn charts.
func (l *LinkedRanges) SelectImpedance(r Range) (impedance, pressure Table) {
	l.Impedance.SetState(r)
	l.Pressure.SetState(l.Impedance.State())
	return l.Impedance.Draw(), l.Pressure.Draw()
}

// SelectPressure is SelectImpedance with the roles swapped.
func (l *LinkedRanges) SelectPressure(r Range) (impedance, pressure Table) {
	l.Pressure.SetState(r)
	l.Impedance.SetState(l.Pressure.State())
	return l.Impedance.Draw(), l.Pressure.Draw()
}
