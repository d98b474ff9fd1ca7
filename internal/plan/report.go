package plan

import (
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/ZanzyTHEbar/dagscale/internal/domain"
	"github.com/ZanzyTHEbar/dagscale/internal/qty"
	"github.com/ZanzyTHEbar/dagscale/internal/solution"
)

// Report is the serialisable analysis of one plan. Durations are expressed
// in Unit.
type Report struct {
	Source       string     `json:"source,omitempty"`
	Unit         string     `json:"unit"`
	Horizon      *Window    `json:"horizon,omitzero"`
	Total        float64    `json:"total"`
	Order        []string   `json:"order"`
	CriticalPath []string   `json:"criticalPath"`
	Roots        []string   `json:"roots"`
	Leaves       []string   `json:"leaves"`
	Waves        [][]string `json:"waves"`
	Tasks        []TaskRow  `json:"tasks"`
}

// TaskRow is the schedule of one task, in topological order.
type TaskRow struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Priority       int     `json:"priority,omitzero"`
	Size           float64 `json:"size"`
	EarliestStart  float64 `json:"earliestStart"`
	EarliestFinish float64 `json:"earliestFinish"`
	LatestStart    float64 `json:"latestStart"`
	LatestFinish   float64 `json:"latestFinish"`
	Slack          float64 `json:"slack"`
	Critical       bool    `json:"critical"`

	Windows *WindowRow `json:"windows,omitzero"`
}

// WindowRow holds the window metrics of one task over the report horizon.
// EarliestStart and Deadline are absent when the task fits no window.
type WindowRow struct {
	EarliestStart *float64 `json:"earliestStart,omitzero"`
	Deadline      *float64 `json:"deadline,omitzero"`
	Flexibility   float64  `json:"flexibility"`
}

// ReportOption configures NewReport.
type ReportOption func(*reportOptions)

type reportOptions struct {
	horizon *qty.Interval[qty.Second]
}

// WithHorizon adds per-task window metrics measured against horizon.
func WithHorizon(horizon qty.Interval[qty.Second]) ReportOption {
	return func(o *reportOptions) { o.horizon = &horizon }
}

// NewReport analyses b and expresses the result in the time unit with the
// given symbol.
func NewReport(b *Block, unit string, opts ...ReportOption) (*Report, error) {
	var o reportOptions
	for _, opt := range opts {
		opt(&o)
	}
	toUnit, err := converter(unit)
	if err != nil {
		return nil, err
	}

	an, err := b.Analyze()
	if err != nil {
		return nil, err
	}
	waves, err := b.Waves()
	if err != nil {
		return nil, err
	}

	r := &Report{
		Unit:         unit,
		Total:        toUnit(an.Total),
		Order:        idsOf(b, an.Order),
		CriticalPath: idsOf(b, an.CriticalPath),
		Roots:        idsOf(b, b.Roots()),
		Leaves:       idsOf(b, b.Leaves()),
		Waves:        make([][]string, len(waves)),
		Tasks:        make([]TaskRow, len(an.Timings)),
	}
	for i, w := range waves {
		r.Waves[i] = idsOf(b, w)
	}
	for i, tm := range an.Timings {
		t, err := b.Task(tm.Node)
		if err != nil {
			return nil, err
		}
		r.Tasks[i] = TaskRow{
			ID:             tm.ID,
			Name:           t.Name(),
			Priority:       t.Priority(),
			Size:           toUnit(t.SizeOnAxis()),
			EarliestStart:  toUnit(tm.EarliestStart),
			EarliestFinish: toUnit(tm.EarliestFinish),
			LatestStart:    toUnit(tm.LatestStart),
			LatestFinish:   toUnit(tm.LatestFinish),
			Slack:          toUnit(tm.Slack),
			Critical:       tm.Critical,
		}
	}

	if o.horizon != nil {
		horizon := *o.horizon
		r.Horizon = &Window{Start: toUnit(horizon.Start()), End: toUnit(horizon.End())}
		space := solution.FromBlock(b, horizon)
		for i := range r.Tasks {
			t, _ := b.TaskByID(r.Tasks[i].ID)
			m := solution.Evaluate(t, r.Tasks[i].ID, space, horizon)
			row := &WindowRow{Flexibility: m.Flexibility}
			if m.Feasible {
				est, deadline := toUnit(m.EarliestStart), toUnit(m.Deadline)
				row.EarliestStart, row.Deadline = &est, &deadline
			}
			r.Tasks[i].Windows = row
		}
	}
	return r, nil
}

// converter returns a function re-expressing seconds in the unit named by
// symbol, which must be a time unit.
func converter(symbol string) (func(qty.Quantity[qty.Second]) float64, error) {
	u, ok := qty.Lookup(symbol)
	if !ok {
		return nil, fmt.Errorf("report unit: %w: %q", qty.ErrUnknownUnit, symbol)
	}
	if u.Dimension() != qty.Time {
		return nil, fmt.Errorf("report unit: %w", &qty.DimensionError{From: qty.Second{}, To: u})
	}
	return func(q qty.Quantity[qty.Second]) float64 {
		m, _ := q.Measure().In(u)
		return m.Value
	}, nil
}

func idsOf(b *Block, hs []domain.NodeHandle) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i], _ = b.IDOf(h)
	}
	return out
}

// Encode writes r as indented JSON.
func (r *Report) Encode(w io.Writer) error {
	return writeJSON(w, r)
}

// DecodeReport reads a report written by Encode.
func DecodeReport(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.UnmarshalRead(rd, &r); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &r, nil
}

func writeJSON(w io.Writer, v any) error {
	if err := json.MarshalWrite(w, v, jsontext.WithIndent("  ")); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
