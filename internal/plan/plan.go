// Package plan reads scheduling plans from JSON files and writes analysis
// reports. Plans are laid out on a seconds axis; each task may state its
// size in any registered time unit.
package plan

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-json-experiment/json"

	"github.com/ZanzyTHEbar/dagscale/internal/constraint"
	"github.com/ZanzyTHEbar/dagscale/internal/domain"
	"github.com/ZanzyTHEbar/dagscale/internal/qty"
)

// Task is the payload stored for every plan task.
type Task = domain.TaskBase[qty.Second]

// Block is the scheduling block a plan builds.
type Block = domain.Block[qty.Second, Task, domain.DependencyKind]

// ErrUnknownTask is returned for a dependency naming an undeclared task.
var ErrUnknownTask = errors.New("unknown task")

// File is the on-disk plan. Horizon, when present, is the range window
// metrics are measured against.
type File struct {
	Horizon      *Window          `json:"horizon,omitzero"`
	Tasks        []TaskSpec       `json:"tasks"`
	Dependencies []DependencySpec `json:"dependencies,omitempty"`
}

// TaskSpec declares one task. An empty ID lets the block generate one; such
// tasks cannot be named by dependencies.
type TaskSpec struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Size     float64  `json:"size"`
	Unit     string   `json:"unit,omitempty"`
	Priority int      `json:"priority,omitzero"`
	Gap      float64  `json:"gap,omitzero"`
	Windows  []Window `json:"windows,omitempty"`
}

// Window is a half-open [start, end) range on the seconds axis.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Interval converts w, refusing an end before the start.
func (w Window) Interval() (qty.Interval[qty.Second], error) {
	return qty.NewInterval(qty.New[qty.Second](w.Start), qty.New[qty.Second](w.End))
}

// DependencySpec declares that From must finish before To starts.
type DependencySpec struct {
	From string                `json:"from"`
	To   string                `json:"to"`
	Kind domain.DependencyKind `json:"kind,omitzero"`
}

// Sink receives a plan's contents. *shared.Block satisfies it directly; Build
// adapts a core block.
//
// Populate checks the whole plan on a scratch block before touching a Sink,
// so a sink only refuses when it already held conflicting tasks. Tasks and
// dependencies added before such a refusal are left in place.
type Sink interface {
	AddTaskWithID(t Task, id string) (string, error)
	AddDependency(fromID, toID string, kind domain.DependencyKind) error
}

// Decode reads a plan. Unknown members are rejected.
func Decode(r io.Reader) (*File, error) {
	var f File
	if err := json.UnmarshalRead(r, &f, json.RejectUnknownMembers(true)); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	return &f, nil
}

// Load reads the plan file at path.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plan: %w", err)
	}
	defer fh.Close()

	f, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Encode writes f as indented JSON.
func (f *File) Encode(w io.Writer) error {
	return writeJSON(w, f)
}

// tasks converts every TaskSpec into a payload without touching a block.
func (f *File) tasks() ([]Task, error) {
	out := make([]Task, len(f.Tasks))
	for i, spec := range f.Tasks {
		t, err := spec.Task()
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

// Task converts the declaration into a payload. Sizes default to seconds.
func (s TaskSpec) Task() (Task, error) {
	unit := s.Unit
	if unit == "" {
		unit = qty.Second{}.Symbol()
	}
	size, err := qty.MeasureOf(s.Size, unit)
	if err != nil {
		return Task{}, fmt.Errorf("task %q: %w", s.label(), err)
	}
	if s.Size < 0 || s.Gap < 0 {
		return Task{}, fmt.Errorf("task %q: size and gap must not be negative", s.label())
	}
	name := s.Name
	if name == "" {
		name = s.ID
	}
	t, err := domain.NewTaskBase[qty.Second](name, size)
	if err != nil {
		return Task{}, err
	}
	t = t.WithPriority(s.Priority).WithGap(qty.New[qty.Second](s.Gap))

	if len(s.Windows) > 0 {
		windows := constraint.Or[constraint.Constraint[qty.Second]]()
		for j, w := range s.Windows {
			iv, err := w.Interval()
			if err != nil {
				return Task{}, fmt.Errorf("task %q: windows[%d]: %w", s.label(), j, err)
			}
			leaf := constraint.Leaf[constraint.Constraint[qty.Second]](constraint.NewIntervalConstraint(iv))
			if err := windows.AddChild(leaf); err != nil {
				return Task{}, err
			}
		}
		t = t.WithConstraints(windows)
	}
	return t, nil
}

func (s TaskSpec) label() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Name
}

// Populate feeds f into dst: every task first, then every dependency in file
// order. Tasks with an id are inserted before anonymous ones, so generated
// identities never claim an id the plan declares; within each group file
// order is kept. The plan is validated on a scratch block first, so a plan
// that cannot be built leaves dst untouched.
func (f *File) Populate(dst Sink) error {
	if _, err := f.Build(); err != nil {
		return err
	}
	return f.populate(dst)
}

func (f *File) populate(dst Sink) error {
	if f.Horizon != nil {
		if _, err := f.Horizon.Interval(); err != nil {
			return fmt.Errorf("horizon: %w", err)
		}
	}
	payloads, err := f.tasks()
	if err != nil {
		return err
	}

	declared := make(map[string]bool, len(f.Tasks))
	var anonymous []int
	for i, spec := range f.Tasks {
		if spec.ID == "" {
			anonymous = append(anonymous, i)
			continue
		}
		if _, err := dst.AddTaskWithID(payloads[i], spec.ID); err != nil {
			return fmt.Errorf("tasks[%d]: %w", i, err)
		}
		declared[spec.ID] = true
	}
	for _, i := range anonymous {
		if _, err := dst.AddTaskWithID(payloads[i], ""); err != nil {
			return fmt.Errorf("tasks[%d]: %w", i, err)
		}
	}

	for i, dep := range f.Dependencies {
		for _, end := range []string{dep.From, dep.To} {
			if !declared[end] {
				return fmt.Errorf("dependencies[%d]: %w %q", i, ErrUnknownTask, end)
			}
		}
		if err := dst.AddDependency(dep.From, dep.To, dep.Kind); err != nil {
			return fmt.Errorf("dependencies[%d] %s -> %s: %w", i, dep.From, dep.To, err)
		}
	}
	return nil
}

// Build creates a block holding f.
func (f *File) Build(opts ...domain.BlockOption) (*Block, error) {
	b := domain.NewBlock[qty.Second, Task, domain.DependencyKind](opts...)
	if err := f.populate(coreSink{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// ReportOptions returns the report options the plan itself asks for.
func (f *File) ReportOptions() ([]ReportOption, error) {
	if f.Horizon == nil {
		return nil, nil
	}
	horizon, err := f.Horizon.Interval()
	if err != nil {
		return nil, fmt.Errorf("horizon: %w", err)
	}
	return []ReportOption{WithHorizon(horizon)}, nil
}

type coreSink struct{ b *Block }

func (s coreSink) AddTaskWithID(t Task, id string) (string, error) {
	return s.b.AddTaskWithID(t, id)
}

func (s coreSink) AddDependency(fromID, toID string, kind domain.DependencyKind) error {
	from, ok := s.b.NodeOf(fromID)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownTask, fromID)
	}
	to, ok := s.b.NodeOf(toID)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownTask, toID)
	}
	return s.b.AddDependency(from, to, kind)
}

// FromBlock captures b as a plan. Sizes keep their native unit; gaps and
// windows are written on the seconds axis.
func FromBlock(b *Block) *File {
	f := &File{}
	for id, t := range b.Tasks() {
		spec := TaskSpec{
			ID:       id,
			Name:     t.Name(),
			Size:     t.Size().Value,
			Unit:     t.Size().Unit.Symbol(),
			Priority: t.Priority(),
			Gap:      t.GapAfter().Value(),
		}
		if c := t.Constraints(); c != nil {
			for _, leaf := range c.Leaves() {
				if ic, ok := leaf.(constraint.IntervalConstraint[qty.Second]); ok {
					w := ic.Window()
					spec.Windows = append(spec.Windows, Window{Start: w.Start().Value(), End: w.End().Value()})
				}
			}
		}
		f.Tasks = append(f.Tasks, spec)
	}
	for _, e := range b.Dependencies() {
		from, _ := b.IDOf(e.From)
		to, _ := b.IDOf(e.To)
		f.Dependencies = append(f.Dependencies, DependencySpec{From: from, To: to, Kind: e.Label})
	}
	return f
}
