// Package gapfile reads and writes problem descriptions in YAML.
//
// A problem file looks like:
//
//	agents: [a, b, c]
//	tasks: ["1", "2"]
//	agent_budgets: {a: 1, b: 2, c: 1}
//	task_budgets: {"1": 2, "2": 2}
//	profits:
//	  a: {"1": 3, "2": 1}
//	  b: {"1": 1, "2": 3}
//	  c: {"1": 2, "2": 2}
//	mandatory: {a: ["1"]}
//
// Costs are given as nested agent -> task -> cost maps. Budgets and costs that are not
// given default to 1; profits must be given for every pair.
//
// Numbers are decimal and read exactly. To be solved, a problem is turned into an integer one:
// all budgets and costs are multiplied by the same power of ten, so that none of them keeps
// a fractional part, and so are profits. See Scale.
package gapfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/crillab/gophergap/gap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(numberValue, Number{})
	return v
}

// A Problem is a problem whose agents and tasks are identified by strings,
// and whose numbers are the scaled decimals of a file.
type Problem = gap.Problem[string, string, int64, int64]

// An Assignment is an assignment of a Problem.
type Assignment = gap.Assignment[string, string, int64, int64]

type pair = gap.Pair[string, string]

// A File is the content of a problem file.
type File struct {
	Agents       []string                     `yaml:"agents" validate:"unique,dive,required"`
	Tasks        []string                     `yaml:"tasks" validate:"unique,dive,required"`
	AgentBudgets map[string]Number            `yaml:"agent_budgets,omitempty" validate:"dive,gte=0"`
	TaskBudgets  map[string]Number            `yaml:"task_budgets,omitempty" validate:"dive,gte=0"`
	AgentCosts   map[string]map[string]Number `yaml:"agent_costs,omitempty"`
	TaskCosts    map[string]map[string]Number `yaml:"task_costs,omitempty"`
	Profits      map[string]map[string]Number `yaml:"profits"`
	Mandatory    map[string][]string          `yaml:"mandatory,omitempty"`
}

// Parse reads a problem file from r.
// Unknown keys are rejected, so that typos do not go unnoticed.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty problem file")
		}
		return nil, err
	}
	if err := validate.Struct(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseFile reads the problem file at path.
func ParseFile(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open problem file %q: %w", path, err)
	}
	defer r.Close()
	f, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("could not parse problem file %q: %w", path, err)
	}
	return f, nil
}

// Scale returns the smallest scale turning every number of the file into an integer.
func (f *File) Scale() Scale {
	var s Scale
	for _, b := range f.AgentBudgets {
		s.CostDecimals = max(s.CostDecimals, b.Decimals())
	}
	for _, b := range f.TaskBudgets {
		s.CostDecimals = max(s.CostDecimals, b.Decimals())
	}
	for _, costs := range []map[string]map[string]Number{f.AgentCosts, f.TaskCosts} {
		for _, byTask := range costs {
			for _, c := range byTask {
				s.CostDecimals = max(s.CostDecimals, c.Decimals())
			}
		}
	}
	for _, byTask := range f.Profits {
		for _, p := range byTask {
			s.ProfitDecimals = max(s.ProfitDecimals, p.Decimals())
		}
	}
	return s
}

// scaled multiplies every value of a nested agent -> task -> value map by 10^decimals,
// and flattens it. Pairs absent from vals are set to def if it is not nil.
func (f *File) scaled(vals map[string]map[string]Number, decimals int, def *int64) (map[pair]int64, error) {
	res := make(map[pair]int64)
	if def != nil {
		for _, a := range f.Agents {
			for _, t := range f.Tasks {
				res[pair{Agent: a, Task: t}] = *def
			}
		}
	}
	for a, byTask := range vals {
		for t, v := range byTask {
			x, err := v.Scaled(decimals)
			if err != nil {
				return nil, fmt.Errorf("(%s, %s): %w", a, t, err)
			}
			res[pair{Agent: a, Task: t}] = x
		}
	}
	return res, nil
}

func setBudgets(budgets map[string]Number, decimals int, set func(string, int64) error) error {
	for id, b := range budgets {
		x, err := b.Scaled(decimals)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		if err := set(id, x); err != nil {
			return err
		}
	}
	return nil
}

// Problem builds the problem described by the file, along with the scale of its numbers.
// It fails if the file references unknown agents or tasks, if a profit is missing,
// or if a scaled number does not fit in an int64.
func (f *File) Problem() (*Problem, Scale, error) {
	s := f.Scale()
	pb := gap.NewProblem[string, string, int64, int64](f.Agents, f.Tasks)
	one, err := num("1").Scaled(s.CostDecimals)
	if err != nil {
		return nil, s, err
	}
	if err := setBudgets(f.AgentBudgets, s.CostDecimals, pb.SetAgentBudget); err != nil {
		return nil, s, fmt.Errorf("agent_budgets: %w", err)
	}
	if err := setBudgets(f.TaskBudgets, s.CostDecimals, pb.SetTaskBudget); err != nil {
		return nil, s, fmt.Errorf("task_budgets: %w", err)
	}
	for _, costs := range []struct {
		name string
		vals map[string]map[string]Number
		set  func(map[pair]int64) error
	}{
		{"agent_costs", f.AgentCosts, pb.SetAgentCosts},
		{"task_costs", f.TaskCosts, pb.SetTaskCosts},
	} {
		vals, err := f.scaled(costs.vals, s.CostDecimals, &one)
		if err != nil {
			return nil, s, fmt.Errorf("%s: %w", costs.name, err)
		}
		if err := costs.set(vals); err != nil {
			return nil, s, fmt.Errorf("%s: %w", costs.name, err)
		}
	}
	profits, err := f.scaled(f.Profits, s.ProfitDecimals, nil)
	if err != nil {
		return nil, s, fmt.Errorf("profits: %w", err)
	}
	if err := pb.SetProfits(profits); err != nil {
		return nil, s, fmt.Errorf("profits: %w", err)
	}
	if err := pb.SetMandatory(f.Mandatory); err != nil {
		return nil, s, fmt.Errorf("mandatory: %w", err)
	}
	if err := pb.Validate(); err != nil {
		return nil, s, err
	}
	return pb, s, nil
}

// Write writes f to w in YAML.
func Write(w io.Writer, f *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

// Sample returns a small problem with three agents and two tasks.
// Its only optimal, maximal assignment is {a:[1] b:[1 2] c:[2]}, with a profit of 9.
func Sample() *File {
	return &File{
		Agents:       []string{"a", "b", "c"},
		Tasks:        []string{"1", "2"},
		AgentBudgets: map[string]Number{"a": num("1"), "b": num("2"), "c": num("1")},
		TaskBudgets:  map[string]Number{"1": num("2"), "2": num("2")},
		Profits: map[string]map[string]Number{
			"a": {"1": num("3"), "2": num("1")},
			"b": {"1": num("1"), "2": num("3")},
			"c": {"1": num("2"), "2": num("2")},
		},
		Mandatory: map[string][]string{"a": {"1"}},
	}
}
