package tactics

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// CandidateEnv is the environment a priority-target expression is
// evaluated against, e.g. `IsPlayer || (ClassName == "Carrier" && HPFraction < 0.5)`.
type CandidateEnv struct {
	ClassName  string
	Tier       int
	IsPlayer   bool
	HPFraction float64
	Team       uint32
	Distance   float64
}

type priorityMatcher struct {
	src     string
	program *vm.Program
}

func compilePriority(src string) (*priorityMatcher, error) {
	prog, err := expr.Compile(src, expr.Env(CandidateEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile priority target %q: %w", src, err)
	}
	return &priorityMatcher{src: src, program: prog}, nil
}

func (p *priorityMatcher) match(e Entity, distance float64) bool {
	env := CandidateEnv{
		ClassName:  e.Class.String(),
		Tier:       int(e.Class),
		IsPlayer:   e.IsPlayer,
		HPFraction: e.HPFraction(),
		Team:       uint32(e.Team),
		Distance:   distance,
	}
	out, err := vm.Run(p.program, env)
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}
