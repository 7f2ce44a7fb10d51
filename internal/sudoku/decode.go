package sudoku

import (
	"fmt"

	"github.com/PablosTsel/sudosat/internal/sat"
)

// Solve decides a CNF formula produced by Encode (or any DIMACS-style
// clause set over numVars variables) and returns the solver's verdict. On
// sat.True the second return value is the model: model[v-1] is the value of
// DIMACS variable v.
func Solve(clauses [][]int, numVars int, options sat.Options) (sat.LBool, []bool) {
	s := sat.NewSolver(options)
	for i := 0; i < numVars; i++ {
		s.AddVariable()
	}

	buf := make([]sat.Literal, 0, 32)
	for _, clause := range clauses {
		buf = buf[:0]
		for _, l := range clause {
			buf = append(buf, sat.FromDIMACS(l))
		}
		s.AddClause(buf)
	}

	status := s.Solve()
	if status != sat.True {
		return status, nil
	}
	return sat.True, s.Models[len(s.Models)-1]
}

// Decode converts a model over N^3 variables back into the n x n grid it
// describes. Exactly one value literal must be true for each cell;
// anything else means the model does not come from a sound solve and is
// reported as an error.
func Decode(model []bool, n int) (*Grid, error) {
	if len(model) != n*n*n {
		return nil, fmt.Errorf("model has %d variables, want %d", len(model), n*n*n)
	}

	g, err := New(n)
	if err != nil {
		return nil, err
	}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			value := 0
			for v := 1; v <= n; v++ {
				if !model[VarIndex(r, c, v, n)-1] {
					continue
				}
				if value != 0 {
					return nil, fmt.Errorf("cell (%d,%d): both %d and %d assigned", r, c, value, v)
				}
				value = v
			}
			if value == 0 {
				return nil, fmt.Errorf("cell (%d,%d): no value assigned", r, c)
			}
			g.SetValue(r, c, value)
		}
	}
	return g, nil
}
