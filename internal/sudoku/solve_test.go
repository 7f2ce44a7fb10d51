package sudoku

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PablosTsel/sudosat/internal/sat"
)

// solution9 is a complete non-consecutive Sudoku solution. Every row is a
// rotation of the base row 1 5 9 4 8 3 7 2 6, whose values never differ by
// one at the offsets the row and column adjacencies produce.
var solution9 = [][]int{
	{1, 5, 9, 4, 8, 3, 7, 2, 6},
	{4, 8, 3, 7, 2, 6, 1, 5, 9},
	{7, 2, 6, 1, 5, 9, 4, 8, 3},
	{5, 9, 4, 8, 3, 7, 2, 6, 1},
	{8, 3, 7, 2, 6, 1, 5, 9, 4},
	{2, 6, 1, 5, 9, 4, 8, 3, 7},
	{9, 4, 8, 3, 7, 2, 6, 1, 5},
	{3, 7, 2, 6, 1, 5, 9, 4, 8},
	{6, 1, 5, 9, 4, 8, 3, 7, 2},
}

func dlisOptions() sat.Options {
	return sat.DefaultOptions
}

func vsidsOptions() sat.Options {
	ops := sat.DefaultOptions
	ops.Heuristic = sat.HeuristicVSIDS
	return ops
}

func TestSolve_fullClues(t *testing.T) {
	grid := gridFromCells(t, solution9)
	require.NoError(t, grid.Validate())

	clauses, numVars := Encode(grid)
	for _, ops := range []sat.Options{dlisOptions(), vsidsOptions()} {
		t.Run(ops.Heuristic.String(), func(t *testing.T) {
			status, model := Solve(clauses, numVars, ops)
			require.Equal(t, sat.True, status)

			decoded, err := Decode(model, grid.Size())
			require.NoError(t, err)
			assert.Equal(t, grid.String(), decoded.String())
		})
	}
}

func TestSolve_partialClues(t *testing.T) {
	grid, err := New(9)
	require.NoError(t, err)
	for r := 0; r < 3; r++ {
		for c := 0; c < 9; c++ {
			grid.SetValue(r, c, solution9[r][c])
		}
	}

	clauses, numVars := Encode(grid)
	status, model := Solve(clauses, numVars, vsidsOptions())
	require.Equal(t, sat.True, status)

	decoded, err := Decode(model, 9)
	require.NoError(t, err)
	assert.NoError(t, decoded.Validate())

	// Clues are preserved.
	for r := 0; r < 3; r++ {
		for c := 0; c < 9; c++ {
			assert.Equal(t, solution9[r][c], decoded.Value(r, c))
		}
	}
}

// Only two permutations of 1..4 are free of adjacent consecutive values, so
// no 4x4 grid can have four pairwise distinct non-consecutive rows: every
// 4x4 instance is unsatisfiable.
func TestSolve_4x4Unsatisfiable(t *testing.T) {
	grid, err := New(4)
	require.NoError(t, err)
	grid.SetValue(0, 0, 1)

	clauses, numVars := Encode(grid)
	for _, ops := range []sat.Options{dlisOptions(), vsidsOptions()} {
		t.Run(ops.Heuristic.String(), func(t *testing.T) {
			status, model := Solve(clauses, numVars, ops)
			assert.Equal(t, sat.False, status)
			assert.Nil(t, model)
		})
	}
}

func TestSolve_1x1(t *testing.T) {
	grid, err := New(1)
	require.NoError(t, err)

	clauses, numVars := Encode(grid)
	status, model := Solve(clauses, numVars, dlisOptions())
	require.Equal(t, sat.True, status)

	decoded, err := Decode(model, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, decoded.Value(0, 0))
}

// Re-encoding a decoded solution as a full clue set must be satisfiable and
// its unique model must reproduce the solution.
func TestSolve_reencodeDecoded(t *testing.T) {
	grid, err := New(9)
	require.NoError(t, err)
	for r := 0; r < 3; r++ {
		for c := 0; c < 9; c++ {
			grid.SetValue(r, c, solution9[r][c])
		}
	}

	clauses, numVars := Encode(grid)
	status, model := Solve(clauses, numVars, vsidsOptions())
	require.Equal(t, sat.True, status)
	solution, err := Decode(model, 9)
	require.NoError(t, err)

	reClauses, reNumVars := Encode(solution)
	reStatus, reModel := Solve(reClauses, reNumVars, dlisOptions())
	require.Equal(t, sat.True, reStatus)

	reDecoded, err := Decode(reModel, 9)
	require.NoError(t, err)
	assert.Equal(t, solution.String(), reDecoded.String())
}
