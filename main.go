// Command sudosat solves non-consecutive Sudoku puzzles by reduction to
// SAT. It reads either a whitespace-delimited puzzle grid or, with --sat, a
// DIMACS CNF instance.
package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/sirupsen/logrus"

	"github.com/PablosTsel/sudosat/internal/sat"
	"github.com/PablosTsel/sudosat/internal/sudoku"
	"github.com/PablosTsel/sudosat/parsers"
)

var log = logrus.New()

type config struct {
	In           string        `arg:"--in,required" help:"input file: puzzle grid, or DIMACS CNF with --sat"`
	SAT          bool          `arg:"--sat" help:"treat the input as a DIMACS CNF instance"`
	Heuristic    string        `arg:"--heuristic" default:"dlis" help:"branching heuristic: dlis or vsids"`
	MaxConflicts int64         `arg:"--max-conflicts" help:"stop after this many conflicts (0 = no limit)"`
	Timeout      time.Duration `arg:"--timeout" help:"stop after this much solving time (0 = no limit)"`
	Verbose      bool          `arg:"-v,--verbose" help:"print search statistics"`
	CPUProfile   bool          `arg:"--cpuprof" help:"save pprof CPU profile in cpuprof"`
	MemProfile   bool          `arg:"--memprof" help:"save pprof memory profile in memprof"`
}

func (config) Description() string {
	return "sudosat decides non-consecutive Sudoku puzzles and DIMACS CNF instances."
}

func solverOptions(cfg *config) (sat.Options, error) {
	ops := sat.DefaultOptions
	switch cfg.Heuristic {
	case "dlis":
		ops.Heuristic = sat.HeuristicDLIS
	case "vsids":
		ops.Heuristic = sat.HeuristicVSIDS
	default:
		return ops, fmt.Errorf("unknown heuristic %q (want dlis or vsids)", cfg.Heuristic)
	}
	if cfg.MaxConflicts > 0 {
		ops.MaxConflicts = cfg.MaxConflicts
	}
	if cfg.Timeout > 0 {
		ops.Timeout = cfg.Timeout
	}
	return ops, nil
}

func printStats(s *sat.Solver, elapsed time.Duration) {
	fmt.Printf("c time (sec):   %f\n", elapsed.Seconds())
	fmt.Printf("c decisions:    %d\n", s.TotalDecisions)
	fmt.Printf("c propagations: %d\n", s.TotalPropagations)
	fmt.Printf("c conflicts:    %d (%.2f /sec)\n", s.TotalConflicts, float64(s.TotalConflicts)/elapsed.Seconds())
	fmt.Printf("c avg jump:     %.2f\n", s.AvgBacktrackJump())
}

func runSAT(cfg *config) error {
	ops, err := solverOptions(cfg)
	if err != nil {
		return err
	}

	s := sat.NewSolver(ops)
	gzipped := strings.HasSuffix(cfg.In, ".gz")
	if err := parsers.LoadDIMACS(cfg.In, gzipped, s); err != nil {
		return fmt.Errorf("could not parse instance: %w", err)
	}

	fmt.Printf("c variables: %d\n", s.NumVariables())
	fmt.Printf("c clauses:   %d\n", s.NumConstraints())

	t := time.Now()
	status := s.Solve()
	if cfg.Verbose {
		printStats(s, time.Since(t))
	}

	switch status {
	case sat.True:
		fmt.Println("SAT")
		model := s.Models[len(s.Models)-1]
		for v, val := range model {
			if v > 0 {
				fmt.Print(" ")
			}
			if val {
				fmt.Print(v + 1)
			} else {
				fmt.Print(-(v + 1))
			}
		}
		fmt.Println()
	case sat.False:
		fmt.Println("UNSAT")
	default:
		fmt.Println("UNKNOWN")
	}
	return nil
}

func runPuzzle(cfg *config) error {
	ops, err := solverOptions(cfg)
	if err != nil {
		return err
	}

	grid, err := sudoku.LoadGrid(cfg.In)
	if err != nil {
		return fmt.Errorf("could not parse puzzle: %w", err)
	}
	clauses, numVars := sudoku.Encode(grid)

	fmt.Printf("c variables: %d\n", numVars)
	fmt.Printf("c clauses:   %d\n", len(clauses))

	t := time.Now()
	status, model := sudoku.Solve(clauses, numVars, ops)
	if cfg.Verbose {
		fmt.Printf("c time (sec): %f\n", time.Since(t).Seconds())
	}

	switch status {
	case sat.True:
		solution, err := sudoku.Decode(model, grid.Size())
		if err != nil {
			return fmt.Errorf("model does not decode to a grid: %w", err)
		}
		fmt.Print(solution)
	case sat.False:
		fmt.Println("UNSAT")
	default:
		fmt.Println("UNKNOWN")
	}
	return nil
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	cfg := &config{}
	arg.MustParse(cfg)

	if cfg.CPUProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	run := runPuzzle
	if cfg.SAT {
		run = runSAT
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}

	if cfg.MemProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
