package sat

import (
	"fmt"
	"time"
)

// Heuristic selects the branching strategy used by the solver.
type Heuristic int

const (
	// HeuristicDLIS branches on the most frequent literal among the
	// shortest unsatisfied clauses.
	HeuristicDLIS Heuristic = iota

	// HeuristicVSIDS branches on the unassigned variable with the highest
	// activity. Activities are bumped on conflicts and decay over time.
	HeuristicVSIDS
)

func (h Heuristic) String() string {
	switch h {
	case HeuristicDLIS:
		return "dlis"
	case HeuristicVSIDS:
		return "vsids"
	default:
		return fmt.Sprintf("heuristic(%d)", int(h))
	}
}

// Solver decides CNF formulas with an iterative DPLL search: two-watched
// literal propagation, a dynamic branching heuristic, and chronological
// backtracking over a trail of assignments. The solver does not learn
// clauses and does not restart; the clause database is immutable once
// loaded.
type Solver struct {
	// Clause database.
	constraints []*Clause

	// Propagation and watchers.
	watchers  [][]watcher
	propQueue *Queue[Literal]

	// Value assigned to each literal.
	assigns []LBool

	// Trail. trailLim[d] is the length of the trail when decision level
	// d+1 was opened; decisions[d] is that level's decision literal and
	// flipped[d] records whether its second polarity has been tried.
	trail     []Literal
	trailLim  []int
	decisions []Literal
	flipped   []bool
	level     []int

	// Branching.
	heuristic Heuristic
	order     *VarOrder
	dlis      *litTally

	// Whether the problem has reached a top level conflict.
	unsat bool

	// Search statistics.
	TotalConflicts    int64
	TotalDecisions    int64
	TotalPropagations int64
	jumpEMA           EMA
	startTime         time.Time

	// Stop conditions.
	hasStopCond bool
	maxConflict int64
	timeout     time.Duration

	// Models.
	Models [][]bool

	// Temporary slice used in the Propagate function. The slice is re-used by
	// all Propagate calls to avoid unnecessarily allocating new slices.
	tmpWatchers []watcher
}

// watcher represents a clause attached to the watch list of a literal.
type watcher struct {
	// The watching clause to be propagated when the watched literal becomes
	// true.
	clause *Clause

	// Guard is one of the clause's literals. If it is true, then there is
	// no need to propagate the clause. Note that the guard literal must be
	// different from the watcher literal.
	guard Literal
}

type Options struct {
	Heuristic     Heuristic
	VariableDecay float64
	PhaseSaving   bool
	MaxConflicts  int64
	Timeout       time.Duration
}

var DefaultOptions = Options{
	Heuristic:     HeuristicDLIS,
	VariableDecay: 0.95,
	PhaseSaving:   false,
	MaxConflicts:  -1,
	Timeout:       -1,
}

// NewDefaultSolver returns a solver configured with default options. This is
// equivalent to calling NewSolver with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

func NewSolver(ops Options) *Solver {
	s := &Solver{
		heuristic:   ops.Heuristic,
		propQueue:   NewQueue[Literal](128),
		maxConflict: -1,
		timeout:     -1,
		jumpEMA:     NewEMA(0.999),
	}

	switch ops.Heuristic {
	case HeuristicVSIDS:
		s.order = NewVarOrder(ops.VariableDecay, ops.PhaseSaving)
	default:
		s.dlis = &litTally{}
	}

	if ops.MaxConflicts >= 0 {
		s.hasStopCond = true
		s.maxConflict = ops.MaxConflicts
	}
	if ops.Timeout >= 0 {
		s.hasStopCond = true
		s.timeout = ops.Timeout
	}

	return s
}

func (s *Solver) shouldStop() bool {
	if !s.hasStopCond {
		return false
	}
	if s.maxConflict >= 0 && s.maxConflict <= s.TotalConflicts {
		return true
	}
	if s.timeout >= 0 && s.timeout <= time.Since(s.startTime) {
		return true
	}

	return false
}

func (s *Solver) NumVariables() int {
	return len(s.assigns) / 2
}

func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

func (s *Solver) NumConstraints() int {
	return len(s.constraints)
}

func (s *Solver) VarValue(x int) LBool {
	return s.assigns[PositiveLiteral(x)]
}

func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l]
}

// AvgBacktrackJump returns a moving average of the number of decision levels
// undone per conflict.
func (s *Solver) AvgBacktrackJump() float64 {
	return s.jumpEMA.Val()
}

// AddVariable declares a new variable and returns its ID. Variable IDs are
// assigned sequentially starting from 0.
func (s *Solver) AddVariable() int {
	index := s.NumVariables()

	// One watch list and one assignment slot for each literal.
	s.watchers = append(s.watchers, nil)
	s.watchers = append(s.watchers, nil)
	s.assigns = append(s.assigns, Unknown)
	s.assigns = append(s.assigns, Unknown)

	s.level = append(s.level, -1)

	if s.order != nil {
		s.order.AddVar(0, true)
	}
	if s.dlis != nil {
		s.dlis.Expand()
	}
	return index
}

// Watch registers clause c to be awaken when Literal watch is assigned to true.
func (s *Solver) Watch(c *Clause, watch Literal, guard Literal) {
	s.watchers[watch] = append(s.watchers[watch], watcher{
		clause: c,
		guard:  guard,
	})
}

// AddClause adds a clause to the solver. Clauses can only be added before
// the search starts, i.e. at decision level 0. Adding an empty clause (or a
// unit clause whose literal is already false) marks the instance as
// unsatisfiable.
func (s *Solver) AddClause(clause []Literal) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("can only add clauses at the root level")
	}
	c, ok := NewClause(s, clause)
	if c != nil {
		s.constraints = append(s.constraints, c)
	}
	if !ok {
		s.unsat = true
	}

	return nil
}

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// Solve decides the instance. It returns True if a model was found (the
// model is appended to s.Models), False if the instance is unsatisfiable,
// and Unknown if a stop condition was reached first. Solve can be called
// again after new clauses have been added, e.g. to enumerate models by
// blocking the previous one.
func (s *Solver) Solve() LBool {
	s.startTime = time.Now()
	if s.unsat {
		return False
	}

	status := Unknown
	for status == Unknown {
		if s.shouldStop() {
			break
		}

		if conflict := s.Propagate(); conflict != nil {
			s.TotalConflicts++
			if s.order != nil {
				s.bumpConflict(conflict)
			}
			if !s.backtrack() {
				s.unsat = true
				status = False
			}
			continue
		}

		if s.NumAssigns() == s.NumVariables() {
			s.saveModel()
			status = True
			continue
		}

		s.TotalDecisions++
		s.assume(s.nextDecision())
	}

	s.cancelUntil(0)
	return status
}

// bumpConflict bumps the activity of every variable involved in the
// conflicting clause and decays all activities.
func (s *Solver) bumpConflict(conflict *Clause) {
	for _, l := range conflict.Literals() {
		s.order.BumpScore(l.VarID())
	}
	s.order.DecayScores()
}

// backtrack undoes the trail down to the deepest decision whose second
// polarity has not been tried yet, then re-opens that level with the flipped
// decision. It returns false if no such decision exists, in which case the
// instance is unsatisfiable.
func (s *Solver) backtrack() bool {
	lvl := s.decisionLevel()
	for lvl > 0 && s.flipped[lvl-1] {
		lvl--
	}
	if lvl == 0 {
		return false
	}

	flip := s.decisions[lvl-1].Opposite()
	s.jumpEMA.Add(float64(s.decisionLevel() - lvl + 1))
	s.cancelUntil(lvl - 1)

	s.trailLim = append(s.trailLim, len(s.trail))
	s.decisions = append(s.decisions, flip)
	s.flipped = append(s.flipped, true)
	s.enqueue(flip)
	return true
}

// nextDecision picks the next branching literal. Variables that appear in no
// unsatisfied clause still have to be assigned for the model to be total;
// they are picked up by the positive-polarity fallback.
func (s *Solver) nextDecision() Literal {
	if s.order != nil {
		if l, ok := s.order.NextDecision(s); ok {
			return l
		}
		return s.firstUnassigned()
	}
	if l, ok := s.decideDLIS(); ok {
		return l
	}
	return s.firstUnassigned()
}

func (s *Solver) firstUnassigned() Literal {
	for v := 0; v < s.NumVariables(); v++ {
		if s.VarValue(v) == Unknown {
			return PositiveLiteral(v)
		}
	}
	panic("no unassigned variable left")
}

// Propagate drains the propagation queue and returns the first conflicting
// clause found, or nil if propagation completed without conflict. On
// conflict the queue is cleared.
func (s *Solver) Propagate() *Clause {
	for s.propQueue.Size() > 0 {
		l := s.propQueue.Pop()
		s.TotalPropagations++

		if debug {
			s.verifyWatches(l)
		}

		s.tmpWatchers = s.tmpWatchers[:0]
		s.tmpWatchers = append(s.tmpWatchers, s.watchers[l]...)
		s.watchers[l] = s.watchers[l][:0]

		for i, w := range s.tmpWatchers {
			// No need to propagate the clause if its guard is true. This block
			// is not necessary for propagation to behave properly. However, it
			// helps to significantly speed-up computation by avoiding loading
			// clauses (in memory) that do not need to be propagated.
			if s.LitValue(w.guard) == True {
				s.watchers[l] = append(s.watchers[l], w)
				continue
			}

			if w.clause.Propagate(s, l) {
				continue
			}

			// Constraint is conflicting, copy remaining watchers
			// and return the constraint.
			s.watchers[l] = append(s.watchers[l], s.tmpWatchers[i+1:]...)
			s.propQueue.Clear()
			return s.tmpWatchers[i].clause
		}
	}

	return nil
}

// enqueue records the fact that l is true and schedules it for propagation.
// It returns false if l is already false under the current assignment.
func (s *Solver) enqueue(l Literal) bool {
	switch s.LitValue(l) {
	case False:
		return false // conflicting assignment
	case True:
		return true // already assigned
	default:
		// New fact, store it.
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.level[l.VarID()] = s.decisionLevel()
		s.trail = append(s.trail, l)
		s.propQueue.Push(l)
		return true
	}
}

func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	if s.order != nil {
		s.order.Reinsert(v, s.assigns[PositiveLiteral(v)])
	}
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.level[v] = -1

	s.trail = s.trail[:len(s.trail)-1]
}

// assume opens a new decision level and enqueues the decision literal.
func (s *Solver) assume(l Literal) bool {
	s.trailLim = append(s.trailLim, len(s.trail))
	s.decisions = append(s.decisions, l)
	s.flipped = append(s.flipped, false)
	return s.enqueue(l)
}

// cancel undoes all the assignments of the current decision level.
func (s *Solver) cancel() {
	c := len(s.trail) - s.trailLim[len(s.trailLim)-1]
	for ; c != 0; c-- {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
	s.decisions = s.decisions[:len(s.decisions)-1]
	s.flipped = s.flipped[:len(s.flipped)-1]
}

func (s *Solver) cancelUntil(level int) {
	for s.decisionLevel() > level {
		s.cancel()
	}
	s.propQueue.Clear()
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for i := range model {
		lb := s.VarValue(i)
		if lb == Unknown {
			panic("not a model")
		}
		model[i] = lb == True
	}
	s.Models = append(s.Models, model)
}
