package sat

import (
	"fmt"

	"github.com/kr/pretty"
)

// debug enables expensive internal consistency checks during propagation.
const debug = false

// verifyWatches checks that every clause watching literal l actually has
// l.Opposite() as one of its two watched literals (positions 0 and 1). A
// violation is a solver bug, never a property of the input.
func (s *Solver) verifyWatches(l Literal) {
	opp := l.Opposite()
	for _, w := range s.watchers[l] {
		lits := w.clause.Literals()
		if len(lits) < 2 {
			pretty.Println(w.clause)
			panic(fmt.Sprintf("watched clause with %d literals", len(lits)))
		}
		if lits[0] != opp && lits[1] != opp {
			pretty.Println(l, w.clause)
			panic("watcher points at a literal the clause does not watch")
		}
	}
}
